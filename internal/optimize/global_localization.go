package optimize

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
)

// GlobalLocalizationPass would rewrite repeated references to a module-
// level binding inside a hot function into a single `local` alias, the
// classic Lua micro-optimization (global/upvalue lookups are slower than
// locals). Doing this correctly needs the resolved binding-use graph
// (which identifier resolves to which declaration, and how many times it
// is read inside a given function) that this pipeline stage does not
// carry - the optimizer runs on the bare, unresolved ast.Program, before
// codegen's own name resolution. Left as a conservative no-op until the
// optimizer is given access to resolved bindings; kept registered so
// pass count/order match the source compiler.
type GlobalLocalizationPass struct {
	in *interner.Interner
}

func (*GlobalLocalizationPass) Name() string    { return "global-localization" }
func (*GlobalLocalizationPass) MinLevel() Level { return O1 }

func (*GlobalLocalizationPass) Run(prog *ast.Program) bool { return false }
