package optimize

import "github.com/sunholo/tlc/internal/ast"

// RichEnumOptimizationPass would pick a cheaper runtime representation
// for rich (constructor-argument) enum members - e.g. a flat array
// instead of a tagged table - when no code matches on a member's field
// names directly. Deciding that safely needs the resolved enum
// declarations and every match-pattern site across the module, which
// this AST-only stage doesn't carry (the optimizer receives only the
// ast.Program, not the type checker's results). Registered as a conservative no-op so pass
// count/order match the source compiler.
type RichEnumOptimizationPass struct{}

func (*RichEnumOptimizationPass) Name() string    { return "rich-enum-optimization" }
func (*RichEnumOptimizationPass) MinLevel() Level { return O2 }

func (*RichEnumOptimizationPass) Run(prog *ast.Program) bool { return false }
