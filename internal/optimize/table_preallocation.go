package optimize

import "github.com/sunholo/tlc/internal/ast"

// TablePreallocationPass is a no-op analysis pass at this stage of the
// pipeline: the original compiler's own pass (optimizer/passes/
// table_preallocation.rs) is itself "a no-op analysis pass - codegen
// handles preallocation", always reporting no change. Registered here so
// pass count/order match the source compiler and so codegen has a named
// hook to eventually read sizing hints from, but it does not mutate the
// AST.
type TablePreallocationPass struct{}

func (*TablePreallocationPass) Name() string    { return "table-preallocation" }
func (*TablePreallocationPass) MinLevel() Level { return O1 }

func (*TablePreallocationPass) Run(prog *ast.Program) bool { return false }
