package optimize

import "github.com/sunholo/tlc/internal/ast"

// LoopOptimizationPass would hoist loop-invariant computations and
// strength-reduce induction variables inside numeric for-loops. Both
// require a data-flow analysis (which expressions are invariant across
// iterations, which locals are mutated in the loop body) that this AST
// stage doesn't have available - the ast.Program it receives carries no
// resolved bindings. Registered as a conservative no-op so pass
// count/order match the source compiler; a real implementation belongs
// downstream of name resolution.
type LoopOptimizationPass struct{}

func (*LoopOptimizationPass) Name() string    { return "loop-optimization" }
func (*LoopOptimizationPass) MinLevel() Level { return O2 }

func (*LoopOptimizationPass) Run(prog *ast.Program) bool { return false }
