package optimize

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
)

// The O3 passes below are the source compiler's most aggressive tier
// (optimizer/mod.rs registers them last, gated at OptimizationLevel::O3).
// Every one of them needs information this pipeline stage doesn't have:
// resolved call targets, class hierarchies, generic instantiations, or
// interface dispatch tables - all of which internal/types builds *after*
// optimization runs. Rather than fabricate unfounded heuristics over the
// bare AST, each is kept as a registered, well-named no-op so pass
// count/order/gating match the source compiler exactly; a future
// revision of the pipeline that reorders optimization to run after type
// checking could fill these in for real.

// AggressiveInliningPass would inline functions beyond FunctionInliningPass's
// conservative zero-arg/single-return scope (multi-statement bodies,
// parameterized calls), which needs escape/size analysis over resolved
// bindings.
type AggressiveInliningPass struct{ in *interner.Interner }

func (*AggressiveInliningPass) Name() string             { return "aggressive-inlining" }
func (*AggressiveInliningPass) MinLevel() Level          { return O3 }
func (*AggressiveInliningPass) Run(*ast.Program) bool { return false }

// OperatorInliningPass would inline user-defined operator overload methods
// at their call sites, which needs the resolved operand types the type
// checker assigns.
type OperatorInliningPass struct{ in *interner.Interner }

func (*OperatorInliningPass) Name() string             { return "operator-inlining" }
func (*OperatorInliningPass) MinLevel() Level          { return O3 }
func (*OperatorInliningPass) Run(*ast.Program) bool { return false }

// InterfaceMethodInliningPass would replace an interface method call with
// a direct call when exactly one implementor exists in the module, which
// needs the resolved interface/implementor graph.
type InterfaceMethodInliningPass struct{ in *interner.Interner }

func (*InterfaceMethodInliningPass) Name() string             { return "interface-method-inlining" }
func (*InterfaceMethodInliningPass) MinLevel() Level          { return O3 }
func (*InterfaceMethodInliningPass) Run(*ast.Program) bool { return false }

// DevirtualizationPass would replace a polymorphic method dispatch with a
// direct call when the receiver's static type has no further overriders,
// which needs the resolved class hierarchy.
type DevirtualizationPass struct{ in *interner.Interner }

func (*DevirtualizationPass) Name() string             { return "devirtualization" }
func (*DevirtualizationPass) MinLevel() Level          { return O3 }
func (*DevirtualizationPass) Run(*ast.Program) bool { return false }

// GenericSpecializationPass would emit monomorphized copies of a generic
// function/class per concrete type argument actually used, which needs
// the resolved generic instantiation sites the type checker tracks.
type GenericSpecializationPass struct{ in *interner.Interner }

func (*GenericSpecializationPass) Name() string             { return "generic-specialization" }
func (*GenericSpecializationPass) MinLevel() Level          { return O3 }
func (*GenericSpecializationPass) Run(*ast.Program) bool { return false }
