// Package optimize implements the AST-to-AST optimization pipeline (spec
// §4.3), grounded on original_source/crates/typedlua-core/src/optimizer/
// mod.rs: an ordered list of passes, each gated by a minimum optimization
// level, run to a fixed point.
package optimize

import (
	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
)

// Level mirrors the source compiler's OptimizationLevel (O0..O3, plus Auto
// which resolves to a concrete level before any pass runs). Auto resolves
// to O1 (debug-build-equivalent), per optimizer/mod.rs's effective().
type Level int

const (
	O0 Level = iota
	O1
	O2
	O3
	Auto
)

// Effective resolves Auto to a concrete level; every other level resolves
// to itself.
func (l Level) Effective() Level {
	if l == Auto {
		return O1
	}
	return l
}

// Pass is one AST-to-AST transformation. Run reports whether it changed
// the program, so the driver can iterate to a fixed point.
type Pass interface {
	Name() string
	MinLevel() Level
	Run(prog *ast.Program) bool
}

// maxIterations bounds the fixed-point loop, matching the source
// compiler's safety limit.
const maxIterations = 10

// Optimizer runs every registered pass whose MinLevel is at or below the
// configured level, repeating until no pass reports a change.
type Optimizer struct {
	level Level
	in    *interner.Interner
	passes []Pass
}

// New creates an Optimizer and registers all 17 passes in the same order
// as the source compiler's register_passes: 5 O1 passes, 7 O2 passes, 5
// O3 passes.
func New(level Level, in *interner.Interner) *Optimizer {
	o := &Optimizer{level: level, in: in}
	o.registerPasses()
	return o
}

func (o *Optimizer) registerPasses() {
	// O1 - basic optimizations (5 passes)
	o.passes = append(o.passes,
		&ConstantFoldingPass{},
		&DeadCodeEliminationPass{},
		&AlgebraicSimplificationPass{},
		&TablePreallocationPass{},
		&GlobalLocalizationPass{in: o.in},
	)
	// O2 - standard optimizations (7 passes)
	o.passes = append(o.passes,
		&FunctionInliningPass{in: o.in},
		&LoopOptimizationPass{},
		&StringConcatOptimizationPass{in: o.in},
		&DeadStoreEliminationPass{in: o.in},
		&TailCallOptimizationPass{},
		&RichEnumOptimizationPass{},
		&MethodToFunctionConversionPass{in: o.in},
	)
	// O3 - aggressive optimizations (5 passes)
	o.passes = append(o.passes,
		&AggressiveInliningPass{in: o.in},
		&OperatorInliningPass{in: o.in},
		&InterfaceMethodInliningPass{in: o.in},
		&DevirtualizationPass{in: o.in},
		&GenericSpecializationPass{in: o.in},
	)
}

// PassCount reports how many passes are registered.
func (o *Optimizer) PassCount() int { return len(o.passes) }

// PassNames reports every registered pass's name, in registration order.
func (o *Optimizer) PassNames() []string {
	names := make([]string, len(o.passes))
	for i, p := range o.passes {
		names[i] = p.Name()
	}
	return names
}

// Optimize runs every eligible pass to a fixed point. O0 runs nothing.
func (o *Optimizer) Optimize(prog *ast.Program) {
	level := o.level.Effective()
	if level == O0 {
		return
	}
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for _, p := range o.passes {
			if p.MinLevel() <= level {
				if p.Run(prog) {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}
