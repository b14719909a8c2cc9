package optimize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/lexer"
	"github.com/sunholo/tlc/internal/parser"
)

func parseProgram(t *testing.T, src string) (*ast.Program, *interner.Interner) {
	t.Helper()
	in := interner.New()
	l := lexer.New(src, "t.tl")
	h := diag.NewHandler()
	p := parser.New(l, "t.tl", h, in)
	prog := p.Parse()
	require.Empty(t, h.Snapshot())
	return prog, in
}

func TestRegisterPassesCountAndOrder(t *testing.T) {
	o := New(O3, interner.New())
	require.Equal(t, 17, o.PassCount())
	names := o.PassNames()
	require.Equal(t, "constant-folding", names[0])
	require.Equal(t, "dead-code-elimination", names[1])
	require.Equal(t, "global-localization", names[4])
	require.Equal(t, "function-inlining", names[5])
	require.Equal(t, "method-to-function-conversion", names[11])
	require.Equal(t, "aggressive-inlining", names[12])
	require.Equal(t, "generic-specialization", names[16])
}

func TestAutoResolvesToO1(t *testing.T) {
	require.Equal(t, O1, Auto.Effective())
	require.Equal(t, O2, O2.Effective())
}

func TestOptimizeO0RunsNothing(t *testing.T) {
	prog, in := parseProgram(t, `const x: number = 1 + 2`)
	o := New(O0, in)
	o.Optimize(prog)
	decl := prog.Stmts[0].(*ast.VarDecl)
	_, stillBinary := decl.Init.(*ast.BinaryExpr)
	require.True(t, stillBinary)
}

func TestConstantFoldingIntegerStaysInt(t *testing.T) {
	prog, in := parseProgram(t, `const x: number = 1 + 2`)
	p := &ConstantFoldingPass{}
	changed := p.Run(prog)
	require.True(t, changed)
	decl := prog.Stmts[0].(*ast.VarDecl)
	lit := decl.Init.(*ast.Literal)
	require.Equal(t, ast.LitInt, lit.Kind)
	require.EqualValues(t, 3, lit.Value)
}

func TestConstantFoldingDivisionIsFloat(t *testing.T) {
	prog, in := parseProgram(t, `const x: number = 7 / 2`)
	_ = in
	p := &ConstantFoldingPass{}
	require.True(t, p.Run(prog))
	decl := prog.Stmts[0].(*ast.VarDecl)
	lit := decl.Init.(*ast.Literal)
	require.Equal(t, ast.LitFloat, lit.Kind)
	require.EqualValues(t, 3.5, lit.Value)
}

func TestDeadCodeEliminationDropsCodeAfterReturn(t *testing.T) {
	prog, _ := parseProgram(t, `
function f(): number {
	return 1
	const y: number = 2
}`)
	p := &DeadCodeEliminationPass{}
	require.True(t, p.Run(prog))
	fn := prog.Stmts[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 1)
}

func TestDeadCodeEliminationSplicesConstantIf(t *testing.T) {
	prog, _ := parseProgram(t, `
function f(): number {
	if (true) {
		return 1
	}
	return 2
}`)
	cf := &ConstantFoldingPass{}
	cf.Run(prog)
	dce := &DeadCodeEliminationPass{}
	require.True(t, dce.Run(prog))
	fn := prog.Stmts[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 1)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	lit := ret.Value.(*ast.Literal)
	require.EqualValues(t, 1, lit.Value)
}

func TestAlgebraicSimplificationAddZero(t *testing.T) {
	prog, _ := parseProgram(t, `const x: number = y + 0`)
	p := &AlgebraicSimplificationPass{}
	require.True(t, p.Run(prog))
	decl := prog.Stmts[0].(*ast.VarDecl)
	ident, ok := decl.Init.(*ast.Identifier)
	require.True(t, ok)
	require.NotZero(t, ident.Name)
}

func TestAlgebraicSimplificationMulZero(t *testing.T) {
	prog, _ := parseProgram(t, `const x: number = y * 0`)
	p := &AlgebraicSimplificationPass{}
	require.True(t, p.Run(prog))
	decl := prog.Stmts[0].(*ast.VarDecl)
	lit, ok := decl.Init.(*ast.Literal)
	require.True(t, ok)
	require.EqualValues(t, 0, lit.Value)
}

func TestStringConcatFoldsLiterals(t *testing.T) {
	prog, _ := parseProgram(t, `const x: string = "foo" + "bar"`)
	p := &StringConcatOptimizationPass{}
	require.True(t, p.Run(prog))
	decl := prog.Stmts[0].(*ast.VarDecl)
	lit := decl.Init.(*ast.Literal)
	require.Equal(t, ast.LitString, lit.Kind)
	require.Equal(t, "foobar", lit.Value)
}

func TestFunctionInliningZeroArgFunction(t *testing.T) {
	prog, in := parseProgram(t, `
function one(): number {
	return 1
}
const x: number = one()`)
	p := &FunctionInliningPass{in: in}
	require.True(t, p.Run(prog))
	decl := prog.Stmts[1].(*ast.VarDecl)
	lit, ok := decl.Init.(*ast.Literal)
	require.True(t, ok)
	require.EqualValues(t, 1, lit.Value)
}

func TestDeadStoreEliminationDropsUnusedBinding(t *testing.T) {
	prog, _ := parseProgram(t, `
function f(): number {
	local unused: number = 1
	return 2
}`)
	p := &DeadStoreEliminationPass{}
	require.True(t, p.Run(prog))
	fn := prog.Stmts[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 1)
	_, isReturn := fn.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, isReturn)
}

func TestDeadStoreEliminationKeepsUsedBinding(t *testing.T) {
	prog, _ := parseProgram(t, `
function f(): number {
	local used: number = 1
	return used
}`)
	p := &DeadStoreEliminationPass{}
	require.False(t, p.Run(prog))
	fn := prog.Stmts[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)
}

func TestTailCallOptimizationMarksReturnedCall(t *testing.T) {
	prog, _ := parseProgram(t, `
function g(): number {
	return 1
}
function f(): number {
	return g()
}`)
	p := &TailCallOptimizationPass{}
	require.True(t, p.Run(prog))
	fn := prog.Stmts[1].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.(*ast.CallExpr)
	require.True(t, call.IsTailCall)
}

func TestOptimizeReachesFixedPoint(t *testing.T) {
	prog, in := parseProgram(t, `const x: number = (1 + 2) * 0 + 3`)
	o := New(O2, in)
	o.Optimize(prog)
	decl := prog.Stmts[0].(*ast.VarDecl)
	lit, ok := decl.Init.(*ast.Literal)
	require.True(t, ok)
	require.EqualValues(t, 3, lit.Value)
}

func TestO3PassesAreRegisteredNoOps(t *testing.T) {
	prog, in := parseProgram(t, `const x: number = 1 + 2`)
	before := len(prog.Stmts)
	passes := []Pass{
		&AggressiveInliningPass{in: in},
		&OperatorInliningPass{in: in},
		&InterfaceMethodInliningPass{in: in},
		&DevirtualizationPass{in: in},
		&GenericSpecializationPass{in: in},
	}
	for _, p := range passes {
		require.False(t, p.Run(prog))
		require.Equal(t, O3, p.MinLevel())
	}
	require.Equal(t, before, len(prog.Stmts))
}
