package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/lexer"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.Handler) {
	t.Helper()
	l := lexer.New(src, "t.tl")
	h := diag.NewHandler()
	p := New(l, "t.tl", h, interner.New())
	prog := p.Parse()
	return prog, h
}

func TestParseConstDecl(t *testing.T) {
	prog, h := parse(t, `const x: number = 1 + 2 * 3`)
	require.Empty(t, h.Snapshot())
	require.Len(t, prog.Stmts, 1)
	decl, ok := prog.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, ast.VarConst, decl.Kind)
	bin, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestParseFunctionDecl(t *testing.T) {
	prog, h := parse(t, `function add(a: number, b: number): number { return a + b }`)
	require.Empty(t, h.Snapshot())
	fn, ok := prog.Stmts[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.ReturnType)
	require.Len(t, fn.Body.Stmts, 1)
}

func TestParseClassWithPrimaryCtorAndInheritance(t *testing.T) {
	src := `
class Animal(public name: string) {
  speak(): string { return "..." }
}
class Dog extends Animal {
  override speak(): string { return "woof" }
}
`
	prog, h := parse(t, src)
	require.Empty(t, h.Snapshot())
	require.Len(t, prog.Stmts, 2)
	animal := prog.Stmts[0].(*ast.ClassDecl)
	require.Len(t, animal.PrimaryCtorParams, 1)
	require.Equal(t, "public", animal.PrimaryCtorParams[0].Modifier)
	dog := prog.Stmts[1].(*ast.ClassDecl)
	require.NotNil(t, dog.Extends)
	require.True(t, dog.Members[0].Override)
}

func TestParseClassRejectsDualConstructors(t *testing.T) {
	src := `
class Bad(x: number) {
  constructor() {}
}
`
	_, h := parse(t, src)
	found := false
	for _, d := range h.Snapshot() {
		if d.Code == diag.PAR004 {
			found = true
		}
	}
	require.True(t, found)
}

func TestParseInterfaceDecl(t *testing.T) {
	src := `
interface Shape {
  area(): number;
  name: string;
}
`
	prog, h := parse(t, src)
	require.Empty(t, h.Snapshot())
	iface := prog.Stmts[0].(*ast.InterfaceDecl)
	require.Len(t, iface.Members, 2)
	require.True(t, iface.Members[0].IsMethod)
	require.False(t, iface.Members[1].IsMethod)
}

func TestParseEnumSimpleAndRich(t *testing.T) {
	src := `
enum Color { Red, Green, Blue }
enum Shape(area: number) {
  Circle(3.14),
  Square(1.0)
}
`
	prog, h := parse(t, src)
	require.Empty(t, h.Snapshot())
	color := prog.Stmts[0].(*ast.EnumDecl)
	require.False(t, color.Rich)
	require.Len(t, color.Members, 3)
	shape := prog.Stmts[1].(*ast.EnumDecl)
	require.True(t, shape.Rich)
	require.Len(t, shape.Members[0].Args, 1)
}

func TestParseMatchExpr(t *testing.T) {
	prog, h := parse(t, `const r = match x with { 1 => "one", _ => "other" }`)
	require.Empty(t, h.Snapshot())
	decl := prog.Stmts[0].(*ast.VarDecl)
	m, ok := decl.Init.(*ast.MatchExpr)
	require.True(t, ok)
	require.Len(t, m.Arms, 2)
	_, isWildcard := m.Arms[1].Pattern.(*ast.WildcardPattern)
	require.True(t, isWildcard)
}

func TestParseUnionAndArrayTypes(t *testing.T) {
	prog, h := parse(t, `const x: string | nil = nil`)
	require.Empty(t, h.Snapshot())
	decl := prog.Stmts[0].(*ast.VarDecl)
	union, ok := decl.Type.(*ast.UnionType)
	require.True(t, ok)
	require.Len(t, union.Members, 2)
}

func TestParseArrayLiteralAndIndex(t *testing.T) {
	prog, h := parse(t, `const xs: number[] = [1, 2, 3]
const y = xs[0]`)
	require.Empty(t, h.Snapshot())
	require.Len(t, prog.Stmts, 2)
	arrType := prog.Stmts[0].(*ast.VarDecl).Type.(*ast.ArrayType)
	require.NotNil(t, arrType.Element)
	idx := prog.Stmts[1].(*ast.VarDecl).Init.(*ast.IndexExpr)
	require.NotNil(t, idx.Index)
}

func TestParseTemplateLiteralEmbedsExpr(t *testing.T) {
	prog, h := parse(t, "const s = `hello ${name}!`")
	require.Empty(t, h.Snapshot())
	tmpl := prog.Stmts[0].(*ast.VarDecl).Init.(*ast.TemplateExpr)
	require.Len(t, tmpl.Exprs, 1)
	ident, ok := tmpl.Exprs[0].(*ast.Identifier)
	require.True(t, ok)
	require.NotZero(t, ident.Name)
}

func TestParseTryCatchFinally(t *testing.T) {
	src := `
function f() {
  try {
    throw "boom"
  } catch (e: string) {
    return e
  } finally {
    return nil
  }
}
`
	prog, h := parse(t, src)
	require.Empty(t, h.Snapshot())
	fn := prog.Stmts[0].(*ast.FuncDecl)
	tryStmt := fn.Body.Stmts[0].(*ast.TryStmt)
	require.Len(t, tryStmt.Catches, 1)
	require.NotNil(t, tryStmt.Finally)
}

func TestParseArrowFunction(t *testing.T) {
	prog, h := parse(t, `const add = (a: number, b: number): number => a + b`)
	require.Empty(t, h.Snapshot())
	decl := prog.Stmts[0].(*ast.VarDecl)
	fn, ok := decl.Init.(*ast.FunctionExpr)
	require.True(t, ok)
	require.True(t, fn.IsArrow)
	require.Len(t, fn.Params, 2)
}

func TestParseGenericFunctionAndTypeParams(t *testing.T) {
	prog, h := parse(t, `function identity<T>(x: T): T { return x }`)
	require.Empty(t, h.Snapshot())
	fn := prog.Stmts[0].(*ast.FuncDecl)
	require.Len(t, fn.TypeParams, 1)
}

func TestParseDecoratedClass(t *testing.T) {
	prog, h := parse(t, `@sealed
class Point {
  x: number = 0
}`)
	require.Empty(t, h.Snapshot())
	cls := prog.Stmts[0].(*ast.ClassDecl)
	require.Len(t, cls.Decorators, 1)
}

func TestParseErrorRecoverySkipsBadStatement(t *testing.T) {
	src := `const a = 1
)
const b = 2`
	prog, h := parse(t, src)
	require.NotEmpty(t, h.Snapshot())
	require.GreaterOrEqual(t, len(prog.Stmts), 2)
}

func TestParseImportAndExport(t *testing.T) {
	src := `
import { foo, bar as baz } from "./mod"
export function run(): void {}
`
	prog, h := parse(t, src)
	require.Empty(t, h.Snapshot())
	imp := prog.Stmts[0].(*ast.ImportDecl)
	require.Equal(t, ast.ImportNamed, imp.Kind)
	require.Len(t, imp.Specifiers, 2)
	exp := prog.Stmts[1].(*ast.ExportDecl)
	require.Equal(t, ast.ExportDeclaration, exp.Kind)
}
