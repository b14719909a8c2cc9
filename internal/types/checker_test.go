package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/lexer"
	"github.com/sunholo/tlc/internal/parser"
)

func check(t *testing.T, src string) (*diag.Handler, *Decls) {
	t.Helper()
	in := interner.New()
	l := lexer.New(src, "t.tl")
	h := diag.NewHandler()
	p := parser.New(l, "t.tl", h, in)
	prog := p.Parse()
	require.Empty(t, h.Snapshot(), "source failed to parse: %v", h.Snapshot())
	decls, _ := CheckProgram(prog, in, h, "t.tl")
	return h, decls
}

func codes(h *diag.Handler) []string {
	var out []string
	for _, d := range h.Snapshot() {
		out = append(out, d.Code)
	}
	return out
}

func TestCheckVarDeclAssignableLiteral(t *testing.T) {
	h, _ := check(t, `const x: number = 42`)
	require.Empty(t, codes(h))
}

func TestCheckVarDeclMismatchReportsTYP001(t *testing.T) {
	h, _ := check(t, `const x: string = 42`)
	require.Contains(t, codes(h), diag.TYP001)
}

func TestCheckIntegerWidensToNumber(t *testing.T) {
	h, _ := check(t, `const x: number = 1`)
	require.Empty(t, codes(h))
}

func TestCheckUndefinedIdentifierReportsNAM001(t *testing.T) {
	h, _ := check(t, `const x: number = y`)
	require.Contains(t, codes(h), diag.NAM001)
}

func TestCheckFunctionCallArityMismatch(t *testing.T) {
	h, _ := check(t, `
function add(a: number, b: number): number { return a + b }
const r = add(1)
`)
	require.Contains(t, codes(h), diag.TYP002)
}

func TestCheckFunctionCallArgumentTypeMismatch(t *testing.T) {
	h, _ := check(t, `
function add(a: number, b: number): number { return a + b }
const r = add(1, "x")
`)
	require.Contains(t, codes(h), diag.TYP001)
}

func TestCheckFunctionReturnTypeMismatch(t *testing.T) {
	h, _ := check(t, `function f(): string { return 1 }`)
	require.Contains(t, codes(h), diag.TYP001)
}

func TestCheckRecognizesBuiltinDecoratorsByName(t *testing.T) {
	in := interner.New()
	l := lexer.New(`
@readonly
class Point {
  x: number = 0
}
@sealed
class Box {}
@deprecated("use Box instead")
class OldBox {}
@customDecorator
class Widget {}
`, "t.tl")
	h := diag.NewHandler()
	p := parser.New(l, "t.tl", h, in)
	prog := p.Parse()
	require.Empty(t, h.Snapshot())
	CheckProgram(prog, in, h, "t.tl")

	point := prog.Stmts[0].(*ast.ClassDecl)
	require.True(t, point.ReadonlyDecorator)
	require.False(t, point.Sealed)

	box := prog.Stmts[1].(*ast.ClassDecl)
	require.True(t, box.Sealed)

	oldBox := prog.Stmts[2].(*ast.ClassDecl)
	require.True(t, oldBox.Deprecated)

	widget := prog.Stmts[3].(*ast.ClassDecl)
	require.False(t, widget.ReadonlyDecorator)
	require.False(t, widget.Sealed)
	require.False(t, widget.Deprecated)
}

func TestCheckGenericConstraintViolationReportsTYP008(t *testing.T) {
	h, _ := check(t, `
class Box<T extends number> {}
function f(b: Box<string>): void {}
`)
	require.Contains(t, codes(h), diag.TYP008)
}

func TestCheckGenericConstraintSatisfiedIsClean(t *testing.T) {
	h, _ := check(t, `
class Box<T extends number> {}
function f(b: Box<number>): void {}
`)
	require.NotContains(t, codes(h), diag.TYP008)
}

func TestCheckClassHierarchyAndOverride(t *testing.T) {
	src := `
class Animal {
  speak(): string { return "..." }
}
class Dog extends Animal {
  override speak(): string { return "woof" }
}
`
	h, decls := check(t, src)
	require.Empty(t, codes(h))
	dog, ok := decls.Lookup("Dog")
	require.True(t, ok)
	require.NotNil(t, dog.Extends)
	require.Equal(t, "Animal", dog.Extends.Decl.Name)
}

func TestCheckOverrideWithoutParentReportsTYP004(t *testing.T) {
	src := `
class Dog {
  override speak(): string { return "woof" }
}
`
	h, _ := check(t, src)
	require.Contains(t, codes(h), diag.TYP004)
}

func TestCheckExtendingFinalClassReportsTYP010(t *testing.T) {
	src := `
final class Animal {
  speak(): string { return "..." }
}
class Dog extends Animal {
  override speak(): string { return "woof" }
}
`
	h, _ := check(t, src)
	require.Contains(t, codes(h), diag.TYP010)
}

func TestCheckInterfaceObligationUnmetReportsTYP005(t *testing.T) {
	src := `
interface Greeter {
  greet(): string
}
class Dog implements Greeter {
  bark(): string { return "woof" }
}
`
	h, _ := check(t, src)
	require.Contains(t, codes(h), diag.TYP005)
}

func TestCheckInterfaceObligationMetIsClean(t *testing.T) {
	src := `
interface Greeter {
  greet(): string
}
class Dog implements Greeter {
  greet(): string { return "woof" }
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestCheckMatchExhaustivenessOnEnum(t *testing.T) {
	src := `
enum Color { Red, Green, Blue }
function name(c: Color): string {
  return match c with {
    "Red" => "r",
    "Green" => "g"
  }
}
`
	h, _ := check(t, src)
	require.Contains(t, codes(h), diag.TYP009)
}

func TestCheckMatchWithWildcardIsExhaustive(t *testing.T) {
	src := `
enum Color { Red, Green, Blue }
function name(c: Color): string {
  return match c with {
    "Red" => "r",
    _ => "other"
  }
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestCheckMatchOnBooleanNonExhaustiveAndUnreachableArm(t *testing.T) {
	src := `
function f(b: boolean): number {
  return match b with {
    true => 1,
    true => 2
  }
}
`
	h, _ := check(t, src)
	require.Contains(t, codes(h), diag.TYP009)
	require.Contains(t, codes(h), diag.TYP012)
}

func TestCheckMatchOnBooleanExhaustiveIsClean(t *testing.T) {
	src := `
function f(b: boolean): number {
  return match b with {
    true => 1,
    false => 2
  }
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestCheckMatchDiscriminatedUnionExhaustiveness(t *testing.T) {
	src := `
type Shape = {kind: "circle", radius: number} | {kind: "square", side: number}
function area(s: Shape): number {
  return match s with {
    {kind: "circle"} => 1
  }
}
`
	h, _ := check(t, src)
	require.Contains(t, codes(h), diag.TYP009)
}

func TestCheckMatchDiscriminatedUnionExhaustiveIsClean(t *testing.T) {
	src := `
type Shape = {kind: "circle", radius: number} | {kind: "square", side: number}
function area(s: Shape): number {
  return match s with {
    {kind: "circle"} => 1,
    {kind: "square"} => 2
  }
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestIsAssignableUnionMember(t *testing.T) {
	u := &Union{Members: []Type{String, Number}}
	require.True(t, IsAssignable(String, u))
	require.False(t, IsAssignable(Boolean, u))
}

func TestIsAssignableArrayCovariance(t *testing.T) {
	sub := &Array{Element: Integer}
	sup := &Array{Element: Number}
	require.True(t, IsAssignable(sub, sup))
	require.False(t, IsAssignable(sup, sub))
}

func TestIsAssignableFunctionVariance(t *testing.T) {
	// (number) -> integer is assignable to (integer) -> number:
	// params contravariant, return covariant.
	sub := &Function{Params: []Type{Number}, Return: Integer}
	sup := &Function{Params: []Type{Integer}, Return: Number}
	require.True(t, IsAssignable(sub, sup))
}

func TestIsAssignableNominalRequiresSameDecl(t *testing.T) {
	a := &Decl{Kind: DeclClass, Name: "A"}
	b := &Decl{Kind: DeclClass, Name: "B"}
	require.False(t, IsAssignable(&Ref{Decl: a}, &Ref{Decl: b}))
	require.True(t, IsAssignable(&Ref{Decl: a}, &Ref{Decl: a}))
}

func TestIsAssignableNominalThroughExtendsChain(t *testing.T) {
	base := &Decl{Kind: DeclClass, Name: "Animal"}
	sub := &Decl{Kind: DeclClass, Name: "Dog", Extends: &Ref{Decl: base}}
	require.True(t, IsAssignable(&Ref{Decl: sub}, &Ref{Decl: base}))
	require.False(t, IsAssignable(&Ref{Decl: base}, &Ref{Decl: sub}))
}

func TestExpandUtilityTypePartial(t *testing.T) {
	in := interner.New()
	nameID := in.Intern("name")
	obj := &Object{Props: []ObjectProp{{Name: nameID, Type: String}}}
	got := expandUtilityType(UtilPartial, []Type{obj}, in)
	result, ok := got.(*Object)
	require.True(t, ok)
	require.True(t, result.Props[0].Optional)
}

func TestExpandUtilityTypePickOmit(t *testing.T) {
	in := interner.New()
	nameID := in.Intern("name")
	ageID := in.Intern("age")
	obj := &Object{Props: []ObjectProp{
		{Name: nameID, Type: String},
		{Name: ageID, Type: Integer},
	}}
	keys := &Literal{Kind: KString, Value: "name"}
	picked := expandUtilityType(UtilPick, []Type{obj, keys}, in).(*Object)
	require.Len(t, picked.Props, 1)
	require.Equal(t, nameID, picked.Props[0].Name)

	omitted := expandUtilityType(UtilOmit, []Type{obj, keys}, in).(*Object)
	require.Len(t, omitted.Props, 1)
	require.Equal(t, ageID, omitted.Props[0].Name)
}

func TestCheckDestructuringVarDecl(t *testing.T) {
	h, _ := check(t, `const [a, b] = [1, 2]`)
	require.Empty(t, codes(h))
}

func TestCheckNarrowingAfterNilGuard(t *testing.T) {
	// x: number | nil narrowed to number inside the guarded branch should
	// not report an assignability error when used as a plain number.
	src := `
function f(x: number | nil): number {
  if (x ~= nil) {
    return x
  }
  return 0
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestCheckNarrowingAfterTypeofStringGuard(t *testing.T) {
	src := `
function wantsString(s: string): void {
}
function f(x: string | number): void {
  if (typeof(x) == "string") {
    wantsString(x)
  }
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestCheckNarrowingAfterUserDefinedTypeGuard(t *testing.T) {
	src := `
class Animal {}
class Dog extends Animal {}
function isDog(x: Animal): x is Dog {
  return true
}
function take(d: Dog): void {
}
function f(x: Animal): void {
  if (isDog(x)) {
    take(x)
  }
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestCheckNarrowingAfterInstanceofGuard(t *testing.T) {
	src := `
class Animal {}
class Dog extends Animal {}
function take(d: Dog): void {
}
function f(x: Animal): void {
  if (x instanceof Dog) {
    take(x)
  }
}
`
	h, _ := check(t, src)
	require.Empty(t, codes(h))
}

func TestApplyNarrowingDiscriminatedUnion(t *testing.T) {
	in := interner.New()
	kindID := in.Intern("kind")
	xID := in.Intern("x")
	circle := &Object{Props: []ObjectProp{{Name: kindID, Type: &Literal{Kind: KString, Value: "circle"}}}}
	square := &Object{Props: []ObjectProp{{Name: kindID, Type: &Literal{Kind: KString, Value: "square"}}}}
	env := NewEnv()
	env.Define(xID, &Union{Members: []Type{circle, square}})

	cond := &ast.BinaryExpr{
		Op:    "==",
		Left:  &ast.MemberExpr{Object: &ast.Identifier{Name: xID}, Name: kindID},
		Right: &ast.Literal{Kind: ast.LitString, Value: "circle"},
	}
	applyNarrowing(cond, env, true)
	narrowed, ok := env.Lookup(xID)
	require.True(t, ok)
	// a single surviving member unwraps rather than staying a one-element
	// union (flattenUnion's convention, shared with the utility-type passes).
	require.Same(t, circle, narrowed)
}

var _ = ast.LitNil // keep ast import used if test bodies above are trimmed
