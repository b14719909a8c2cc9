package codegen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/lexer"
	"github.com/sunholo/tlc/internal/optimize"
	"github.com/sunholo/tlc/internal/parser"
	"github.com/sunholo/tlc/internal/types"
)

// parseProgram parses and type-checks src, mirroring the pipeline's own
// Check-before-Generate ordering (spec §3): codegen reads resolved types
// (e.g. ast.BinaryExpr.IsConcat) that only the checker populates, so
// these tests must run it too rather than handing codegen a bare AST.
func parseProgram(t *testing.T, src string) (*ast.Program, *interner.Interner) {
	t.Helper()
	in := interner.New()
	l := lexer.New(src, "t.tl")
	h := diag.NewHandler()
	p := parser.New(l, "t.tl", h, in)
	prog := p.Parse()
	require.Empty(t, h.Snapshot())
	types.CheckProgram(prog, in, diag.NewHandler(), "t.tl")
	return prog, in
}

func TestGenerateFunctionDecl(t *testing.T) {
	prog, in := parseProgram(t, `function add(a: number, b: number): number { return a + b }`)
	out, sm := NewBuilder(in).Build().Generate(prog)
	require.Nil(t, sm)
	require.Contains(t, out, "local function add(a, b)")
	require.Contains(t, out, "return a + b")
}

func TestGenerateStringConcatOfLiteralsFoldsToOneString(t *testing.T) {
	prog, in := parseProgram(t, `const x: string = "foo" + "bar"`)
	p := &optimize.StringConcatOptimizationPass{}
	p.Run(prog)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, `"foobar"`)
}

func TestGenerateNonLiteralConcatUsesDotDotFromResolvedType(t *testing.T) {
	prog, in := parseProgram(t, `function f(a: string, b: string): string { return a + "!" }`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, `a .. "!"`)
}

func TestGenerateNonLiteralConcatWithBothOperandsIdentifiers(t *testing.T) {
	prog, in := parseProgram(t, `function concat(a: string, b: string): string { return a + b }`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "a .. b")
	require.NotContains(t, out, "a + b")
}

func TestGenerateCompoundConcatAssignUsesDotDotEquals(t *testing.T) {
	src := `
function f(a: string, b: string): string {
  a += b
  return a
}
`
	prog, in := parseProgram(t, src)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "a = a .. b")
}

func TestGenerateArithmeticUsesPlus(t *testing.T) {
	prog, in := parseProgram(t, `function f(a: number, b: number): number { return a + b }`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "a + b")
}

func TestGenerateExportedDeclAppearsInReturnTable(t *testing.T) {
	prog, in := parseProgram(t, `export function add(a: number, b: number): number { return a + b }`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "return {add = add}")
}

func TestGenerateClassWithInheritance(t *testing.T) {
	src := `
class Animal(public name: string) {
  speak(): string { return "..." }
}
class Dog extends Animal {
  override speak(): string { return "woof" }
}
`
	prog, in := parseProgram(t, src)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "local Animal = {}")
	require.Contains(t, out, "Animal.__index = Animal")
	require.Contains(t, out, "function Animal.new(name)")
	require.Contains(t, out, "self.name = name")
	require.Contains(t, out, `setmetatable(Dog, {__index = Animal})`)
	require.Contains(t, out, "function Dog:speak()")
}

func TestGenerateSimpleEnum(t *testing.T) {
	prog, in := parseProgram(t, `enum Color { Red, Green, Blue }`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "local Color = {")
	require.Contains(t, out, "Red = 0")
	require.Contains(t, out, "Green = 1")
	require.Contains(t, out, "Blue = 2")
}

func TestGenerateRichEnumCallsCtorAtO0(t *testing.T) {
	src := `
enum Shape(area: number) {
  Circle(3.14),
  Square(1.0)
}
`
	prog, in := parseProgram(t, src)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "function Shape.__new(area)")
	require.Contains(t, out, "Circle = Shape.__new(3.14)")
	require.Contains(t, out, `Shape.__byName = {`)
}

func TestGenerateRichEnumInlinesStructAtO2(t *testing.T) {
	src := `
enum Shape(area: number) {
  Circle(3.14)
}
`
	prog, in := parseProgram(t, src)
	out, _ := NewBuilder(in).OptimizationLevel(optimize.O2).Build().Generate(prog)
	require.Contains(t, out, "setmetatable({area = 3.14}, Shape)")
	require.NotContains(t, out, "Circle = Shape.__new(3.14)")
}

func TestGenerateBitwiseFallbackForLua51(t *testing.T) {
	prog, in := parseProgram(t, `function f(a: number, b: number): number { return a & b }`)
	out, _ := NewBuilder(in).Target(Lua51).Build().Generate(prog)
	require.Contains(t, out, "bit32.band(a, b)")
}

func TestGenerateNativeBitwiseForLua54(t *testing.T) {
	prog, in := parseProgram(t, `function f(a: number, b: number): number { return a & b }`)
	out, _ := NewBuilder(in).Target(Lua54).Build().Generate(prog)
	require.Contains(t, out, "a & b")
}

func TestGenerateSourceMapProducesVersion3(t *testing.T) {
	prog, in := parseProgram(t, `const x: number = 1`)
	out, sm := NewBuilder(in).SourceMap("t.tl").Build().Generate(prog)
	require.NotEmpty(t, out)
	require.NotNil(t, sm)
	require.Equal(t, 3, sm.Version)
	require.Equal(t, []string{"t.tl"}, sm.Sources)
}

func TestGenerateTreeShakingDropsUnreachableExport(t *testing.T) {
	src := `
export function used(): number { return 1 }
export function unused(): number { return 2 }
`
	prog, in := parseProgram(t, src)
	out, _ := NewBuilder(in).BundleMode("m", nil).WithTreeShaking(map[string]bool{"used": true}).Build().Generate(prog)
	require.Contains(t, out, "used = used")
	require.NotContains(t, out, "unused = unused")
}

// Generation from a given AST must be a pure function of the builder's
// settings: two independent generator runs over the same parsed program
// should produce byte-identical Lua, which the pipeline's cache relies on
// for deciding a module is unchanged. cmp.Diff pinpoints exactly where two
// runs diverge, the way goldenCompare does for parser snapshots.
func TestGenerateIsDeterministicAcrossRuns(t *testing.T) {
	src := `
class Animal(public name: string) {
  speak(): string { return "..." }
}
class Dog extends Animal {
  override speak(): string { return "woof" }
}
export function greet(a: Animal): string { return a.speak() }
`
	prog1, in1 := parseProgram(t, src)
	out1, _ := NewBuilder(in1).Build().Generate(prog1)

	prog2, in2 := parseProgram(t, src)
	out2, _ := NewBuilder(in2).Build().Generate(prog2)

	if diff := cmp.Diff(out1, out2); diff != "" {
		t.Errorf("generation is not deterministic (-first +second):\n%s", diff)
	}
}

func TestGenerateTypeofLowersToLuaType(t *testing.T) {
	prog, in := parseProgram(t, `function f(x: string | number): string { return typeof(x) }`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "type(x)")
}

func TestGenerateInstanceofLowersToMetatableWalk(t *testing.T) {
	src := `
class Animal {}
class Dog extends Animal {}
function f(x: Animal): boolean { return x instanceof Dog }
`
	prog, in := parseProgram(t, src)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "getmetatable(x)")
	require.Contains(t, out, "_c == Dog")
	require.Contains(t, out, "_mt.__index")
}

func TestGenerateBuiltinDecoratorUsesRuntimeHookNotBareCall(t *testing.T) {
	prog, in := parseProgram(t, `
@readonly
class Point {
  x: number = 0
}
`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "local function __tlc_readonly(cls)")
	require.Contains(t, out, "Point = __tlc_readonly(Point)")
	require.NotContains(t, out, "Point = readonly(Point)")
}

func TestGenerateCustomDecoratorStillUsesBareCall(t *testing.T) {
	prog, in := parseProgram(t, `
@logged
class Widget {}
`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "Widget = logged(Widget)")
	require.NotContains(t, out, "__tlc_")
}

func TestGenerateDecoratorRuntimeHookEmittedOnce(t *testing.T) {
	prog, in := parseProgram(t, `
@readonly
class A {}
@sealed
class B {}
`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Equal(t, 1, strings.Count(out, "local function __tlc_readonly"))
	require.Equal(t, 1, strings.Count(out, "local function __tlc_sealed"))
}

func TestGenerateMatchExprLowersToIfChain(t *testing.T) {
	prog, in := parseProgram(t, `const r = match x with { 1 => "one", _ => "other" }`)
	out, _ := NewBuilder(in).Build().Generate(prog)
	require.Contains(t, out, "if _subject == 1 then")
	require.Contains(t, out, "elseif true then")
}
