package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/lexer"
	"github.com/sunholo/tlc/internal/parser"
)

func TestExportedTopLevelNamesFindsWrappedExportDecl(t *testing.T) {
	in := interner.New()
	l := lexer.New(`
export function add(a: number, b: number): number { return a + b }
function helper(): void {}
const x: number = 1
export const y: number = 2
`, "t.tl")
	h := diag.NewHandler()
	p := parser.New(l, "t.tl", h, in)
	prog := p.Parse()
	require.Empty(t, h.Snapshot())

	names := ExportedTopLevelNames(prog)
	var got []string
	for _, id := range names {
		got = append(got, in.MustLookup(id))
	}
	require.ElementsMatch(t, []string{"add", "y"}, got)
}

func TestCheckProgramReturnsTopLevelEnvForExports(t *testing.T) {
	in := interner.New()
	l := lexer.New(`export function add(a: number, b: number): number { return a + b }`, "t.tl")
	h := diag.NewHandler()
	p := parser.New(l, "t.tl", h, in)
	prog := p.Parse()
	require.Empty(t, h.Snapshot())

	_, env := CheckProgram(prog, in, h, "t.tl")
	require.Empty(t, h.Snapshot())

	names := ExportedTopLevelNames(prog)
	require.Len(t, names, 1)
	ty, ok := env.Bindings()[names[0]]
	require.True(t, ok)
	_, isFunc := ty.(*Function)
	require.True(t, isFunc)
}
