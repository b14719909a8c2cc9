package diag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/ast"
)

func TestNewLooksUpPhase(t *testing.T) {
	d := New(TYP001, SeverityError, "a.tl", &ast.Span{Line: 3, Column: 5}, "cannot assign %s to %s", "string", "number")
	require.Equal(t, PhaseType, d.Phase)
	require.Equal(t, "cannot assign string to number", d.Message)
	require.Equal(t, "a.tl:3:5: TYP001: cannot assign string to number", d.Error())
}

func TestErrorfDefaultsToSeverityError(t *testing.T) {
	d := Errorf(LEX002, "b.tl", nil, "unterminated string")
	require.Equal(t, SeverityError, d.Severity)
	require.Equal(t, PhaseLex, d.Phase)
}

func TestHandlerPushSnapshotIsolated(t *testing.T) {
	h := NewHandler()
	h.Push(Errorf(PAR001, "a.tl", nil, "unexpected token"))
	snap := h.Snapshot()
	require.Len(t, snap, 1)

	h.Push(Errorf(PAR001, "a.tl", nil, "second"))
	require.Len(t, snap, 1, "earlier snapshot must not observe later pushes")
	require.Len(t, h.Snapshot(), 2)
}

func TestHandlerHasErrors(t *testing.T) {
	h := NewHandler()
	require.False(t, h.HasErrors())
	h.Push(New(NAM001, SeverityWarning, "a.tl", nil, "unused"))
	require.False(t, h.HasErrors())
	h.Push(Errorf(NAM001, "a.tl", nil, "undefined identifier 'x'"))
	require.True(t, h.HasErrors())
}

func TestHandlerForFileFilters(t *testing.T) {
	h := NewHandler()
	h.Push(Errorf(PAR001, "a.tl", nil, "a"))
	h.Push(Errorf(PAR001, "b.tl", nil, "b"))
	h.Push(Errorf(PAR001, "a.tl", nil, "a2"))
	require.Len(t, h.ForFile("a.tl"), 2)
	require.Len(t, h.ForFile("b.tl"), 1)
}

func TestSortBySpanOrdersByFileThenLine(t *testing.T) {
	ds := []*Diagnostic{
		Errorf(PAR001, "b.tl", &ast.Span{Line: 1}, "x"),
		Errorf(PAR001, "a.tl", &ast.Span{Line: 5}, "y"),
		Errorf(PAR001, "a.tl", &ast.Span{Line: 2}, "z"),
	}
	SortBySpan(ds)
	require.Equal(t, "a.tl", ds[0].File)
	require.Equal(t, 2, ds[0].Span.Line)
	require.Equal(t, "a.tl", ds[1].File)
	require.Equal(t, 5, ds[1].Span.Line)
	require.Equal(t, "b.tl", ds[2].File)
}

func TestToJSONRoundTripsFields(t *testing.T) {
	d := Errorf(CAC002, "", nil, "corrupt artifact")
	js, err := d.ToJSON(true)
	require.NoError(t, err)
	require.Contains(t, js, `"code":"CAC002"`)
	require.Contains(t, js, `"phase":"cache"`)
}

func TestRenderWithAndWithoutColor(t *testing.T) {
	d := Errorf(TYP001, "a.tl", &ast.Span{Line: 1, Column: 1}, "bad")
	plain := Render(d, false)
	require.Contains(t, plain, "TYP001")
	require.Contains(t, plain, "a.tl:1:1")

	colored := Render(d, true)
	require.Contains(t, colored, "TYP001")
}

func TestLookupUnknownCode(t *testing.T) {
	_, ok := Lookup("NOPE999")
	require.False(t, ok)
}

func TestIsPhase(t *testing.T) {
	require.True(t, IsPhase(TYP004, PhaseType))
	require.False(t, IsPhase(TYP004, PhaseLex))
}
