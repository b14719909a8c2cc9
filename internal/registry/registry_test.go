package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/resolver"
	"github.com/sunholo/tlc/internal/types"
)

func TestRegisterParsedThenGetExportsBeforeCheckIsNotOK(t *testing.T) {
	r := New()
	id := resolver.ModuleID("a")
	r.RegisterParsed(id, &ast.Program{}, nil)

	_, ok := r.GetExports(id)
	require.False(t, ok)

	prog, ok := r.Program(id)
	require.True(t, ok)
	require.NotNil(t, prog)
	require.False(t, r.IsChecked(id))
}

func TestRegisterExportsUnblocksGetExports(t *testing.T) {
	r := New()
	id := resolver.ModuleID("a")
	r.RegisterParsed(id, &ast.Program{}, nil)

	exports := map[string]Export{"add": {Name: "add", Type: &types.Primitive{}}}
	require.NoError(t, r.RegisterExports(id, exports))

	got, ok := r.GetExports(id)
	require.True(t, ok)
	require.Equal(t, exports, got)
	require.True(t, r.IsChecked(id))
}

func TestRegisterExportsFailsIfNotParsed(t *testing.T) {
	r := New()
	err := r.RegisterExports(resolver.ModuleID("never-parsed"), map[string]Export{})
	require.Error(t, err)
}

func TestCheckOrderDependencyBeforeImporter(t *testing.T) {
	r := New()
	a, b, c := resolver.ModuleID("a"), resolver.ModuleID("b"), resolver.ModuleID("c")
	r.RegisterParsed(a, &ast.Program{}, []resolver.ModuleID{b})
	r.RegisterParsed(b, &ast.Program{}, []resolver.ModuleID{c})
	r.RegisterParsed(c, &ast.Program{}, nil)

	order, err := r.CheckOrder([]resolver.ModuleID{a})
	require.NoError(t, err)
	require.Equal(t, []resolver.ModuleID{c, b, a}, order)
}

func TestCheckOrderDetectsCycle(t *testing.T) {
	r := New()
	a, b := resolver.ModuleID("a"), resolver.ModuleID("b")
	r.RegisterParsed(a, &ast.Program{}, []resolver.ModuleID{b})
	r.RegisterParsed(b, &ast.Program{}, []resolver.ModuleID{a})

	_, err := r.CheckOrder([]resolver.ModuleID{a})
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestCheckOrderIndependentModulesNoCrossContamination(t *testing.T) {
	r := New()
	a, b, shared := resolver.ModuleID("a"), resolver.ModuleID("b"), resolver.ModuleID("shared")
	r.RegisterParsed(a, &ast.Program{}, []resolver.ModuleID{shared})
	r.RegisterParsed(b, &ast.Program{}, nil)
	r.RegisterParsed(shared, &ast.Program{}, nil)

	order, err := r.CheckOrder([]resolver.ModuleID{a, b})
	require.NoError(t, err)
	require.Contains(t, order, shared)
	require.Contains(t, order, a)
	require.Contains(t, order, b)

	var sharedIdx, aIdx int
	for i, id := range order {
		if id == shared {
			sharedIdx = i
		}
		if id == a {
			aIdx = i
		}
	}
	require.Less(t, sharedIdx, aIdx)
}
