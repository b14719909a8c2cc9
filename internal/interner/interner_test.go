package interner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternReturnsStableID(t *testing.T) {
	in := New()
	a := in.Intern("foo")
	b := in.Intern("foo")
	require.Equal(t, a, b)

	text, ok := in.Lookup(a)
	require.True(t, ok)
	require.Equal(t, "foo", text)
}

func TestInternDistinctTextsGetDistinctIDs(t *testing.T) {
	in := New()
	a := in.Intern("foo")
	b := in.Intern("bar")
	require.NotEqual(t, a, b)
}

func TestCommonIdentifierPreset(t *testing.T) {
	in := New()
	id, ok := in.Preset("self")
	require.True(t, ok)

	// Interning the same text again must return the preset ID, not a new one.
	require.Equal(t, id, in.Intern("self"))
}

func TestLookupUnknownID(t *testing.T) {
	in := New()
	_, ok := in.Lookup(ID(9999))
	require.False(t, ok)
}

func TestInternConcurrentSafe(t *testing.T) {
	in := New()
	var wg sync.WaitGroup
	ids := make([]ID, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = in.Intern("shared")
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}
