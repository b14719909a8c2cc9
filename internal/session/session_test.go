package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAssignsUniqueID(t *testing.T) {
	a := New()
	b := New()
	require.NotEmpty(t, a.ID)
	require.NotEmpty(t, b.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.False(t, a.StartedAt.IsZero())
}

func TestNewArtifactCarriesSessionID(t *testing.T) {
	s := New()
	a := s.NewArtifact("main.tl", "5.4", []byte("return 1"), nil)
	require.Equal(t, s.ID, a.SessionID)
	require.Equal(t, "main.tl", a.SourcePath)
	require.Equal(t, "5.4", a.Target)
	require.Equal(t, []byte("return 1"), a.Code)
	require.Nil(t, a.SourceMap)
}

func TestLoggerIncludesSessionField(t *testing.T) {
	s := New()
	entry := s.Logger()
	require.Equal(t, s.ID, entry.Data["session"])
}
