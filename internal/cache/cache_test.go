package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, configHash string) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "cache.db"), configHash)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchemaAndMetaRow(t *testing.T) {
	s := openTestStore(t, "cfg-v1")
	var version int
	var hash string
	err := s.db.QueryRow("SELECT schema_version, config_hash FROM cache_meta WHERE id = 1").Scan(&version, &hash)
	require.NoError(t, err)
	require.Equal(t, SchemaVersion, version)
	require.Equal(t, "cfg-v1", hash)
}

func TestOpenWipesOnConfigHashChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	s1, err := Open(path, "cfg-v1")
	require.NoError(t, err)
	require.NoError(t, s1.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h1", CacheHash: "c1", CachedAt: 1}, []byte("artifact")))
	require.NoError(t, s1.Close())

	s2, err := Open(path, "cfg-v2")
	require.NoError(t, err)
	defer s2.Close()

	_, _, ok, err := s2.GetEntry("a.tl")
	require.NoError(t, err)
	require.False(t, ok)

	var hash string
	require.NoError(t, s2.db.QueryRow("SELECT config_hash FROM cache_meta WHERE id = 1").Scan(&hash))
	require.Equal(t, "cfg-v2", hash)
}

func TestOpenWipesOnSchemaVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	s1, err := Open(path, "cfg-v1")
	require.NoError(t, err)
	require.NoError(t, s1.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h1", CacheHash: "c1", CachedAt: 1}, []byte("artifact")))
	_, err = s1.db.Exec("UPDATE cache_meta SET schema_version = ? WHERE id = 1", SchemaVersion+1)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path, "cfg-v1")
	require.NoError(t, err)
	defer s2.Close()

	_, _, ok, err := s2.GetEntry("a.tl")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutAndGetEntryRoundtrip(t *testing.T) {
	s := openTestStore(t, "cfg")
	e := Entry{
		SourcePath:   "mod.tl",
		SourceHash:   "srchash",
		CacheHash:    "cachehash",
		CachedAt:     1234,
		Dependencies: []string{"dep1.tl", "dep2.tl"},
	}
	require.NoError(t, s.PutEntry(e, []byte("compiled lua")))

	got, artifact, ok, err := s.GetEntry("mod.tl")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("compiled lua"), artifact)
	require.Equal(t, e.SourceHash, got.SourceHash)
	require.Equal(t, e.CacheHash, got.CacheHash)
	require.Equal(t, e.CachedAt, got.CachedAt)
	require.ElementsMatch(t, e.Dependencies, got.Dependencies)
}

func TestGetEntryMissingIsNotError(t *testing.T) {
	s := openTestStore(t, "cfg")
	_, _, ok, err := s.GetEntry("missing.tl")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveEntry(t *testing.T) {
	s := openTestStore(t, "cfg")
	require.NoError(t, s.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))
	require.NoError(t, s.RemoveEntry("a.tl"))
	_, _, ok, err := s.GetEntry("a.tl")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCleanupStaleEntriesRemovesMissingFiles(t *testing.T) {
	s := openTestStore(t, "cfg")
	require.NoError(t, s.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))
	require.NoError(t, s.PutEntry(Entry{SourcePath: "b.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))

	require.NoError(t, s.CleanupStaleEntries([]string{"a.tl"}))

	_, _, aOK, err := s.GetEntry("a.tl")
	require.NoError(t, err)
	require.True(t, aOK)

	_, _, bOK, err := s.GetEntry("b.tl")
	require.NoError(t, err)
	require.False(t, bOK)
}

func TestHashBytesIsStableAndDistinct(t *testing.T) {
	require.Equal(t, HashBytes([]byte("hello")), HashBytes([]byte("hello")))
	require.NotEqual(t, HashBytes([]byte("hello")), HashBytes([]byte("world")))
}

func TestDetectChangesNewAndModifiedFiles(t *testing.T) {
	s := openTestStore(t, "cfg")
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.tl")
	writeFile(t, path, "const x = 1")

	hash, err := HashFile(path)
	require.NoError(t, err)

	changes, err := s.DetectChanges([]string{path})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, hash, changes[0].SourceHash)

	require.NoError(t, s.PutEntry(Entry{SourcePath: path, SourceHash: hash, CacheHash: "c", CachedAt: 1}, []byte("x")))

	changes, err = s.DetectChanges([]string{path})
	require.NoError(t, err)
	require.Empty(t, changes)

	writeFile(t, path, "const x = 2")
	changes, err = s.DetectChanges([]string{path})
	require.NoError(t, err)
	require.Len(t, changes, 1)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInvalidationSimple(t *testing.T) {
	s := openTestStore(t, "cfg")
	require.NoError(t, s.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1, Dependencies: []string{"b.tl"}}, []byte("x")))
	require.NoError(t, s.PutEntry(Entry{SourcePath: "b.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))

	eng := NewInvalidationEngine(s)
	stale, err := eng.ComputeStaleModules([]string{"b.tl"})
	require.NoError(t, err)
	require.True(t, stale["b.tl"])
	require.True(t, stale["a.tl"])
}

func TestInvalidationTransitive(t *testing.T) {
	s := openTestStore(t, "cfg")
	require.NoError(t, s.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1, Dependencies: []string{"b.tl"}}, []byte("x")))
	require.NoError(t, s.PutEntry(Entry{SourcePath: "b.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1, Dependencies: []string{"c.tl"}}, []byte("x")))
	require.NoError(t, s.PutEntry(Entry{SourcePath: "c.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))

	eng := NewInvalidationEngine(s)
	stale, err := eng.ComputeStaleModules([]string{"c.tl"})
	require.NoError(t, err)
	require.True(t, stale["a.tl"])
	require.True(t, stale["b.tl"])
	require.True(t, stale["c.tl"])
}

func TestInvalidationPartialDoesNotCrossIndependentModules(t *testing.T) {
	s := openTestStore(t, "cfg")
	require.NoError(t, s.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1, Dependencies: []string{"shared.tl"}}, []byte("x")))
	require.NoError(t, s.PutEntry(Entry{SourcePath: "b.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))
	require.NoError(t, s.PutEntry(Entry{SourcePath: "shared.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))

	eng := NewInvalidationEngine(s)
	stale, err := eng.ComputeStaleModules([]string{"shared.tl"})
	require.NoError(t, err)
	require.True(t, stale["a.tl"])
	require.True(t, stale["shared.tl"])
	require.False(t, stale["b.tl"])
}

func TestClearRemovesAllEntriesButKeepsMeta(t *testing.T) {
	s := openTestStore(t, "cfg")
	require.NoError(t, s.PutEntry(Entry{SourcePath: "a.tl", SourceHash: "h", CacheHash: "c", CachedAt: 1}, []byte("x")))
	require.NoError(t, s.Clear())

	_, _, ok, err := s.GetEntry("a.tl")
	require.NoError(t, err)
	require.False(t, ok)

	var hash string
	require.NoError(t, s.db.QueryRow("SELECT config_hash FROM cache_meta WHERE id = 1").Scan(&hash))
	require.Equal(t, "cfg", hash)
}
