package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, dir, relPath string) string {
	t.Helper()
	full := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("export function noop() {}"), 0o644))
	return full
}

func TestResolveRelativeImport(t *testing.T) {
	dir := t.TempDir()
	referrer := writeModule(t, dir, "a.tl")
	writeModule(t, dir, "b.tl")

	r := New(WithProjectRoot(dir), WithStdlibPath(filepath.Join(dir, "stdlib")), WithSearchPaths(nil))
	id, err := r.Resolve("./b", referrer)
	require.NoError(t, err)
	require.Equal(t, ModuleID(filepath.Join(dir, "b")), id)
}

func TestResolveRelativeImportAcceptsExplicitExtension(t *testing.T) {
	dir := t.TempDir()
	referrer := writeModule(t, dir, "a.tl")
	writeModule(t, dir, "b.tl")

	r := New(WithProjectRoot(dir))
	id, err := r.Resolve("./b.tl", referrer)
	require.NoError(t, err)
	require.Equal(t, ModuleID(filepath.Join(dir, "b")), id)
}

func TestResolveRelativeImportMissingFile(t *testing.T) {
	dir := t.TempDir()
	referrer := writeModule(t, dir, "a.tl")

	r := New(WithProjectRoot(dir))
	_, err := r.Resolve("./missing", referrer)
	require.Error(t, err)
}

func TestResolveRelativeImportRequiresReferrer(t *testing.T) {
	r := New()
	_, err := r.Resolve("./b", "")
	require.Error(t, err)
}

func TestResolveStdlibImport(t *testing.T) {
	dir := t.TempDir()
	stdlib := filepath.Join(dir, "stdlib")
	writeModule(t, stdlib, "collections/list.tl")

	r := New(WithStdlibPath(stdlib))
	id, err := r.Resolve("std/collections/list", "")
	require.NoError(t, err)
	require.Equal(t, ModuleID(filepath.Join(stdlib, "collections/list")), id)
}

func TestResolveProjectImportFallsBackToSearchPaths(t *testing.T) {
	dir := t.TempDir()
	projectRoot := filepath.Join(dir, "proj")
	searchDir := filepath.Join(dir, "vendor")
	writeModule(t, searchDir, "utils.tl")

	r := New(WithProjectRoot(projectRoot), WithSearchPaths([]string{searchDir}))
	id, err := r.Resolve("utils", "")
	require.NoError(t, err)
	require.Equal(t, ModuleID(filepath.Join(searchDir, "utils")), id)
}

func TestResolveProjectImportPrefersReferrerDirectory(t *testing.T) {
	dir := t.TempDir()
	referrer := writeModule(t, dir, "pkg/a.tl")
	writeModule(t, dir, "pkg/utils.tl")
	writeModule(t, dir, "utils.tl")

	r := New(WithProjectRoot(dir))
	id, err := r.Resolve("utils", referrer)
	require.NoError(t, err)
	require.Equal(t, ModuleID(filepath.Join(dir, "pkg", "utils")), id)
}

func TestResolveModuleNotFound(t *testing.T) {
	dir := t.TempDir()
	r := New(WithProjectRoot(dir), WithSearchPaths(nil))
	_, err := r.Resolve("nonexistent", "")
	require.Error(t, err)
}
