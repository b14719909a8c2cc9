package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/tlc/internal/cache"
	"github.com/sunholo/tlc/internal/config"
	"github.com/sunholo/tlc/internal/resolver"
)

func writeModule(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCompilesImportChainEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "util.tl", `
export function double(x: number): number { return x * 2 }
`)
	mainPath := writeModule(t, dir, "main.tl", `
import { double } from "./util"
export function run(): number { return double(21) }
`)

	res := resolver.New(resolver.WithProjectRoot(dir))
	p := New(config.Default(), res, nil, 4)

	results, err := p.Run(context.Background(), []Source{{Path: mainPath, Code: readFileString(t, mainPath)}})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.Empty(t, r.Diagnostics)
		require.NotEmpty(t, r.Artifact.Code)
	}
}

func TestRunSecondPassHitsCache(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeModule(t, dir, "solo.tl", `
export function answer(): number { return 42 }
`)

	cfg := config.Default()
	hash, err := cfg.Hash()
	require.NoError(t, err)

	store, err := cache.Open(filepath.Join(dir, "cache.sqlite"), hash)
	require.NoError(t, err)
	defer store.Close()

	res := resolver.New(resolver.WithProjectRoot(dir))

	p1 := New(cfg, res, store, 2)
	first, err := p1.Run(context.Background(), []Source{{Path: mainPath, Code: readFileString(t, mainPath)}})
	require.NoError(t, err)
	require.Len(t, first, 1)
	_, firstWasCacheHit := first[0].PhaseTimings["cache"]
	require.False(t, firstWasCacheHit, "first run over a fresh cache should not be a cache hit")

	p2 := New(cfg, res, store, 2)
	second, err := p2.Run(context.Background(), []Source{{Path: mainPath, Code: readFileString(t, mainPath)}})
	require.NoError(t, err)
	require.Len(t, second, 1)

	_, hitCache := second[0].PhaseTimings["cache"]
	require.True(t, hitCache, "second run over an unchanged source should hit the cache")
	require.Equal(t, first[0].Artifact.Code, second[0].Artifact.Code)
}

func readFileString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
