package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sunholo/tlc/internal/codegen"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.CompilerOptions.StrictNullChecks)
	require.Equal(t, StrictError, cfg.CompilerOptions.StrictNaming)
	require.False(t, cfg.CompilerOptions.NoImplicitUnknown)
	require.False(t, cfg.CompilerOptions.NoExplicitUnknown)
	require.Equal(t, "5.4", cfg.CompilerOptions.Target)
	require.True(t, cfg.CompilerOptions.EnableOop)
	require.True(t, cfg.CompilerOptions.EnableFp)
	require.True(t, cfg.CompilerOptions.EnableDecorators)
	require.True(t, cfg.CompilerOptions.AllowNonTypedLua)
	require.False(t, cfg.CompilerOptions.SourceMap)
	require.False(t, cfg.CompilerOptions.NoEmit)
	require.True(t, cfg.CompilerOptions.Pretty)
	require.Equal(t, []string{"**/*.tl"}, cfg.Include)
	require.Equal(t, []string{"**/node_modules/**", "**/dist/**"}, cfg.Exclude)
}

func TestCompilerTargetMapping(t *testing.T) {
	cases := map[string]codegen.Target{
		"5.1": codegen.Lua51,
		"5.2": codegen.Lua52,
		"5.3": codegen.Lua53,
		"5.4": codegen.Lua54,
		"":    codegen.Lua54,
	}
	for target, want := range cases {
		opts := CompilerOptions{Target: target}
		require.Equal(t, want, opts.CompilerTarget())
	}
}

func TestSerializeConfigRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.CompilerOptions.Target = "5.1"
	cfg.CompilerOptions.StrictNaming = StrictWarning
	cfg.Include = []string{"src/**/*.tl"}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var roundtripped CompilerConfig
	require.NoError(t, yaml.Unmarshal(data, &roundtripped))
	require.Equal(t, cfg, roundtripped)
}

func TestDeserializeConfigFillsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tlc.yaml")
	yamlContent := "compilerOptions:\n  target: \"5.2\"\n  strictNaming: off\ninclude:\n  - \"lib/**/*.tl\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "5.2", cfg.CompilerOptions.Target)
	require.Equal(t, StrictOff, cfg.CompilerOptions.StrictNaming)
	require.Equal(t, []string{"lib/**/*.tl"}, cfg.Include)

	// Fields the file never mentioned still carry their defaults.
	require.True(t, cfg.CompilerOptions.StrictNullChecks)
	require.True(t, cfg.CompilerOptions.EnableOop)
	require.Equal(t, []string{"**/node_modules/**", "**/dist/**"}, cfg.Exclude)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestHashIsStableAndChangesWithConfig(t *testing.T) {
	a := Default()
	b := Default()

	hashA, err := a.Hash()
	require.NoError(t, err)
	hashB, err := b.Hash()
	require.NoError(t, err)
	require.Equal(t, hashA, hashB)

	b.CompilerOptions.Target = "5.1"
	hashC, err := b.Hash()
	require.NoError(t, err)
	require.NotEqual(t, hashA, hashC)
}
