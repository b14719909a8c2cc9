// Package config is the compiler configuration surface (spec §6 Inputs,
// [AMBIENT] per SPEC_FULL.md). Grounded on ailang's
// internal/eval_harness/spec.go yaml-tagged load idiom, with defaults
// taken from original_source/crates/typedlua-core/src/config.rs's
// CompilerOptions::default/CompilerConfig::default.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunholo/tlc/internal/codegen"
)

// StrictLevel controls how naming-convention violations are reported
// (spec §7: "strictNaming = warning downgrades... off suppresses").
type StrictLevel string

const (
	StrictOff     StrictLevel = "off"
	StrictWarning StrictLevel = "warning"
	StrictError   StrictLevel = "error"
)

// CompilerOptions controls type checking and code generation for a
// compilation run, mirroring config.rs's CompilerOptions field-for-field.
type CompilerOptions struct {
	StrictNullChecks  bool        `yaml:"strictNullChecks"`
	StrictNaming      StrictLevel `yaml:"strictNaming"`
	NoImplicitUnknown bool        `yaml:"noImplicitUnknown"`
	NoExplicitUnknown bool        `yaml:"noExplicitUnknown"`
	Target            string      `yaml:"target"`
	EnableOop         bool        `yaml:"enableOop"`
	EnableFp          bool        `yaml:"enableFp"`
	EnableDecorators  bool        `yaml:"enableDecorators"`
	AllowNonTypedLua  bool        `yaml:"allowNonTypedLua"`
	OutDir            string      `yaml:"outDir,omitempty"`
	OutFile           string      `yaml:"outFile,omitempty"`
	SourceMap         bool        `yaml:"sourceMap"`
	NoEmit            bool        `yaml:"noEmit"`
	Pretty            bool        `yaml:"pretty"`
}

// DefaultCompilerOptions returns the same defaults as config.rs's
// CompilerOptions::default.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{
		StrictNullChecks: true,
		StrictNaming:     StrictError,
		Target:           "5.4",
		EnableOop:        true,
		EnableFp:         true,
		EnableDecorators: true,
		AllowNonTypedLua: true,
		Pretty:           true,
	}
}

// CompilerTarget maps the config's string Target to the codegen
// package's Target enum, defaulting to Lua54 on an unrecognized value
// (matching LuaVersion's #[derive(Default)] -> Lua54 fallback).
func (o CompilerOptions) CompilerTarget() codegen.Target {
	switch o.Target {
	case "5.1":
		return codegen.Lua51
	case "5.2":
		return codegen.Lua52
	case "5.3":
		return codegen.Lua53
	default:
		return codegen.Lua54
	}
}

// CompilerConfig is the project-level configuration file shape: compiler
// options plus the include/exclude glob lists the CLI resolves into a
// concrete file list before handing it to the core (spec §6: "Presence
// of project-level include/exclude glob lists is the CLI's concern; the
// core receives the resolved file list" — the raw struct is still part
// of the core's public surface because the cache's config_hash is
// computed over it, per SPEC_FULL.md).
type CompilerConfig struct {
	CompilerOptions CompilerOptions `yaml:"compilerOptions"`
	Include         []string        `yaml:"include"`
	Exclude         []string        `yaml:"exclude"`
}

func defaultExclude() []string {
	return []string{"**/node_modules/**", "**/dist/**"}
}

// Default returns the same defaults as config.rs's CompilerConfig::default.
func Default() CompilerConfig {
	return CompilerConfig{
		CompilerOptions: DefaultCompilerOptions(),
		Include:         []string{"**/*.tl"},
		Exclude:         defaultExclude(),
	}
}

// Hash returns a stable digest of the config, suitable for
// internal/cache.Open's configHash parameter: a cache wipes itself
// (CAC001) whenever the config a caller passes no longer matches the
// hash stored from the run that built it.
func (c CompilerConfig) Hash() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Load reads and parses a YAML configuration file, filling in defaults
// for any field the file leaves unset. Mirrors LoadSpec's
// read-then-unmarshal-then-validate shape.
func Load(path string) (CompilerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CompilerConfig{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CompilerConfig{}, fmt.Errorf("parse config YAML: %w", err)
	}
	if len(cfg.Exclude) == 0 {
		cfg.Exclude = defaultExclude()
	}
	return cfg, nil
}
