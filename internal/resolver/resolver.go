// Package resolver turns the import-clause path strings parsed by
// internal/parser into canonical absolute module identifiers (spec §6
// "Module resolution contract"), grounded on
// internal/module/resolver.go's platform-normalization/search-path idiom.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ModuleID is a canonical, absolute, extension-stripped module path. It
// is the key the registry indexes parsed/checked module state under.
type ModuleID string

// Extension is the source file suffix this resolver recognizes.
const Extension = ".tl"

// Resolver resolves import-clause strings to ModuleIDs, honoring
// relative (`./`, `../`), standard-library (`std/`), and bare
// project/search-path import forms.
type Resolver struct {
	projectRoot   string
	stdlibPath    string
	searchPaths   []string
	caseSensitive bool
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithProjectRoot overrides the auto-detected project root.
func WithProjectRoot(root string) Option { return func(r *Resolver) { r.projectRoot = root } }

// WithStdlibPath overrides the auto-detected standard library path.
func WithStdlibPath(path string) Option { return func(r *Resolver) { r.stdlibPath = path } }

// WithSearchPaths overrides the additional module search directories.
func WithSearchPaths(paths []string) Option { return func(r *Resolver) { r.searchPaths = paths } }

// New creates a Resolver, auto-detecting project root, stdlib path, and
// search paths from the environment unless overridden by opts.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		projectRoot:   findProjectRoot(),
		stdlibPath:    findStdlibPath(),
		searchPaths:   getSearchPaths(),
		caseSensitive: isFileSystemCaseSensitive(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NormalizePath cleans, absolutizes, and (where the file exists)
// symlink-resolves path.
func (r *Resolver) NormalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	path = filepath.Clean(path)

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("make path absolute: %w", err)
		}
		path = abs
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}
	return resolved, nil
}

// Resolve implements the resolver half of spec §6's module resolution
// contract: `resolve(import_string, referrer_path) → ModuleId`.
func (r *Resolver) Resolve(importPath, referrerPath string) (ModuleID, error) {
	switch {
	case strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../"):
		return r.resolveRelative(importPath, referrerPath)
	case strings.HasPrefix(importPath, "std/"):
		return r.resolveStdlib(importPath)
	default:
		return r.resolveProject(importPath, referrerPath)
	}
}

// CanonicalID normalizes an entry-point file path (one given directly to
// the pipeline, not reached via an import string) into the same
// extension-stripped, absolute ModuleID space that Resolve produces for
// imported modules, so both can key the same registry/cache.
func (r *Resolver) CanonicalID(path string) (ModuleID, error) {
	normalized, err := r.NormalizePath(withExtension(path))
	if err != nil {
		return "", err
	}
	return ModuleID(stripExtension(normalized)), nil
}

func (r *Resolver) resolveRelative(importPath, referrerPath string) (ModuleID, error) {
	if referrerPath == "" {
		return "", fmt.Errorf("relative import %q requires a referrer file", importPath)
	}
	path := withExtension(filepath.Join(filepath.Dir(referrerPath), importPath))
	normalized, err := r.NormalizePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(normalized); err != nil {
		return "", fmt.Errorf("module not found: %s", importPath)
	}
	return ModuleID(stripExtension(normalized)), nil
}

func (r *Resolver) resolveStdlib(importPath string) (ModuleID, error) {
	libPath := strings.TrimPrefix(importPath, "std/")
	path := withExtension(filepath.Join(r.stdlibPath, libPath))
	normalized, err := r.NormalizePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(normalized); err != nil {
		return "", fmt.Errorf("stdlib module not found: %s", importPath)
	}
	return ModuleID(stripExtension(normalized)), nil
}

// resolveProject handles bare module names: first relative to the
// referrer's directory, then the project root, then each search path.
func (r *Resolver) resolveProject(importPath, referrerPath string) (ModuleID, error) {
	var candidates []string
	if referrerPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(referrerPath), importPath))
	}
	candidates = append(candidates, filepath.Join(r.projectRoot, importPath))
	for _, sp := range r.searchPaths {
		candidates = append(candidates, filepath.Join(sp, importPath))
	}

	for _, candidate := range candidates {
		path := withExtension(candidate)
		normalized, err := r.NormalizePath(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(normalized); err == nil {
			return ModuleID(stripExtension(normalized)), nil
		}
	}
	return "", fmt.Errorf("module not found: %s", importPath)
}

func withExtension(path string) string {
	if strings.HasSuffix(path, Extension) {
		return path
	}
	return path + Extension
}

func stripExtension(path string) string {
	return strings.TrimSuffix(path, Extension)
}

func findProjectRoot() string {
	markers := []string{"go.mod", ".git", "tlc.yaml", ".tlc"}

	dir, err := os.Getwd()
	if err != nil {
		return "."
	}

	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	pwd, _ := os.Getwd()
	return pwd
}

func findStdlibPath() string {
	if stdlib := os.Getenv("TLC_STDLIB"); stdlib != "" {
		return stdlib
	}

	if exe, err := os.Executable(); err == nil {
		for _, candidate := range []string{
			filepath.Join(filepath.Dir(exe), "..", "stdlib"),
			filepath.Join(filepath.Dir(exe), "stdlib"),
		} {
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				return candidate
			}
		}
	}

	stdlib := filepath.Join(findProjectRoot(), "stdlib")
	if info, err := os.Stat(stdlib); err == nil && info.IsDir() {
		return stdlib
	}

	return filepath.Join(".", "stdlib")
}

func getSearchPaths() []string {
	var paths []string
	if tlPath := os.Getenv("TLC_PATH"); tlPath != "" {
		for _, p := range strings.Split(tlPath, string(os.PathListSeparator)) {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tlc", "modules"))
	}
	paths = append(paths, findProjectRoot())
	return paths
}

func isFileSystemCaseSensitive() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return false
	default:
		return true
	}
}
