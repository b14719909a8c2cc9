package cache

// InvalidationEngine computes the set of modules that must be
// recompiled after a set of source files change, by propagating
// staleness through the reverse dependency graph. Grounded on
// InvalidationEngine::compute_stale_modules in invalidation.rs.
type InvalidationEngine struct {
	store *Store
}

// NewInvalidationEngine builds an engine reading the dependency graph
// from store.
func NewInvalidationEngine(store *Store) *InvalidationEngine {
	return &InvalidationEngine{store: store}
}

// ComputeStaleModules returns the set of module paths that are stale
// given changedFiles: the changed files themselves, plus every module
// that transitively depends on one of them, found via a worklist BFS
// over the reverse dependency graph (dependency -> dependents).
func (e *InvalidationEngine) ComputeStaleModules(changedFiles []string) (map[string]bool, error) {
	deps, err := e.store.AllDependencies()
	if err != nil {
		return nil, err
	}

	reverse := map[string][]string{}
	for module, moduleDeps := range deps {
		for _, dep := range moduleDeps {
			reverse[dep] = append(reverse[dep], module)
		}
	}

	stale := map[string]bool{}
	var worklist []string
	for _, f := range changedFiles {
		if !stale[f] {
			stale[f] = true
			worklist = append(worklist, f)
		}
	}

	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		for _, dependent := range reverse[cur] {
			if !stale[dependent] {
				stale[dependent] = true
				worklist = append(worklist, dependent)
			}
		}
	}

	return stale, nil
}

// IsModuleStale reports whether modulePath is in the stale set computed
// from changedFiles.
func (e *InvalidationEngine) IsModuleStale(modulePath string, changedFiles []string) (bool, error) {
	stale, err := e.ComputeStaleModules(changedFiles)
	if err != nil {
		return false, err
	}
	return stale[modulePath], nil
}
