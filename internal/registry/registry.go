// Package registry is the Module Registry half of spec §6's module
// resolution contract: a concurrent store of parsed and type-checked
// module state that sequences cross-module type checking (dependency's
// exports must be registered before an importer's type-check starts).
// Grounded on internal/iface/iface.go's per-module interface idiom for
// the exported-symbol shape, and internal/link/topo.go's DFS
// cycle-detection idiom for DependencyOrder.
package registry

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/resolver"
	"github.com/sunholo/tlc/internal/types"
)

// State is a module's position in the parse/check lifecycle.
type State int

const (
	// StateParsed means register_parsed ran: the AST is available but
	// exports have not yet been type-checked.
	StateParsed State = iota
	// StateChecked means register_exports ran: the export set is final
	// and importers may consume it.
	StateChecked
)

// Export describes one symbol a module makes available to importers.
type Export struct {
	Name string
	Type types.Type
}

// entry is the registry's internal per-module record.
type entry struct {
	id      resolver.ModuleID
	program *ast.Program
	state   State
	exports map[string]Export
	depends []resolver.ModuleID
}

// Registry is the concurrent map of module state described by spec §5's
// "Shared resources" (insertions of parsed modules are independent;
// export registration happens-before any dependent module's type-check).
type Registry struct {
	mu      sync.Mutex
	modules map[resolver.ModuleID]*entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{modules: make(map[resolver.ModuleID]*entry)}
}

// RegisterParsed inserts a freshly-parsed module, non-blocking and
// independent of any other module's state, per spec §5.
func (r *Registry) RegisterParsed(id resolver.ModuleID, program *ast.Program, depends []resolver.ModuleID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[id] = &entry{id: id, program: program, state: StateParsed, depends: depends}
	log.Debugf("registry: parsed module registered: %s", id)
}

// RegisterExports transitions a module from "parsed" to "checked",
// making its export set visible to GetExports and IsChecked. Returns an error if the
// module was never registered as parsed.
func (r *Registry) RegisterExports(id resolver.ModuleID, exports map[string]Export) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.modules[id]
	if !ok {
		return fmt.Errorf("registry: cannot register exports for unparsed module %s", id)
	}
	e.exports = exports
	e.state = StateChecked
	log.Infof("registry: module checked, %d exports: %s", len(exports), id)
	return nil
}

// GetExports returns a module's export set. ok is false if the module
// isn't registered at all, or is registered but not yet checked.
func (r *Registry) GetExports(id resolver.ModuleID) (map[string]Export, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.modules[id]
	if !ok || e.state != StateChecked {
		return nil, false
	}
	return e.exports, true
}

// Program returns a registered module's parsed AST.
func (r *Registry) Program(id resolver.ModuleID) (*ast.Program, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.modules[id]
	if !ok {
		return nil, false
	}
	return e.program, true
}

// IsChecked reports whether a module has completed type-checking.
func (r *Registry) IsChecked(id resolver.ModuleID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.modules[id]
	return ok && e.state == StateChecked
}

// CycleError reports a dependency cycle found while computing check
// order, mirroring link.CycleError's shape and message format.
type CycleError struct {
	Cycle []resolver.ModuleID
}

func (e *CycleError) Error() string {
	msg := "dependency cycle detected: "
	for i, id := range e.Cycle {
		if i > 0 {
			msg += " -> "
		}
		msg += string(id)
	}
	return msg
}

// CheckOrder returns module ids in dependency-before-importer order
// (every dependency appears before the modules that import it), via a
// depth-first post-order traversal rooted at each of roots. Mirrors
// ModuleLinker.TopoSortFromRoot's DFS shape, adapted to read dependency
// edges recorded by RegisterParsed instead of loader.LoadedModule.Imports.
func (r *Registry) CheckOrder(roots []resolver.ModuleID) ([]resolver.ModuleID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	visited := map[resolver.ModuleID]bool{}
	inPath := map[resolver.ModuleID]bool{}
	var order []resolver.ModuleID
	var path []resolver.ModuleID

	var visit func(id resolver.ModuleID) error
	visit = func(id resolver.ModuleID) error {
		if visited[id] {
			return nil
		}
		if inPath[id] {
			cycle := append([]resolver.ModuleID{}, path...)
			cycle = append(cycle, id)
			return &CycleError{Cycle: cycle}
		}

		inPath[id] = true
		path = append(path, id)

		e, ok := r.modules[id]
		if ok {
			for _, dep := range e.depends {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		inPath[id] = false
		path = path[:len(path)-1]
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	return order, nil
}
