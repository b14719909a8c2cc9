package types

import "github.com/sunholo/tlc/internal/interner"

// Env is a lexical scope chain for value bindings, plus narrowing
// overlays pushed by flow-sensitive checks (spec §4.2 Flow-sensitive
// narrowing). Declarations (classes/interfaces/enums/aliases) live in a
// separate, module-wide Decls table since TL allows forward reference to
// them from anywhere in the module.
type Env struct {
	parent *Env
	vars   map[interner.ID]Type
	narrow map[interner.ID]Type // flow-narrowed types, checked before vars
}

// NewEnv creates a root scope.
func NewEnv() *Env {
	return &Env{vars: map[interner.ID]Type{}}
}

// Child creates a nested scope (block, function body, arm body).
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: map[interner.ID]Type{}}
}

func (e *Env) Define(name interner.ID, t Type) {
	e.vars[name] = t
}

// Lookup resolves name, preferring a narrowed type in the nearest scope
// that has one, per spec §4.2's narrowing-shadows-declared-type rule.
func (e *Env) Lookup(name interner.ID) (Type, bool) {
	for s := e; s != nil; s = s.parent {
		if s.narrow != nil {
			if t, ok := s.narrow[name]; ok {
				return t, true
			}
		}
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Bindings returns the names and types declared directly in this scope
// (not walking to a parent), so a caller holding a module's top-level Env
// can read off every top-level binding's checked type, e.g. to build a
// module's export set.
func (e *Env) Bindings() map[interner.ID]Type {
	return e.vars
}

// Narrow records a flow-narrowed type for name in this scope, restored
// when the scope that introduced it (an if/match arm) closes.
func (e *Env) Narrow(name interner.ID, t Type) {
	if e.narrow == nil {
		e.narrow = map[interner.ID]Type{}
	}
	e.narrow[name] = t
}

// Decls is the module-wide table of nominal declarations, resolved in a
// pre-pass before any function body is checked (spec §4.2, §6 resolution
// ordering).
type Decls struct {
	byName map[string]*Decl
}

func NewDecls() *Decls {
	return &Decls{byName: map[string]*Decl{}}
}

func (d *Decls) Define(decl *Decl) {
	d.byName[decl.Name] = decl
}

func (d *Decls) Lookup(name string) (*Decl, bool) {
	decl, ok := d.byName[name]
	return decl, ok
}
