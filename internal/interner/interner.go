// Package interner implements the session-scoped string interner described
// in spec §3 (Identifier / StringId). Identifiers are interned to opaque
// IDs so the rest of the pipeline never compares names with string
// equality.
package interner

import "sync"

// ID is an opaque interned identifier. The zero value is never a valid ID;
// Intern always returns IDs starting at 1 so a missing field defaults to
// "not interned" rather than silently aliasing the first preset entry.
type ID uint32

const invalid ID = 0

// commonIdentifiers is the preset table created at construction so hot
// names used constantly by the type checker and code generator (receiver
// names, constructor names, decorator names) skip the map lookup on their
// first use in every module.
var commonIdentifiers = []string{
	"self", "super", "new", "constructor", "this",
	"value", "error", "index", "length", "name",
	"constructor", "readonly", "sealed", "deprecated",
	"kind", "ok",
}

// Interner maps identifier text to a stable ID for the lifetime of a
// compilation session. It is append-only: IDs are never recycled or freed
// while the session is alive (spec §3 Ownership & lifecycle).
type Interner struct {
	mu      sync.RWMutex
	byText  map[string]ID
	byID    []string // index 0 unused, IDs are 1-based
	presets map[string]ID
}

// New creates an Interner with the common-identifier preset table already
// populated, so looking those names up never takes the slow path.
func New() *Interner {
	in := &Interner{
		byText:  make(map[string]ID, 256),
		byID:    make([]string, 1, 256), // reserve index 0
		presets: make(map[string]ID, len(commonIdentifiers)),
	}
	for _, name := range commonIdentifiers {
		if _, ok := in.byText[name]; ok {
			continue // de-dup commonIdentifiers itself
		}
		id := in.internLocked(name)
		in.presets[name] = id
	}
	return in
}

// Intern returns the ID for text, assigning a new one if this is the first
// time the session has seen it. Safe for concurrent use; the common path
// (already interned) takes only a read lock.
func (in *Interner) Intern(text string) ID {
	in.mu.RLock()
	if id, ok := in.byText[text]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	// Re-check: another goroutine may have interned it while we waited
	// for the write lock.
	if id, ok := in.byText[text]; ok {
		return id
	}
	return in.internLocked(text)
}

func (in *Interner) internLocked(text string) ID {
	id := ID(len(in.byID))
	in.byID = append(in.byID, text)
	in.byText[text] = id
	return id
}

// Lookup returns the text for id, or "" and false if id was never issued
// by this interner.
func (in *Interner) Lookup(id ID) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == invalid || int(id) >= len(in.byID) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup panics if id is unknown; used in contexts where the ID
// necessarily came from this interner (e.g. a symbol table keyed by ID).
func (in *Interner) MustLookup(id ID) string {
	text, ok := in.Lookup(id)
	if !ok {
		panic("interner: unknown id")
	}
	return text
}

// Preset returns the ID of one of the common identifiers, or false if name
// isn't in the preset table (it can still be interned normally via Intern).
func (in *Interner) Preset(name string) (ID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.presets[name]
	return id, ok
}

// Len reports how many distinct identifiers have been interned so far,
// including the preset table.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byID) - 1
}
