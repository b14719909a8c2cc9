package cache

import (
	"database/sql"

	"github.com/sunholo/tlc/internal/diag"
)

// Entry is a single cached module's metadata, mirroring CacheEntry in
// manifest.rs. Dependencies are stored as a separate join table rather
// than an embedded list so the invalidation engine can build the reverse
// dependency graph with one query instead of deserializing every entry.
type Entry struct {
	SourcePath   string
	SourceHash   string
	CacheHash    string
	CachedAt     int64
	Dependencies []string
}

// PutEntry inserts or replaces a module's cache entry, its dependency
// edges, and its compiled artifact bytes, mirroring
// CacheManifest::insert_entry plus CacheManager::save_module's combined
// manifest-update-and-artifact-write step (folded into one table here
// rather than a manifest row plus a side file).
func (s *Store) PutEntry(e Entry, artifact []byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return diag.Errorf(diag.IO001, e.SourcePath, nil, "begin cache transaction: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO modules (source_path, source_hash, cache_hash, cached_at, artifact) VALUES (?, ?, ?, ?, ?) "+
			"ON CONFLICT(source_path) DO UPDATE SET source_hash = excluded.source_hash, "+
			"cache_hash = excluded.cache_hash, cached_at = excluded.cached_at, artifact = excluded.artifact",
		e.SourcePath, e.SourceHash, e.CacheHash, e.CachedAt, artifact)
	if err != nil {
		return diag.Errorf(diag.IO001, e.SourcePath, nil, "write cache entry: %v", err)
	}

	if _, err := tx.Exec("DELETE FROM dependencies WHERE module_path = ?", e.SourcePath); err != nil {
		return diag.Errorf(diag.IO001, e.SourcePath, nil, "clear cache dependencies: %v", err)
	}
	for _, dep := range e.Dependencies {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO dependencies (module_path, dependency_path) VALUES (?, ?)",
			e.SourcePath, dep); err != nil {
			return diag.Errorf(diag.IO001, e.SourcePath, nil, "write cache dependency: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return diag.Errorf(diag.IO001, e.SourcePath, nil, "commit cache transaction: %v", err)
	}
	return nil
}

// GetEntry looks up a module's cache entry and artifact bytes. A missing
// row is not an error (ok is false); a row whose artifact is nil or
// empty is surfaced as CAC003 (artifact missing/corrupt), matching the
// teacher's "treat as cache miss, don't fail the build" recovery policy.
func (s *Store) GetEntry(sourcePath string) (entry Entry, artifact []byte, ok bool, err error) {
	row := s.db.QueryRow(
		"SELECT source_hash, cache_hash, cached_at, artifact FROM modules WHERE source_path = ?", sourcePath)
	entry.SourcePath = sourcePath
	if scanErr := row.Scan(&entry.SourceHash, &entry.CacheHash, &entry.CachedAt, &artifact); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return Entry{}, nil, false, nil
		}
		return Entry{}, nil, false, diag.Errorf(diag.IO001, sourcePath, nil, "read cache entry: %v", scanErr)
	}
	if len(artifact) == 0 {
		return Entry{}, nil, false, diag.Errorf(diag.CAC003, sourcePath, nil, "cache artifact missing for %s", sourcePath)
	}

	entry.Dependencies, err = s.dependenciesOf(sourcePath)
	if err != nil {
		return Entry{}, nil, false, err
	}
	return entry, artifact, true, nil
}

func (s *Store) dependenciesOf(modulePath string) ([]string, error) {
	rows, err := s.db.Query("SELECT dependency_path FROM dependencies WHERE module_path = ?", modulePath)
	if err != nil {
		return nil, diag.Errorf(diag.IO001, modulePath, nil, "read cache dependencies: %v", err)
	}
	defer rows.Close()

	var deps []string
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return nil, diag.Errorf(diag.IO001, modulePath, nil, "scan cache dependency: %v", err)
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

// RemoveEntry deletes a module's cache entry and dependency edges.
func (s *Store) RemoveEntry(sourcePath string) error {
	if _, err := s.db.Exec("DELETE FROM modules WHERE source_path = ?", sourcePath); err != nil {
		return diag.Errorf(diag.IO001, sourcePath, nil, "remove cache entry: %v", err)
	}
	if _, err := s.db.Exec("DELETE FROM dependencies WHERE module_path = ?", sourcePath); err != nil {
		return diag.Errorf(diag.IO001, sourcePath, nil, "remove cache dependencies: %v", err)
	}
	return nil
}

// CleanupStaleEntries removes cache rows for files no longer present in
// currentFiles, mirroring CacheManifest::cleanup_stale_entries.
func (s *Store) CleanupStaleEntries(currentFiles []string) error {
	current := make(map[string]bool, len(currentFiles))
	for _, f := range currentFiles {
		current[f] = true
	}

	rows, err := s.db.Query("SELECT source_path FROM modules")
	if err != nil {
		return diag.Errorf(diag.IO001, "", nil, "list cache entries: %v", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return diag.Errorf(diag.IO001, "", nil, "scan cache entry: %v", err)
		}
		if !current[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return diag.Errorf(diag.IO001, "", nil, "list cache entries: %v", err)
	}

	for _, path := range stale {
		if err := s.RemoveEntry(path); err != nil {
			return err
		}
	}
	return nil
}

// AllDependencies returns the full module->dependencies edge list, used
// by the invalidation engine to build a reverse dependency graph without
// issuing one query per module.
func (s *Store) AllDependencies() (map[string][]string, error) {
	rows, err := s.db.Query("SELECT module_path, dependency_path FROM dependencies")
	if err != nil {
		return nil, diag.Errorf(diag.IO001, "", nil, "read dependency graph: %v", err)
	}
	defer rows.Close()

	deps := map[string][]string{}
	for rows.Next() {
		var module, dep string
		if err := rows.Scan(&module, &dep); err != nil {
			return nil, diag.Errorf(diag.IO001, "", nil, "scan dependency graph: %v", err)
		}
		deps[module] = append(deps[module], dep)
	}
	return deps, rows.Err()
}
