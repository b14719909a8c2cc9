// Package cache is the persistent build-cache/invalidation engine (spec
// §5 Cache & Invalidation), grounded on
// original_source/crates/typedlua-core/src/cache/{manifest,invalidation,manager}.rs,
// with the manifest's storage backend reworked from a single bincode blob
// onto a SQLite-backed store (mattn/go-sqlite3), matching
// termfx-morfx's internal/db/db.go WAL/busy-timeout/PRAGMA idiom.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sunholo/tlc/internal/diag"
)

// SchemaVersion gates CAC001 (schema mismatch) detection; bumped whenever
// the table layout below changes incompatibly.
const SchemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS cache_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	schema_version INTEGER NOT NULL,
	config_hash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS modules (
	source_path TEXT PRIMARY KEY,
	source_hash TEXT NOT NULL,
	cache_hash TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	artifact BLOB
);
CREATE TABLE IF NOT EXISTS dependencies (
	module_path TEXT NOT NULL,
	dependency_path TEXT NOT NULL,
	PRIMARY KEY (module_path, dependency_path)
);
CREATE INDEX IF NOT EXISTS idx_dependencies_dep ON dependencies(dependency_path);
`

// Store is the SQLite-backed handle to one project's build cache,
// mirroring CacheManager's manifest/modules split in manager.rs but
// persisting both the dependency graph and the cached artifacts in one
// database rather than a manifest file plus a directory of `.bin` files.
type Store struct {
	db         *sql.DB
	configHash string
}

// Open opens (creating if necessary) the SQLite cache database at path,
// applying the same WAL/busy-timeout PRAGMAs as the teacher's db.Open,
// and reconciles the stored schema/config hash against the current ones.
// A schema mismatch wipes and recreates the cache (recoverable, per
// CAC001's documented behavior); it is never treated as a fatal error.
func Open(path string, configHash string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, diag.Errorf(diag.IO001, path, nil, "create cache directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf(
		"%s?_busy_timeout=5000&_foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL", path))
	if err != nil {
		return nil, diag.Errorf(diag.IO001, path, nil, "open cache database: %v", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, diag.Errorf(diag.IO001, path, nil, "apply cache schema: %v", err)
	}

	s := &Store{db: db, configHash: configHash}
	if err := s.reconcile(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// reconcile loads the stored (schema_version, config_hash) row and wipes
// the cache if either no longer matches, per CacheManager::load_manifest's
// version-mismatch handling and CacheManager::is_valid's config check.
func (s *Store) reconcile() error {
	var storedVersion int
	var storedConfigHash string
	err := s.db.QueryRow("SELECT schema_version, config_hash FROM cache_meta WHERE id = 1").
		Scan(&storedVersion, &storedConfigHash)

	switch {
	case err == sql.ErrNoRows:
		return s.writeMeta()
	case err != nil:
		return diag.Errorf(diag.IO001, "", nil, "read cache metadata: %v", err)
	case storedVersion != SchemaVersion:
		log.Warnf("cache schema version mismatch (stored %d, expected %d); wiping cache", storedVersion, SchemaVersion)
		if err := s.wipe(); err != nil {
			return err
		}
		return s.writeMeta()
	case storedConfigHash != s.configHash:
		log.Info("compiler configuration changed; wiping cache")
		if err := s.wipe(); err != nil {
			return err
		}
		return s.writeMeta()
	}
	return nil
}

func (s *Store) writeMeta() error {
	_, err := s.db.Exec(
		"INSERT INTO cache_meta (id, schema_version, config_hash) VALUES (1, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET schema_version = excluded.schema_version, config_hash = excluded.config_hash",
		SchemaVersion, s.configHash)
	if err != nil {
		return diag.Errorf(diag.IO001, "", nil, "write cache metadata: %v", err)
	}
	return nil
}

// wipe clears every cached module/dependency row, used on schema or
// config mismatch (CAC001's recovery path: "recovered by wiping").
func (s *Store) wipe() error {
	for _, table := range []string{"modules", "dependencies"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return diag.Errorf(diag.IO001, "", nil, "wipe cache table %s: %v", table, err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
