package cache

// Change describes one source file whose content hash no longer matches
// the hash recorded in its cache entry (or that has no entry at all),
// mirroring CacheManager::detect_changes's per-file comparison.
type Change struct {
	Path       string
	SourceHash string
}

// DetectChanges hashes each of files and reports the ones that are
// new or whose content changed since they were last cached. Folded
// into Store directly rather than a separate CacheManager facade, since
// the SQLite-backed redesign already collapses manager.rs's manifest/
// modules-directory split into one database.
func (s *Store) DetectChanges(files []string) ([]Change, error) {
	var changed []Change
	for _, path := range files {
		hash, err := HashFile(path)
		if err != nil {
			return nil, err
		}
		entry, _, ok, err := s.GetEntry(path)
		if err != nil {
			return nil, err
		}
		if !ok || entry.SourceHash != hash {
			changed = append(changed, Change{Path: path, SourceHash: hash})
		}
	}
	return changed, nil
}

// Clear wipes every cached module and dependency row without touching
// cache_meta, mirroring CacheManager::clear's "remove cache_dir, recreate
// an empty manifest" behavior adapted to a single persistent database.
func (s *Store) Clear() error {
	return s.wipe()
}
