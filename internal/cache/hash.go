package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/sunholo/tlc/internal/diag"
)

// HashBytes returns the hex-encoded sha256 digest of data, the content
// hashing convention grounded on termfx-morfx's ASTCache.hash.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile reads path and returns HashBytes of its contents, used by
// change detection to compare a source file's current hash against the
// one recorded in its cache entry (CacheManager::hash_file).
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", diag.Errorf(diag.IO001, path, nil, "hash source file: %v", err)
	}
	return HashBytes(data), nil
}
