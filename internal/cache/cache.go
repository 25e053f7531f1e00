// Package cache stores geocoding results across documents of a corpus run.
// The same place name recurs in work after work; resolving it once per corpus
// keeps the external provider traffic near zero.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache is the storage interface shared by the memory, disk and layered
// implementations. Values are opaque serialized records.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a normalized place name. Hashing keeps
// arbitrary Japanese text safe as a file name on the disk layer.
func Key(normalizedName string) string {
	hash := sha256.Sum256([]byte(normalizedName))
	return "chimei:v1:" + hex.EncodeToString(hash[:])
}
