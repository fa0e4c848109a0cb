package inventory

import (
	"time"

	"mod-sync/core/modhash"
)

// SchemaVersion is the only cache document version this build understands.
// Any other value discards the whole document.
const SchemaVersion = 1

// CacheFileName is the document name under the application config directory.
const CacheFileName = "mod_cache.json"

// CacheEntry records what was last computed for one archive.
type CacheEntry struct {
	FileName      string            `json:"file_name"`
	FilePath      string            `json:"file_path"`
	FileSize      int64             `json:"file_size"`
	LastModified  time.Time         `json:"last_modified"`
	Hash          string            `json:"hash,omitempty"`
	HashAlgorithm modhash.Algorithm `json:"hash_algorithm,omitempty"`
	Version       string            `json:"version,omitempty"`
}

// InventoryCache is the persisted document.
type InventoryCache struct {
	Version     int                    `json:"version"`
	CreatedAt   time.Time              `json:"created_at"`
	LastUpdated time.Time              `json:"last_updated"`
	Entries     map[string]*CacheEntry `json:"entries"`
}

// newInventoryCache returns an empty document stamped with now.
func newInventoryCache(now time.Time) *InventoryCache {
	return &InventoryCache{
		Version:     SchemaVersion,
		CreatedAt:   now,
		LastUpdated: now,
		Entries:     make(map[string]*CacheEntry),
	}
}
