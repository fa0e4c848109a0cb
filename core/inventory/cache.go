package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mod-sync/core/modhash"

	"go.uber.org/zap"
)

// freshnessWindow tolerates filesystem timestamp rounding.
const freshnessWindow = time.Second

// CacheStore owns the inventory cache document. The first Load reads the
// document from disk; later calls return the in-memory copy. Mutations are
// batched in memory until Save.
//
// The store is not designed for concurrent scan passes; the mutex only keeps
// readers such as the HTTP surface from observing a half-applied update.
type CacheStore struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache *InventoryCache
}

// NewCacheStore creates a store persisting to dir/mod_cache.json.
func NewCacheStore(dir string, logger *zap.Logger) *CacheStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheStore{
		path:   filepath.Join(dir, CacheFileName),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Path returns the location of the persisted document.
func (s *CacheStore) Path() string {
	return s.path
}

// Load returns the cache, reading it from disk on first use. A missing, corrupt
// or version-mismatched document is replaced by an empty one, which is then
// persisted. Load never fails.
func (s *CacheStore) Load() *InventoryCache {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		return s.cache
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Debug("No inventory cache found, creating new one", zap.String("path", s.path))
		s.reset()
	case err != nil:
		s.logger.Warn("Failed to read inventory cache, creating new one", zap.String("path", s.path), zap.Error(err))
		s.reset()
	default:
		var doc InventoryCache
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Warn("Failed to parse inventory cache, creating new one", zap.String("path", s.path), zap.Error(err))
			s.reset()
		} else if doc.Version != SchemaVersion {
			s.logger.Info("Inventory cache version mismatch, resetting",
				zap.Int("found", doc.Version),
				zap.Int("expected", SchemaVersion),
			)
			s.reset()
		} else {
			if doc.Entries == nil {
				doc.Entries = make(map[string]*CacheEntry)
			}
			s.cache = &doc
		}
	}

	return s.cache
}

// reset installs an empty document and persists it. Caller holds mu.
func (s *CacheStore) reset() {
	s.cache = newInventoryCache(s.now())
	s.saveLocked()
}

// Get returns a copy of the entry for fileName.
func (s *CacheStore) Get(fileName string) (CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return CacheEntry{}, false
	}
	entry, ok := s.cache.Entries[fileName]
	if !ok {
		return CacheEntry{}, false
	}
	return *entry, true
}

// IsFresh reports whether entry still describes a file with the given size and
// modification time: size must match exactly and mtime within one second.
func IsFresh(entry CacheEntry, size int64, modTime time.Time) bool {
	if entry.FileSize != size {
		return false
	}
	delta := entry.LastModified.Sub(modTime)
	if delta < 0 {
		delta = -delta
	}
	return delta < freshnessWindow
}

// Update upserts the entry for the file at filePath. It does not persist.
func (s *CacheStore) Update(filePath string, size int64, modTime time.Time, hash string, algo modhash.Algorithm, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		s.cache = newInventoryCache(s.now())
	}

	if hash == "" {
		algo = ""
	}

	name := filepath.Base(filePath)
	s.cache.Entries[name] = &CacheEntry{
		FileName:      name,
		FilePath:      filePath,
		FileSize:      size,
		LastModified:  modTime.UTC(),
		Hash:          hash,
		HashAlgorithm: algo,
		Version:       version,
	}
}

// Prune removes entries whose file name is not in existing and persists the
// document if anything was removed. It returns the number of removed entries.
func (s *CacheStore) Prune(existing []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return 0
	}

	keep := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		keep[filepath.Base(name)] = struct{}{}
	}

	removed := 0
	for name := range s.cache.Entries {
		if _, ok := keep[name]; !ok {
			delete(s.cache.Entries, name)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Removed stale cache entries", zap.Int("count", removed))
		s.saveLocked()
	}
	return removed
}

// Save persists the document with a fresh last-updated stamp. Failures are
// logged and swallowed.
func (s *CacheStore) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

// Clear drops every entry and persists the empty document.
func (s *CacheStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = newInventoryCache(s.now())
	s.saveLocked()
}

// Snapshot returns a deep copy of the current document, or nil if nothing was loaded.
func (s *CacheStore) Snapshot() *InventoryCache {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return nil
	}
	out := *s.cache
	out.Entries = make(map[string]*CacheEntry, len(s.cache.Entries))
	for k, v := range s.cache.Entries {
		e := *v
		out.Entries[k] = &e
	}
	return &out
}

func (s *CacheStore) saveLocked() {
	if s.cache == nil {
		return
	}
	s.cache.LastUpdated = s.now()

	if err := s.write(); err != nil {
		s.logger.Error("Failed to save inventory cache", zap.String("path", s.path), zap.Error(err))
	}
}

// write replaces the document via a temp file so a crash never leaves a
// truncated cache behind.
func (s *CacheStore) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
