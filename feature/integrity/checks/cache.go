package checks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"mod-sync/core/inventory"
)

// CacheReport describes the persisted inventory cache.
type CacheReport struct {
	Path          string   `json:"path"`
	Status        string   `json:"status"` // "ok", "missing", "corrupt", "version_mismatch", "stale"
	SchemaVersion int      `json:"schema_version"`
	Entries       int      `json:"entries"`
	Orphaned      []string `json:"orphaned"`
	Outdated      []string `json:"outdated"`
	Error         string   `json:"error,omitempty"`
}

// CheckCache reads the cache document at path without modifying it and
// compares its entries with the archives in modsFolder. Orphaned entries
// point at files that no longer exist; outdated ones no longer match the
// file's size or modification time.
func CheckCache(path, modsFolder string) (*CacheReport, error) {
	report := &CacheReport{
		Path:     path,
		Status:   "ok",
		Orphaned: []string{},
		Outdated: []string{},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		report.Status = "missing"
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var doc inventory.InventoryCache
	if err := json.Unmarshal(data, &doc); err != nil {
		report.Status = "corrupt"
		report.Error = err.Error()
		return report, nil
	}

	report.SchemaVersion = doc.Version
	report.Entries = len(doc.Entries)
	if doc.Version != inventory.SchemaVersion {
		report.Status = "version_mismatch"
		return report, nil
	}

	for name, entry := range doc.Entries {
		info, err := os.Stat(filepath.Join(modsFolder, name))
		if err != nil {
			report.Orphaned = append(report.Orphaned, name)
			continue
		}
		if entry == nil || !inventory.IsFresh(*entry, info.Size(), info.ModTime()) {
			report.Outdated = append(report.Outdated, name)
		}
	}
	sort.Strings(report.Orphaned)
	sort.Strings(report.Outdated)

	if len(report.Orphaned) > 0 || len(report.Outdated) > 0 {
		report.Status = "stale"
	}
	return report, nil
}
