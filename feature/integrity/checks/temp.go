package checks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mod-sync/core/inventory"
	"mod-sync/core/transfer"

	"go.uber.org/zap"
)

// TempSuffix is the name ending of archives left behind by interrupted transfers.
const TempSuffix = inventory.ArchiveExt + transfer.TempSuffix

// CheckTemp returns the leftover partial downloads in the mods folder, sorted.
func CheckTemp(modsFolder string) ([]string, error) {
	entries, err := os.ReadDir(modsFolder)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list mods folder: %w", err)
	}

	var leftovers []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), TempSuffix) {
			leftovers = append(leftovers, e.Name())
		}
	}
	sort.Strings(leftovers)
	return leftovers, nil
}

// FixTemp deletes the given leftovers and returns how many were removed.
func FixTemp(logger *zap.Logger, modsFolder string, leftovers []string) (int, error) {
	removed := 0
	for _, name := range leftovers {
		path := filepath.Join(modsFolder, filepath.Base(name))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Error("Failed to remove partial download", zap.String("file", name), zap.Error(err))
			return removed, err
		}
		removed++
		logger.Info("Removed partial download", zap.String("file", name))
	}
	return removed, nil
}
