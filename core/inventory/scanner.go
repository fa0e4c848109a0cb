package inventory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mod-sync/core/modhash"
	"mod-sync/core/reconcile"

	"go.uber.org/zap"
)

// ArchiveExt is the archive extension class the scanner enumerates.
const ArchiveExt = ".zip"

// HashFunc computes the content identity of a file bound to label.
type HashFunc func(filePath, label string, algo modhash.Algorithm) (string, error)

// VersionFunc extracts the declared version from an archive.
type VersionFunc func(archivePath string) (string, error)

// Scanner builds the live local inventory of a mods folder, reusing fresh
// cache entries and recomputing stale ones.
type Scanner struct {
	store   *CacheStore
	logger  *zap.Logger
	hash    HashFunc
	version VersionFunc
}

// NewScanner creates a scanner backed by store.
func NewScanner(store *CacheStore, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		store:   store,
		logger:  logger,
		hash:    modhash.Compute,
		version: ReadDeclaredVersion,
	}
}

// Store returns the cache store the scanner writes to.
func (s *Scanner) Store() *CacheStore {
	return s.store
}

// Scan enumerates archives directly inside modsFolder and returns one LocalMod
// per readable archive, sorted by file name. A missing folder yields an empty
// inventory. The cache is pruned and saved exactly once per scan. The only
// error returned is the context's.
func (s *Scanner) Scan(ctx context.Context, modsFolder string, algo modhash.Algorithm) ([]reconcile.LocalMod, error) {
	files, err := listArchives(modsFolder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Mods folder does not exist", zap.String("folder", modsFolder))
		} else {
			s.logger.Warn("Failed to list mods folder", zap.String("folder", modsFolder), zap.Error(err))
		}
		return []reconcile.LocalMod{}, nil
	}

	s.store.Load()

	mods := make([]reconcile.LocalMod, 0, len(files))
	present := make([]string, 0, len(files))
	recomputed := 0

	for _, fileName := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		present = append(present, fileName)
		filePath := filepath.Join(modsFolder, fileName)

		mod, fresh, err := s.inspect(filePath, fileName, algo)
		if err != nil {
			s.logger.Warn("Skipping unreadable mod archive", zap.String("file", fileName), zap.Error(err))
			continue
		}
		if !fresh {
			recomputed++
		}
		mods = append(mods, mod)
	}

	// Prune persists the document itself when it drops entries.
	if s.store.Prune(present) == 0 {
		s.store.Save()
	}

	s.logger.Info("Scanned mods folder",
		zap.String("folder", modsFolder),
		zap.Int("mods", len(mods)),
		zap.Int("recomputed", recomputed),
	)

	return mods, nil
}

// inspect resolves one archive, from cache when fresh. The bool reports a cache hit.
func (s *Scanner) inspect(filePath, fileName string, algo modhash.Algorithm) (reconcile.LocalMod, bool, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return reconcile.LocalMod{}, false, err
	}

	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	mod := reconcile.LocalMod{
		Name:      name,
		FilePath:  filePath,
		SizeBytes: info.Size(),
	}

	if entry, ok := s.store.Get(fileName); ok && IsFresh(entry, info.Size(), info.ModTime()) && reusable(entry, algo) {
		mod.Version = entry.Version
		if algo.Enabled() {
			mod.Hash = entry.Hash
		}
		return mod, true, nil
	}

	version, err := s.version(filePath)
	if err != nil {
		s.logger.Debug("No declared version", zap.String("file", fileName), zap.Error(err))
		version = ""
	}
	mod.Version = version

	if algo.Enabled() {
		hash, err := s.hash(filePath, name, algo)
		if err != nil {
			return reconcile.LocalMod{}, false, err
		}
		mod.Hash = hash
	}

	s.store.Update(filePath, info.Size(), info.ModTime(), mod.Hash, algo, mod.Version)
	return mod, false, nil
}

// reusable reports whether a fresh entry carries what the current algorithm needs.
func reusable(entry CacheEntry, algo modhash.Algorithm) bool {
	if !algo.Enabled() {
		return true
	}
	return entry.Hash != "" && entry.HashAlgorithm == algo
}

// listArchives returns the archive file names directly inside dir, sorted.
func listArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ArchiveExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
