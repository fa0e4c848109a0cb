// Package inventory discovers the mod archives installed locally and remembers
// what it learned about them between runs.
//
// # Cache
//
// CacheStore persists a small JSON document (mod_cache.json) keyed by archive
// file name. Each entry records the size, modification time, content hash (and
// the algorithm that produced it) and the declared version of one archive.
// An entry is trusted only while it is fresh: the file size is unchanged and the
// modification time differs by less than one second.
//
// The document carries a schema version. A missing, unreadable or
// version-mismatched document is discarded and replaced by an empty one; the
// caller never sees an error, only the one-time cost of recomputation. Saves
// are best-effort: failures are logged and the sync flow continues.
//
// # Scanner
//
// Scanner.Scan lists *.zip files directly inside the mods folder (no recursion)
// and, for each one:
//
//   - reuses the cached hash and version if the entry is fresh
//   - otherwise reads the version from the archive's modDesc.xml and recomputes
//     the content hash unless hashing is disabled
//
// Archives that cannot be read are skipped. After the loop the cache is pruned
// against the current file set and saved once.
//
// # Usage Example
//
//	store := inventory.NewCacheStore(cacheDir, logger)
//	scanner := inventory.NewScanner(store, logger)
//	mods, err := scanner.Scan(ctx, "/games/mods", modhash.AlgorithmMD5)
package inventory
