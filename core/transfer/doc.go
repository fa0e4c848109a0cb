// Package transfer downloads mod archives into the local mods folder.
//
// # Pipeline
//
// For each mod the Engine:
//
//  1. acquires a concurrency permit (released on every exit path)
//  2. copies an existing archive into _backup/{name}-{yyyyMMdd-HHmmss}.zip when
//     backups are enabled; a failed backup is logged and ignored
//  3. streams {name}.zip from the Source into {name}.zip.tmp, up to MaxAttempts
//     times, waiting attempt*RetryDelay between attempts; every attempt has its
//     own AttemptTimeout
//  4. hashes the temp file bound to the mod name and compares it with the
//     manifest hash (skipped when hashing is disabled or the manifest has none)
//  5. replaces {name}.zip with the temp file
//
// A failed or mismatched download never touches the installed archive; the
// temp file is removed.
//
// # Progress
//
// Each transfer emits a sequence of Progress events ending in exactly one
// terminal phase (complete, download_failed, hash_mismatch or error). The
// messages are the ones shown to users:
//
//	Starting download...
//	Downloading (attempt N)...
//	Downloading...
//	Retry N failed: <error>
//	Verifying...
//	Complete
//
// # Sources
//
// HTTPSource fetches from the server's CDN ({base}/{name}.zip). ObjectSource
// fetches from an S3-compatible mirror through core/storage.
//
// # Usage Example
//
//	engine := transfer.NewEngine(transfer.Options{
//	    ModsFolder:    "/games/mods",
//	    Algorithm:     modhash.AlgorithmMD5,
//	    MaxConcurrent: 3,
//	}, transfer.NewHTTPSource(cdnURL, nil), logger)
//
//	outcomes := engine.TransferAll(ctx, plan.Pending, func(p transfer.Progress) {
//	    fmt.Println(p.Name, p.Percent, p.Message)
//	})
package transfer
