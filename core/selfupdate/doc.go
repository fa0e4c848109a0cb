// Package selfupdate checks the project's GitHub releases for a newer build.
//
// # Overview
//
// The checker lists the repository releases, drops drafts and pre-releases,
// and picks the highest version tag. Tags are compared as semantic versions
// with golang.org/x/mod/semver after normalization: a "v" prefix is optional
// and any "-suffix" is ignored.
//
// # Caching
//
// A fetched release is reused for the configured TTL (one hour by default).
// Concurrent checks during a refresh share one API request.
//
// # Usage
//
//	client := selfupdate.NewClient(cfg.Update, nil)
//	checker := selfupdate.NewChecker(client, version, cfg.Update.CacheTTL, logger)
//	for res := range checker.Watch(ctx, cfg.Update.Interval) {
//	    if res.Available {
//	        logger.Info("Update available", zap.String("latest", res.Latest))
//	    }
//	}
//
// The watcher runs on its own goroutine and shares no state with mod
// synchronization.
package selfupdate
