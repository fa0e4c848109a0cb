package modsync

import (
	"fmt"
	"net/http"

	"mod-sync/core/history"
	"mod-sync/core/inventory"
	"mod-sync/core/manifest"
	"mod-sync/core/settings"
	"mod-sync/core/storage"
	"mod-sync/core/transfer"

	"go.uber.org/zap"
)

// Mirror selects the object-storage mirror as the download source.
type Mirror struct {
	Client storage.Client
	Bucket string
	Prefix string
}

// NewFromConfig wires a Service from settings. A non-nil mirror replaces the
// CDN as download source. ledger may be nil.
func NewFromConfig(cfg settings.Config, mirror *Mirror, ledger *history.Store, logger *zap.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sync settings: %w", err)
	}
	algo, err := cfg.Algorithm()
	if err != nil {
		return nil, err
	}

	var source transfer.Source
	if mirror != nil && mirror.Client != nil {
		source = transfer.NewObjectSource(mirror.Client, mirror.Bucket, mirror.Prefix)
	} else {
		source = transfer.NewHTTPSource(cfg.ResolvedCDNURL(), &http.Client{})
	}

	engine := transfer.NewEngine(transfer.Options{
		ModsFolder:        cfg.ResolvedModsFolder(),
		Algorithm:         algo,
		BackupOnOverwrite: cfg.BackupBeforeOverwrite,
		MaxConcurrent:     cfg.ConcurrentDownloads,
		MaxAttempts:       cfg.MaxAttempts,
		RetryDelay:        cfg.RetryDelay,
		AttemptTimeout:    cfg.AttemptTimeout,
	}, source, logger)

	store := inventory.NewCacheStore(cfg.ResolvedCacheDir(), logger)
	scanner := inventory.NewScanner(store, logger)
	fetcher := manifest.NewFetcher(nil, cfg.ExcludePrefixes, logger)

	return NewService(fetcher, cfg.ResolvedManifestURL(), scanner, engine, ledger, logger), nil
}
