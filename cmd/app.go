package cmd

import (
	"fmt"

	"mod-sync/core/config"
	"mod-sync/core/database"
	"mod-sync/core/history"
	"mod-sync/core/logger"
	"mod-sync/core/storage"
	"mod-sync/feature/integrity"
	"mod-sync/feature/modsync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	ledger *history.Store
	// storage is nil unless the mirror is enabled.
	storage storage.Client
	sync    *modsync.Service
}

// bootstrap loads configuration and wires the sync service. The ledger is
// optional: a failing database only disables transfer history.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed, transfer history disabled", zap.Error(err))
	} else {
		db = conn
	}
	ledger := history.NewStore(db, logg)
	if ledger.Enabled() {
		if err := ledger.Migrate(); err != nil {
			logg.Warn("Failed to migrate transfer history", zap.Error(err))
		}
	}

	a := &app{cfg: cfg, logger: logg, ledger: ledger}

	var mirror *modsync.Mirror
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.storage = client
		mirror = &modsync.Mirror{Client: client, Bucket: cfg.Storage.Bucket, Prefix: cfg.Storage.Prefix}
		logg.Info("Downloading from mirror", zap.String("bucket", cfg.Storage.Bucket))
	}

	svc, err := modsync.NewFromConfig(cfg.Sync, mirror, ledger, logg)
	if err != nil {
		return nil, err
	}
	a.sync = svc
	return a, nil
}

// integrityOptions points the integrity checks at the sync service's state.
func (a *app) integrityOptions() integrity.Options {
	return integrity.Options{
		ModsFolder: a.sync.ModsFolder(),
		Backups:    a.cfg.Sync.BackupBeforeOverwrite,
		Cache:      a.sync.Cache(),
		History:    a.ledger,
		Storage:    a.storage,
		Bucket:     a.cfg.Storage.Bucket,
		Prefix:     a.cfg.Storage.Prefix,
		Region:     a.cfg.Storage.Region,
		Expected:   a.sync.ServerMods,
	}
}

func (a *app) close() {
	a.sync.Shutdown()
	_ = a.logger.Sync()
}
