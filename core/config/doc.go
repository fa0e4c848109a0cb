// Package config provides configuration management for mod-sync.
//
// It utilizes Viper for loading configuration from environment variables,
// an optional config file (config.yaml or config.toml) and a .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Sync: mods folder, server address and code, hash algorithm, concurrency, backups
//   - Server: local HTTP control surface (host, port, API key)
//   - Storage: S3/MinIO mirror credentials, bucket and prefix
//   - Log: Logging level and format
//   - Database: transfer history ledger (sqlite file or MySQL)
//   - Update: GitHub release feed
//
// Environment variables use the SECTION_KEY form, e.g. SYNC_SERVER_IP or
// STORAGE_ENABLED. Defaults come from the `default` struct tags.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.ResolvedManifestURL())
package config
