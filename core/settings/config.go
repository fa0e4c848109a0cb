package settings

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mod-sync/core/modhash"
)

// AppDirName is the per-user folder holding the cache and history ledger.
const AppDirName = "mod-sync"

// Config holds the settings consumed by the synchronization core.
type Config struct {
	// ModsFolder is where the game loads mod archives from.
	// Empty selects the game's default folder under the user's documents.
	ModsFolder string `mapstructure:"mods_folder" default:""`
	// ServerIP is the dedicated server's address.
	ServerIP string `mapstructure:"server_ip" default:""`
	// ServerPort is the dedicated server's web interface port.
	ServerPort string `mapstructure:"server_port" default:"8080"`
	// ServerCode is the stats feed access code.
	ServerCode string `mapstructure:"server_code" default:""`
	// ManifestURL overrides the stats feed URL derived from the server address.
	ManifestURL string `mapstructure:"manifest_url" default:""`
	// CDNURL overrides the mod download base URL derived from the server address.
	CDNURL string `mapstructure:"cdn_url" default:""`
	// HashAlgorithm is md5, sha1, sha256, blake2b or none.
	HashAlgorithm string `mapstructure:"hash_algorithm" default:"md5"`
	// ConcurrentDownloads bounds simultaneous transfers.
	ConcurrentDownloads int `mapstructure:"concurrent_downloads" default:"3"`
	// BackupBeforeOverwrite copies replaced archives into _backup.
	BackupBeforeOverwrite bool `mapstructure:"backup_before_overwrite" default:"true"`
	// ExcludePrefixes lists manifest name prefixes that are never synchronized.
	ExcludePrefixes []string `mapstructure:"exclude_prefixes" default:"pdlc_"`
	// CacheDir holds mod_cache.json. Empty selects the user config dir.
	CacheDir string `mapstructure:"cache_dir" default:""`
	// MaxAttempts bounds download attempts per mod.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// RetryDelay is the linear backoff unit between attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay" default:"1s"`
	// AttemptTimeout bounds one download attempt.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" default:"60s"`
}

// Algorithm parses HashAlgorithm.
func (c Config) Algorithm() (modhash.Algorithm, error) {
	return modhash.ParseAlgorithm(c.HashAlgorithm)
}

// ResolvedManifestURL returns ManifestURL, or the stats feed of the configured server.
func (c Config) ResolvedManifestURL() string {
	if c.ManifestURL != "" {
		return c.ManifestURL
	}
	if c.ServerIP == "" {
		return ""
	}
	return fmt.Sprintf("http://%s/feed/dedicated-server-stats.xml?code=%s",
		net.JoinHostPort(c.ServerIP, c.ServerPort), url.QueryEscape(c.ServerCode))
}

// ResolvedCDNURL returns CDNURL, or the mods folder of the configured server.
func (c Config) ResolvedCDNURL() string {
	if c.CDNURL != "" {
		return strings.TrimRight(c.CDNURL, "/")
	}
	if c.ServerIP == "" {
		return ""
	}
	return fmt.Sprintf("http://%s/mods", net.JoinHostPort(c.ServerIP, c.ServerPort))
}

// ResolvedModsFolder returns ModsFolder, or the game's default mods folder.
func (c Config) ResolvedModsFolder() string {
	if c.ModsFolder != "" {
		return c.ModsFolder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mods"
	}
	return filepath.Join(home, "Documents", "My Games", "FarmingSimulator25", "mods")
}

// ResolvedCacheDir returns CacheDir, or the per-user application config folder.
func (c Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppDirName
	}
	return filepath.Join(dir, AppDirName)
}

// Validate reports every setting that would make a sync pass fail.
func (c Config) Validate() error {
	var errs []error

	if _, err := c.Algorithm(); err != nil {
		errs = append(errs, err)
	}
	if c.ConcurrentDownloads <= 0 {
		errs = append(errs, fmt.Errorf("concurrent_downloads must be positive, got %d", c.ConcurrentDownloads))
	}
	if c.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts))
	}
	if c.ResolvedManifestURL() == "" {
		errs = append(errs, errors.New("server_ip or manifest_url is required"))
	}
	if c.ResolvedCDNURL() == "" {
		errs = append(errs, errors.New("server_ip or cdn_url is required"))
	}

	return errors.Join(errs...)
}
