package selfupdate

import "time"

// Config holds the release feed settings.
type Config struct {
	// Enabled turns the periodic update check on or off.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Owner is the GitHub account publishing releases.
	Owner string `mapstructure:"owner" default:"Modl-IT-Systeme"`
	// Repo is the GitHub repository publishing releases.
	Repo string `mapstructure:"repo" default:"FSModLauncher"`
	// BaseURL is the GitHub API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.github.com"`
	// Interval is the time between periodic checks.
	Interval time.Duration `mapstructure:"interval" default:"1h"`
	// CacheTTL is how long a fetched release is reused.
	CacheTTL time.Duration `mapstructure:"cache_ttl" default:"1h"`
}
