package transfer

import (
	"time"

	"mod-sync/core/modhash"
)

// BackupDirName is the folder inside the mods folder holding replaced archives.
const BackupDirName = "_backup"

// TempSuffix is appended to the archive name while it is being downloaded.
const TempSuffix = ".tmp"

// Options configures an Engine. Zero values take the defaults below.
type Options struct {
	// ModsFolder is where archives are installed.
	ModsFolder string
	// Algorithm verifies downloads; AlgorithmNone skips verification.
	Algorithm modhash.Algorithm
	// BackupOnOverwrite copies an existing archive to _backup before replacing it.
	BackupOnOverwrite bool
	// MaxConcurrent bounds simultaneous transfers (default 3).
	MaxConcurrent int
	// MaxAttempts bounds download attempts per mod (default 3).
	MaxAttempts int
	// RetryDelay is the linear backoff unit: attempt n waits n*RetryDelay (default 1s).
	RetryDelay time.Duration
	// AttemptTimeout bounds a single attempt (default 60s).
	AttemptTimeout time.Duration
	// ChunkSize is the copy buffer size (default 8 KiB).
	ChunkSize int
}

const (
	DefaultMaxConcurrent  = 3
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = time.Second
	DefaultAttemptTimeout = 60 * time.Second
	DefaultChunkSize      = 8 << 10
)

func (o Options) withDefaults() Options {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = DefaultMaxConcurrent
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Algorithm == "" {
		o.Algorithm = modhash.DefaultAlgorithm
	}
	return o
}
