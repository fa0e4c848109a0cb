package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"mod-sync/core/modhash"
	"mod-sync/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Engine downloads mod archives into the mods folder with bounded
// concurrency, linear-backoff retries and post-download verification.
type Engine struct {
	opts    Options
	source  Source
	logger  *zap.Logger
	permits *semaphore.Weighted
	now     func() time.Time
}

// NewEngine creates an engine reading archives from source.
func NewEngine(opts Options, source Source, logger *zap.Logger) *Engine {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		opts:    opts,
		source:  source,
		logger:  logger,
		permits: semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		now:     time.Now,
	}
}

// Options returns the effective options, defaults applied.
func (e *Engine) Options() Options {
	return e.opts
}

// ArchivePath returns the installed location of modName.
func (e *Engine) ArchivePath(modName string) string {
	return filepath.Join(e.opts.ModsFolder, modName+".zip")
}

// Transfer downloads one mod. Names that are not a plain file name are refused
// before any file is touched. A permit is held for the whole transfer and
// released on every exit path. Failures are reported through the Outcome and
// progress events, never as a panic or process exit.
func (e *Engine) Transfer(ctx context.Context, r reconcile.Result, onProgress ProgressFunc) Outcome {
	name := r.Remote.Name

	if !reconcile.LocalName(name) {
		return e.fail(Outcome{Name: name}, PhaseError, fmt.Errorf("%w: %q", ErrUnsafeName, name), onProgress)
	}
	if err := ctx.Err(); err != nil {
		return e.fail(Outcome{Name: name}, PhaseError, err, onProgress)
	}
	if err := e.permits.Acquire(ctx, 1); err != nil {
		return e.fail(Outcome{Name: name}, PhaseError, err, onProgress)
	}
	defer e.permits.Release(1)

	return e.run(ctx, r, onProgress)
}

// TransferAll runs a fixed pool of MaxConcurrent workers over results and
// returns one Outcome per result, in input order. Results not dispatched
// before ctx is cancelled get an error outcome.
func (e *Engine) TransferAll(ctx context.Context, results []reconcile.Result, onProgress ProgressFunc) []Outcome {
	outcomes := make([]Outcome, len(results))
	if len(results) == 0 {
		return outcomes
	}

	workers := e.opts.MaxConcurrent
	if workers > len(results) {
		workers = len(results)
	}

	jobs := make(chan int)
	dispatched := make([]bool, len(results))

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				outcomes[i] = e.Transfer(ctx, results[i], onProgress)
			}
			return nil
		})
	}

feed:
	for i := range results {
		select {
		case jobs <- i:
			dispatched[i] = true
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	_ = g.Wait()

	for i := range outcomes {
		if !dispatched[i] {
			outcomes[i] = Outcome{Name: results[i].Remote.Name, Phase: PhaseError, Err: ctx.Err()}
		}
	}
	return outcomes
}

func (e *Engine) run(ctx context.Context, r reconcile.Result, onProgress ProgressFunc) Outcome {
	name := r.Remote.Name
	finalPath := e.ArchivePath(name)
	tempPath := finalPath + TempSuffix
	out := Outcome{Name: name}

	log := e.logger.With(zap.String("mod", name), zap.String("source", e.source.Location(name)))

	onProgress.emit(Progress{Name: name, Percent: 0, Phase: PhaseStarting, Message: "Starting download..."})

	if err := os.MkdirAll(e.opts.ModsFolder, 0o755); err != nil {
		return e.fail(out, PhaseError, fmt.Errorf("create mods folder: %w", err), onProgress)
	}

	if e.opts.BackupOnOverwrite {
		if _, err := os.Stat(finalPath); err == nil {
			backup, err := backupArchive(e.opts.ModsFolder, finalPath, name, e.now())
			if err != nil {
				log.Warn("Backup failed, continuing", zap.Error(err))
			} else {
				log.Debug("Backed up existing archive", zap.String("backup", backup))
			}
		}
	}

	var lastErr error
	for attempt := 1; attempt <= e.opts.MaxAttempts; attempt++ {
		out.Attempts = attempt
		onProgress.emit(Progress{
			Name:    name,
			Phase:   PhaseDownloading,
			Message: fmt.Sprintf("Downloading (attempt %d)...", attempt),
		})

		n, err := e.fetch(ctx, name, tempPath, onProgress)
		if err == nil {
			out.Bytes = n
			lastErr = nil
			break
		}

		lastErr = err
		_ = os.Remove(tempPath)
		log.Warn("Download attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if ctx.Err() != nil || attempt == e.opts.MaxAttempts {
			break
		}

		onProgress.emit(Progress{
			Name:    name,
			Phase:   PhaseRetryFailed,
			Message: fmt.Sprintf("Retry %d failed: %s", attempt, err.Error()),
		})

		if err := sleepContext(ctx, time.Duration(attempt)*e.opts.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	if lastErr != nil {
		if ctx.Err() != nil {
			return e.fail(out, PhaseError, ctx.Err(), onProgress)
		}
		return e.fail(out, PhaseDownloadFailed, &AttemptsExhaustedError{Attempts: out.Attempts, Err: lastErr}, onProgress)
	}

	if e.opts.Algorithm.Enabled() {
		expected := r.Remote.Hash
		if expected != "" {
			onProgress.emit(Progress{Name: name, Percent: 100, Phase: PhaseVerifying, Message: "Verifying..."})
		}

		got, err := modhash.Compute(tempPath, name, e.opts.Algorithm)
		if err != nil {
			_ = os.Remove(tempPath)
			return e.fail(out, PhaseError, fmt.Errorf("hash download: %w", err), onProgress)
		}
		if expected != "" && !modhash.Equal(got, expected) {
			_ = os.Remove(tempPath)
			return e.fail(out, PhaseHashMismatch, &HashMismatchError{Name: name, Expected: expected, Got: got}, onProgress)
		}
		out.Hash = got
	}

	if err := install(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return e.fail(out, PhaseError, err, onProgress)
	}

	out.Success = true
	out.Phase = PhaseComplete
	out.Path = finalPath
	onProgress.emit(Progress{Name: name, Percent: 100, Phase: PhaseComplete, Message: "Complete"})
	log.Info("Mod downloaded", zap.Int64("bytes", out.Bytes), zap.Int("attempts", out.Attempts))
	return out
}

// fetch performs one attempt, streaming the body into tempPath.
func (e *Engine) fetch(ctx context.Context, name, tempPath string, onProgress ProgressFunc) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.AttemptTimeout)
	defer cancel()

	body, size, err := e.source.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	f, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	written, err := e.copyWithProgress(ctx, f, body, size, name, onProgress)
	if err != nil {
		f.Close()
		return written, err
	}
	if size > 0 && written != size {
		f.Close()
		return written, fmt.Errorf("short body: got %d of %d bytes: %w", written, size, io.ErrUnexpectedEOF)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return written, fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close temp file: %w", err)
	}
	return written, nil
}

// copyWithProgress copies in ChunkSize reads, checking ctx between chunks and
// emitting an event whenever the integer percentage changes.
func (e *Engine) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, size int64, name string, onProgress ProgressFunc) (int64, error) {
	buf := make([]byte, e.opts.ChunkSize)
	var written int64
	lastPercent := -1

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("write temp file: %w", werr)
			}
			written += int64(n)

			if size > 0 {
				percent := int(written * 100 / size)
				if percent > 100 {
					percent = 100
				}
				if percent != lastPercent {
					lastPercent = percent
					onProgress.emit(Progress{Name: name, Percent: percent, Phase: PhaseDownloading, Message: "Downloading..."})
				}
			}
		}

		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func (e *Engine) fail(out Outcome, phase Phase, err error, onProgress ProgressFunc) Outcome {
	out.Success = false
	out.Phase = phase
	out.Err = err

	var msg string
	switch phase {
	case PhaseDownloadFailed:
		msg = "Download failed"
	case PhaseHashMismatch:
		msg = "Hash verification failed"
	default:
		msg = "Error: " + err.Error()
	}

	onProgress.emit(Progress{Name: out.Name, Percent: 0, Phase: phase, Message: msg})
	e.logger.Warn("Mod transfer failed",
		zap.String("mod", out.Name),
		zap.String("phase", string(phase)),
		zap.Int("attempts", out.Attempts),
		zap.Error(err),
	)
	return out
}

// install replaces finalPath with tempPath.
func install(tempPath, finalPath string) error {
	if err := os.Remove(finalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous archive: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		return fmt.Errorf("move archive into place: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
