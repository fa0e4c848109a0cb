package integrity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mod-sync/core/history"
	"mod-sync/core/inventory"
	"mod-sync/core/storage"
	"mod-sync/feature/integrity/checks"

	"go.uber.org/zap"
)

// ErrMirrorDisabled is returned by mirror checks when no object storage is configured.
var ErrMirrorDisabled = errors.New("mod mirror is not configured")

// ExpectedFunc returns the mod names the server currently requires.
type ExpectedFunc func(ctx context.Context) ([]string, error)

// Options wires the integrity service to the parts it inspects.
type Options struct {
	ModsFolder string
	Backups    bool
	Cache      *inventory.CacheStore
	History    *history.Store

	// Storage is nil when the mirror is disabled.
	Storage storage.Client
	Bucket  string
	Prefix  string
	Region  string

	Expected ExpectedFunc
}

// Service handles integrity checks.
type Service struct {
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		opts:   opts,
		logger: logger,
	}
}

// MirrorEnabled reports whether an object-storage mirror is configured.
func (s *Service) MirrorEnabled() bool {
	return s.opts.Storage != nil
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure() ([]string, error) {
	return checks.CheckStructure(s.opts.ModsFolder, s.opts.Backups)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(missing []string) error {
	return checks.FixStructure(s.logger, missing)
}

// CheckTemp returns partial downloads left in the mods folder.
func (s *Service) CheckTemp() ([]string, error) {
	return checks.CheckTemp(s.opts.ModsFolder)
}

// FixTemp removes partial downloads.
func (s *Service) FixTemp(leftovers []string) (int, error) {
	return checks.FixTemp(s.logger, s.opts.ModsFolder, leftovers)
}

// CheckCache inspects the inventory cache document on disk.
func (s *Service) CheckCache() (*checks.CacheReport, error) {
	if s.opts.Cache == nil {
		return nil, fmt.Errorf("inventory cache is not configured")
	}
	return checks.CheckCache(s.opts.Cache.Path(), s.opts.ModsFolder)
}

// FixCache repairs the cache described by report. Unreadable documents are
// replaced by an empty one; stale entries are dropped so the next scan
// rehashes the files.
func (s *Service) FixCache(report *checks.CacheReport) error {
	store := s.opts.Cache
	if store == nil {
		return fmt.Errorf("inventory cache is not configured")
	}

	switch report.Status {
	case "ok":
		return nil
	case "stale":
		drop := make(map[string]struct{}, len(report.Orphaned)+len(report.Outdated))
		for _, name := range append(report.Orphaned, report.Outdated...) {
			drop[name] = struct{}{}
		}
		store.Load()
		snapshot := store.Snapshot()
		keep := make([]string, 0, len(snapshot.Entries))
		for name := range snapshot.Entries {
			if _, ok := drop[name]; !ok {
				keep = append(keep, name)
			}
		}
		removed := store.Prune(keep)
		s.logger.Info("Pruned inventory cache", zap.Int("removed", removed))
	default:
		store.Clear()
		s.logger.Info("Reset inventory cache", zap.String("previous_status", report.Status))
	}

	if _, err := os.Stat(store.Path()); err != nil {
		return fmt.Errorf("cache was not written: %w", err)
	}
	return nil
}

// CheckHistory verifies the ledger schema.
func (s *Service) CheckHistory() (*checks.HistoryReport, error) {
	if s.opts.History == nil || !s.opts.History.Enabled() {
		return nil, history.ErrUnavailable
	}
	return checks.CheckHistory(s.opts.History.DB())
}

// FixHistory migrates the ledger schema.
func (s *Service) FixHistory() error {
	if s.opts.History == nil {
		return history.ErrUnavailable
	}
	return s.opts.History.Migrate()
}

// CheckMirror compares the mirror bucket with the server manifest.
func (s *Service) CheckMirror(ctx context.Context) (*checks.MirrorReport, error) {
	if !s.MirrorEnabled() {
		return nil, ErrMirrorDisabled
	}

	var expected []string
	if s.opts.Expected != nil {
		names, err := s.opts.Expected(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load server mods: %w", err)
		}
		expected = names
	}
	return checks.CheckMirror(ctx, s.opts.Storage, s.opts.Bucket, s.opts.Prefix, expected)
}

// FixMirror creates the mirror bucket if it is missing.
func (s *Service) FixMirror(ctx context.Context) error {
	if !s.MirrorEnabled() {
		return ErrMirrorDisabled
	}
	return checks.FixMirror(ctx, s.opts.Storage, s.opts.Bucket, s.opts.Region, s.logger)
}

// CheckResult is one section of a combined report.
type CheckResult struct {
	Status string      `json:"status"` // "ok", "issues", "fixed", "error", "skipped"
	Detail interface{} `json:"detail,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Report is the combined result of every check.
type Report map[string]CheckResult

// Healthy reports whether no section has issues or errors.
func (r Report) Healthy() bool {
	for _, res := range r {
		if res.Status == "issues" || res.Status == "error" {
			return false
		}
	}
	return true
}

// CheckAll runs every check and, when fix is set, repairs what it can.
func (s *Service) CheckAll(ctx context.Context, fix bool) Report {
	report := make(Report)

	report["structure"] = s.runStructure(fix)
	report["temp"] = s.runTemp(fix)
	report["cache"] = s.runCache(fix)
	report["history"] = s.runHistory(fix)
	report["mirror"] = s.runMirror(ctx, fix)

	return report
}

func failed(err error) CheckResult {
	return CheckResult{Status: "error", Error: err.Error()}
}

func (s *Service) runStructure(fix bool) CheckResult {
	missing, err := s.CheckStructure()
	if err != nil {
		return failed(err)
	}
	if len(missing) == 0 {
		return CheckResult{Status: "ok"}
	}
	if !fix {
		return CheckResult{Status: "issues", Detail: fmt.Sprintf("missing folders: %s", joinBase(missing))}
	}
	if err := s.FixStructure(missing); err != nil {
		return failed(err)
	}
	return CheckResult{Status: "fixed", Detail: missing}
}

func (s *Service) runTemp(fix bool) CheckResult {
	leftovers, err := s.CheckTemp()
	if err != nil {
		return failed(err)
	}
	if len(leftovers) == 0 {
		return CheckResult{Status: "ok"}
	}
	if !fix {
		return CheckResult{Status: "issues", Detail: leftovers}
	}
	if _, err := s.FixTemp(leftovers); err != nil {
		return failed(err)
	}
	return CheckResult{Status: "fixed", Detail: leftovers}
}

func (s *Service) runCache(fix bool) CheckResult {
	report, err := s.CheckCache()
	if err != nil {
		return failed(err)
	}
	// A missing cache is rebuilt by the next scan.
	if report.Status == "ok" || report.Status == "missing" {
		return CheckResult{Status: "ok", Detail: report}
	}
	if !fix {
		return CheckResult{Status: "issues", Detail: report}
	}
	if err := s.FixCache(report); err != nil {
		return failed(err)
	}
	return CheckResult{Status: "fixed", Detail: report}
}

func (s *Service) runHistory(fix bool) CheckResult {
	report, err := s.CheckHistory()
	if errors.Is(err, history.ErrUnavailable) {
		return CheckResult{Status: "skipped"}
	}
	if err != nil {
		return failed(err)
	}
	if report.Matched {
		return CheckResult{Status: "ok", Detail: report}
	}
	if !fix {
		return CheckResult{Status: "issues", Detail: report}
	}
	if err := s.FixHistory(); err != nil {
		return failed(err)
	}
	return CheckResult{Status: "fixed", Detail: report}
}

func (s *Service) runMirror(ctx context.Context, fix bool) CheckResult {
	if !s.MirrorEnabled() {
		return CheckResult{Status: "skipped"}
	}
	report, err := s.CheckMirror(ctx)
	if err != nil {
		return failed(err)
	}
	if report.Status == "ok" {
		return CheckResult{Status: "ok", Detail: report}
	}
	if fix && !report.BucketExists {
		if err := s.FixMirror(ctx); err != nil {
			return failed(err)
		}
		return CheckResult{Status: "fixed", Detail: report}
	}
	// Missing archives are uploaded with "mirror push", not here.
	return CheckResult{Status: "issues", Detail: report}
}

func joinBase(paths []string) string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return strings.Join(names, ", ")
}
