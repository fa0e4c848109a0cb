package modsync

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"mod-sync/core/history"
	"mod-sync/core/inventory"
	"mod-sync/core/metrics"
	"mod-sync/core/modhash"
	"mod-sync/core/reconcile"
	"mod-sync/core/transfer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when a reconciliation or download pass is already running.
	ErrBusy = errors.New("a sync pass is already running")
	// ErrNothingToDownload is returned when no mod of the last reconciliation needs a transfer.
	ErrNothingToDownload = errors.New("no mods need downloading")
	// ErrUnknownMod is returned when a mod is not part of the last reconciliation.
	ErrUnknownMod = errors.New("mod is not in the server manifest")
)

// ManifestFetcher loads the server's mod list.
type ManifestFetcher interface {
	Fetch(ctx context.Context, url string) ([]reconcile.RemoteMod, error)
}

// Service coordinates reconciliation and download passes over one mods
// folder. At most one pass runs at a time.
type Service struct {
	manifest    ManifestFetcher
	manifestURL string
	scanner     *inventory.Scanner
	engine      *transfer.Engine
	history     *history.Store
	algo        modhash.Algorithm
	logger      *zap.Logger
	now         func() time.Time

	// ctx outlives requests and bounds background passes.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	reconciling bool
	downloading bool
	plan        *reconcile.Plan
	checkedAt   time.Time
	lastReport  *TransferReport
	tracker     *Tracker
}

// NewService creates the orchestrator. The engine's mods folder and algorithm
// are used for scanning as well, so both passes see the same files.
func NewService(fetcher ManifestFetcher, manifestURL string, scanner *inventory.Scanner, engine *transfer.Engine, ledger *history.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ledger == nil {
		ledger = history.NewStore(nil, logger)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		manifest:    fetcher,
		manifestURL: manifestURL,
		scanner:     scanner,
		engine:      engine,
		history:     ledger,
		algo:        engine.Options().Algorithm,
		logger:      logger,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		tracker:     NewTracker(),
	}
}

// ModsFolder returns the folder the service synchronizes.
func (s *Service) ModsFolder() string {
	return s.engine.Options().ModsFolder
}

// Algorithm returns the configured content hash algorithm.
func (s *Service) Algorithm() modhash.Algorithm {
	return s.algo
}

// History returns the transfer ledger.
func (s *Service) History() *history.Store {
	return s.history
}

// Cache returns the inventory cache store.
func (s *Service) Cache() *inventory.CacheStore {
	return s.scanner.Store()
}

// ServerMods fetches the manifest and returns the mod names it lists. It does
// not touch the mods folder and is allowed while a pass is running.
func (s *Service) ServerMods(ctx context.Context) ([]string, error) {
	remote, err := s.manifest.Fetch(ctx, s.manifestURL)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(remote))
	for _, m := range remote {
		names = append(names, m.Name)
	}
	return names, nil
}

// Reconcile fetches the manifest, scans the mods folder and compares them.
// Only manifest failures and cancellation fail the pass.
func (s *Service) Reconcile(ctx context.Context) (*reconcile.Plan, error) {
	if err := s.begin(&s.reconciling); err != nil {
		return nil, err
	}
	defer s.end(&s.reconciling)

	start := s.now()

	remote, err := s.manifest.Fetch(ctx, s.manifestURL)
	if err != nil {
		metrics.RecordReconcileFailure()
		s.logger.Error("Failed to load server mods", zap.String("url", s.manifestURL), zap.Error(err))
		return nil, err
	}

	local, err := s.scanner.Scan(ctx, s.ModsFolder(), s.algo)
	if err != nil {
		metrics.RecordReconcileFailure()
		return nil, err
	}

	plan := reconcile.ReconcileWithPlan(remote, local, s.algo)
	finished := s.now()

	s.mu.Lock()
	s.plan = plan
	s.checkedAt = finished
	s.mu.Unlock()

	sum := plan.Summary
	metrics.RecordReconcile(finished.Sub(start), sum.Missing, sum.UpdateAvailable, sum.Latest)
	s.logger.Info("Mod check complete",
		zap.Int("missing", sum.Missing),
		zap.Int("update_available", sum.UpdateAvailable),
		zap.Int("latest", sum.Latest),
		zap.Duration("took", finished.Sub(start)),
	)

	return clonePlan(plan), nil
}

// DownloadPending transfers every Missing or UpdateAvailable mod of the last
// reconciliation and blocks until the pass ends.
func (s *Service) DownloadPending(ctx context.Context, onProgress transfer.ProgressFunc) (*TransferReport, error) {
	pending, err := s.beginDownload("")
	if err != nil {
		return nil, err
	}
	return s.runDownload(ctx, pending, onProgress), nil
}

// DownloadOne transfers a single mod of the last reconciliation, whatever its
// status.
func (s *Service) DownloadOne(ctx context.Context, name string, onProgress transfer.ProgressFunc) (*TransferReport, error) {
	pending, err := s.beginDownload(name)
	if err != nil {
		return nil, err
	}
	return s.runDownload(ctx, pending, onProgress), nil
}

// StartDownload begins a pass in the background and returns the number of
// queued mods. An empty name downloads every pending mod. The pass is bound
// to the service lifetime, not to ctx of the caller.
func (s *Service) StartDownload(name string) (int, error) {
	pending, err := s.beginDownload(name)
	if err != nil {
		return 0, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runDownload(s.ctx, pending, nil)
	}()
	return len(pending), nil
}

// Shutdown cancels background passes and waits for them to finish.
func (s *Service) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// State returns a copy of the orchestrator state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Reconciling: s.reconciling,
		Downloading: s.downloading,
		CheckedAt:   s.checkedAt,
		Plan:        clonePlan(s.plan),
		LastReport:  s.lastReport,
		Progress:    s.tracker.Snapshot(),
	}
}

// Progress returns the progress of the current or last download pass.
func (s *Service) Progress() ProgressSnapshot {
	return s.tracker.Snapshot()
}

func (s *Service) begin(flag *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reconciling || s.downloading {
		return ErrBusy
	}
	*flag = true
	return nil
}

func (s *Service) end(flag *bool) {
	s.mu.Lock()
	*flag = false
	s.mu.Unlock()
}

// beginDownload claims the download flag and selects the mods to transfer.
func (s *Service) beginDownload(name string) ([]reconcile.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reconciling || s.downloading {
		return nil, ErrBusy
	}

	var pending []reconcile.Result
	switch {
	case name != "":
		if s.plan == nil {
			return nil, ErrUnknownMod
		}
		i, ok := reconcile.Find(s.plan.Results, name)
		if !ok {
			return nil, ErrUnknownMod
		}
		pending = []reconcile.Result{s.plan.Results[i]}
	case s.plan == nil || len(s.plan.Pending) == 0:
		return nil, ErrNothingToDownload
	default:
		pending = append(pending, s.plan.Pending...)
	}

	names := make([]string, len(pending))
	for i, r := range pending {
		names[i] = r.Remote.Name
	}
	s.tracker.Reset(names)
	s.downloading = true
	return pending, nil
}

func (s *Service) runDownload(ctx context.Context, pending []reconcile.Result, onProgress transfer.ProgressFunc) *TransferReport {
	defer s.end(&s.downloading)

	report := &TransferReport{
		PassID:    uuid.NewString(),
		StartedAt: s.now(),
		Total:     len(pending),
		Outcomes:  make([]transfer.Outcome, 0, len(pending)),
	}

	log := s.logger.With(zap.String("pass_id", report.PassID))
	log.Info("Starting download pass", zap.Int("mods", len(pending)))

	outcomes := s.engine.TransferAll(ctx, pending, s.observe(onProgress))
	report.FinishedAt = s.now()

	store := s.scanner.Store()
	store.Load()

	rows := make([]history.Transfer, 0, len(outcomes))
	downloaded := make([]reconcile.Result, 0, len(outcomes))

	for i, out := range outcomes {
		r := pending[i]
		metrics.RecordTransfer(string(out.Phase), out.Success, out.Bytes, out.Attempts)
		report.Outcomes = append(report.Outcomes, out)

		row := history.Transfer{
			PassID:     report.PassID,
			ModName:    out.Name,
			Version:    r.Remote.Version,
			Success:    out.Success,
			Phase:      string(out.Phase),
			Bytes:      out.Bytes,
			Hash:       out.Hash,
			Attempts:   out.Attempts,
			StartedAt:  report.StartedAt,
			FinishedAt: report.FinishedAt,
		}
		if at, ok := s.tracker.StartedAt(out.Name); ok {
			row.StartedAt = at
		}

		if !out.Success {
			report.Failed++
			if out.Err != nil {
				row.Error = out.Err.Error()
				if report.Errors == nil {
					report.Errors = make(map[string]string)
				}
				report.Errors[out.Name] = out.Err.Error()
			}
			rows = append(rows, row)
			continue
		}

		report.Succeeded++
		report.Bytes += out.Bytes
		rows = append(rows, row)

		s.recordInCache(store, out)
		downloaded = append(downloaded, reconcile.MarkDownloaded(r, out.Path, out.Bytes))
	}

	store.Save()

	if err := s.history.Record(context.WithoutCancel(ctx), rows...); err != nil {
		log.Warn("Failed to record transfer history", zap.Error(err))
	}

	s.mu.Lock()
	if s.plan != nil && len(downloaded) > 0 {
		results := append([]reconcile.Result(nil), s.plan.Results...)
		for _, d := range downloaded {
			if i, ok := reconcile.Find(results, d.Remote.Name); ok {
				results[i] = d
			}
		}
		s.plan = reconcile.BuildPlan(results)
	}
	s.lastReport = report
	s.mu.Unlock()

	log.Info("Download pass complete",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int64("bytes", report.Bytes),
		zap.Duration("took", report.Duration()),
	)
	return report
}

// recordInCache stores the verified identity of a freshly installed archive,
// so the next scan does not rehash it.
func (s *Service) recordInCache(store *inventory.CacheStore, out transfer.Outcome) {
	info, err := os.Stat(out.Path)
	if err != nil {
		s.logger.Warn("Downloaded archive vanished", zap.String("path", out.Path), zap.Error(err))
		return
	}

	version, err := inventory.ReadDeclaredVersion(out.Path)
	if err != nil {
		version = ""
	}

	store.Update(out.Path, info.Size(), info.ModTime(), out.Hash, s.algo, version)
}

// observe fans progress out to the tracker, metrics and the caller.
func (s *Service) observe(onProgress transfer.ProgressFunc) transfer.ProgressFunc {
	var inFlight sync.Map

	return func(p transfer.Progress) {
		switch {
		case p.Phase == transfer.PhaseStarting:
			inFlight.Store(p.Name, struct{}{})
			metrics.TransferStarted()
		case p.Phase.Terminal():
			if _, ok := inFlight.LoadAndDelete(p.Name); ok {
				metrics.TransferFinished()
			}
		}

		s.tracker.Observe(p)
		if onProgress != nil {
			onProgress(p)
		}
	}
}

func clonePlan(p *reconcile.Plan) *reconcile.Plan {
	if p == nil {
		return nil
	}
	return &reconcile.Plan{
		Results: append([]reconcile.Result{}, p.Results...),
		Pending: append([]reconcile.Result{}, p.Pending...),
		Summary: p.Summary,
	}
}
