package reconcile

import (
	"mod-sync/core/modhash"
)

// BuildPlan sorts a copy of results by status and derives the summary and the
// pending transfer list.
func BuildPlan(results []Result) *Plan {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	SortByStatus(sorted)

	plan := &Plan{
		Results: sorted,
		Pending: make([]Result, 0),
		Summary: Summarize(sorted),
	}

	for _, r := range sorted {
		if r.Status.NeedsTransfer() {
			plan.Pending = append(plan.Pending, r)
		}
	}

	return plan
}

// Summarize counts results by status.
func Summarize(results []Result) PlanSummary {
	s := PlanSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusMissing:
			s.Missing++
		case StatusUpdateAvailable:
			s.UpdateAvailable++
		case StatusLatest:
			s.Latest++
		}
	}
	return s
}

// ReconcileWithPlan compares remote against local and returns the plan.
// It is the single entry point used by the orchestrator for a reconciliation pass.
func ReconcileWithPlan(remote []RemoteMod, local []LocalMod, algo modhash.Algorithm) *Plan {
	return BuildPlan(Compare(remote, local, algo))
}

// MarkDownloaded returns a copy of r marked Latest with a local record
// synthesized from the remote entry, for use after a successful transfer.
func MarkDownloaded(r Result, filePath string, size int64) Result {
	r.Local = &LocalMod{
		Name:      r.Remote.Name,
		Version:   r.Remote.Version,
		Hash:      r.Remote.Hash,
		FilePath:  filePath,
		SizeBytes: size,
	}
	r.Status = StatusLatest
	r.Reason = ReasonDownloaded
	return r
}
