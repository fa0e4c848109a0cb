package modsync

import (
	"time"

	"mod-sync/core/reconcile"
	"mod-sync/core/transfer"
)

// TransferReport summarizes one download pass.
type TransferReport struct {
	PassID     string             `json:"pass_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Total      int                `json:"total"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Bytes      int64              `json:"bytes"`
	Outcomes   []transfer.Outcome `json:"outcomes"`
	// Errors maps failed mod names to their error text.
	Errors map[string]string `json:"errors,omitempty"`
}

// Duration returns the wall time of the pass.
func (r *TransferReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// State is the orchestrator's view for status endpoints.
type State struct {
	Reconciling bool             `json:"reconciling"`
	Downloading bool             `json:"downloading"`
	CheckedAt   time.Time        `json:"checked_at,omitempty"`
	Plan        *reconcile.Plan  `json:"plan,omitempty"`
	LastReport  *TransferReport  `json:"last_report,omitempty"`
	Progress    ProgressSnapshot `json:"progress"`
}
