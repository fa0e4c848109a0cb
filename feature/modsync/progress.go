package modsync

import (
	"sync"
	"time"

	"mod-sync/core/transfer"
)

// ProgressSnapshot is the state of the current or last download pass.
type ProgressSnapshot struct {
	Items     []transfer.Progress `json:"items"`
	Total     int                 `json:"total"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
	// Percent is completed transfers over total, success or not.
	Percent int `json:"percent"`
}

// Tracker keeps the latest progress event per mod of a download pass.
type Tracker struct {
	mu      sync.RWMutex
	order   []string
	items   map[string]transfer.Progress
	started map[string]time.Time
	now     func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		items:   make(map[string]transfer.Progress),
		started: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Reset starts a new pass over names, all queued at 0%.
func (t *Tracker) Reset(names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.order = append([]string(nil), names...)
	t.items = make(map[string]transfer.Progress, len(names))
	t.started = make(map[string]time.Time, len(names))
	for _, n := range names {
		t.items[n] = transfer.Progress{Name: n, Message: "Queued"}
	}
}

// Observe records p as the latest event of its mod.
func (t *Tracker) Observe(p transfer.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[p.Name]; !ok {
		t.order = append(t.order, p.Name)
	}
	if p.Phase == transfer.PhaseStarting {
		t.started[p.Name] = t.now()
	}
	t.items[p.Name] = p
}

// StartedAt returns when the transfer of name began, if it did.
func (t *Tracker) StartedAt(name string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	at, ok := t.started[name]
	return at, ok
}

// Snapshot returns the events in pass order and the overall percentage.
func (t *Tracker) Snapshot() ProgressSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := ProgressSnapshot{
		Items: make([]transfer.Progress, 0, len(t.order)),
		Total: len(t.order),
	}
	for _, n := range t.order {
		p := t.items[n]
		snap.Items = append(snap.Items, p)
		if p.Phase.Terminal() {
			snap.Completed++
			if p.Phase != transfer.PhaseComplete {
				snap.Failed++
			}
		}
	}
	if snap.Total > 0 {
		snap.Percent = snap.Completed * 100 / snap.Total
	}
	return snap
}
