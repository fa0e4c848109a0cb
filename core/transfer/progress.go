package transfer

// Phase identifies the step a transfer is in.
type Phase string

const (
	PhaseStarting       Phase = "starting"
	PhaseDownloading    Phase = "downloading"
	PhaseRetryFailed    Phase = "retry_failed"
	PhaseVerifying      Phase = "verifying"
	PhaseComplete       Phase = "complete"
	PhaseDownloadFailed Phase = "download_failed"
	PhaseHashMismatch   Phase = "hash_mismatch"
	PhaseError          Phase = "error"
)

// Terminal reports whether no further events follow this phase for the transfer.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseComplete, PhaseDownloadFailed, PhaseHashMismatch, PhaseError:
		return true
	}
	return false
}

// Progress is one event of a transfer. Percent is 0 to 100.
type Progress struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
}

// ProgressFunc receives transfer events. TransferAll invokes it from several
// goroutines, so implementations must be safe for concurrent use.
type ProgressFunc func(Progress)

func (f ProgressFunc) emit(p Progress) {
	if f != nil {
		f(p)
	}
}

// Outcome is the final result of one transfer.
type Outcome struct {
	Name     string `json:"name"`
	Success  bool   `json:"success"`
	Phase    Phase  `json:"phase"`
	Path     string `json:"path,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Bytes    int64  `json:"bytes"`
	Attempts int    `json:"attempts"`
	Err      error  `json:"-"`
}
