package reconcile

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// LocalName reports whether a mod name can name an archive inside the mods
// folder: a single local path element with no separator of either platform.
func LocalName(name string) bool {
	return name != "" && filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// RemoteMod is one entry of the server manifest. Name is the unique key and is
// compared case-insensitively.
type RemoteMod struct {
	// Name is the mod's identifier and the archive base name on the CDN.
	Name string `json:"name"`

	// Author is the declared author.
	Author string `json:"author"`

	// Version is the declared version string (usually dotted numeric).
	Version string `json:"version"`

	// Hash is the content identity published by the server; may be empty.
	Hash string `json:"hash"`

	// Title is the human readable display title.
	Title string `json:"title"`
}

// LocalMod describes an archive found in the mods folder at scan time.
// Version and Hash are empty when they could not be determined.
type LocalMod struct {
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Hash      string `json:"hash,omitempty"`
	FilePath  string `json:"file_path"`
	SizeBytes int64  `json:"size_bytes"`
}

// Status is the synchronization state of a single remote mod.
// The numeric order is the display priority: Missing < UpdateAvailable < Latest.
type Status int

const (
	// StatusMissing means no local archive matches the remote record.
	StatusMissing Status = iota
	// StatusUpdateAvailable means a local archive exists but is outdated or unverifiable.
	StatusUpdateAvailable
	// StatusLatest means the local archive matches the remote record.
	StatusLatest
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusUpdateAvailable:
		return "update_available"
	case StatusLatest:
		return "latest"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// NeedsTransfer reports whether a mod in this state should be downloaded.
func (s Status) NeedsTransfer() bool {
	return s == StatusMissing || s == StatusUpdateAvailable
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "missing":
		*s = StatusMissing
	case "update_available":
		*s = StatusUpdateAvailable
	case "latest":
		*s = StatusLatest
	default:
		return fmt.Errorf("unknown status %q", name)
	}
	return nil
}

// Reason explains which signal decided a Status.
type Reason string

const (
	ReasonNoLocal        Reason = "no_local_file"
	ReasonHashMatch      Reason = "hash_match"
	ReasonHashMismatch   Reason = "hash_mismatch"
	ReasonVersionCurrent Reason = "version_current"
	ReasonVersionOlder   Reason = "version_older"
	ReasonUnknown        Reason = "no_usable_signal"
	ReasonDownloaded     Reason = "downloaded"
)

// Result pairs a remote record with its local counterpart (if any) and the status.
type Result struct {
	Remote RemoteMod `json:"remote"`
	Local  *LocalMod `json:"local,omitempty"`
	Status Status    `json:"status"`
	Reason Reason    `json:"reason"`
}

// Plan is the outcome of one reconciliation pass: every result plus the subset
// that the transfer pass has to fetch.
type Plan struct {
	// Results holds one entry per remote record, sorted by status.
	Results []Result `json:"results"`

	// Pending holds the results whose status needs a transfer.
	Pending []Result `json:"pending"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconciliation plan.
type PlanSummary struct {
	// Total is the number of remote records.
	Total int `json:"total"`

	// Missing counts mods with no local archive.
	Missing int `json:"missing"`

	// UpdateAvailable counts outdated or unverifiable local archives.
	UpdateAvailable int `json:"update_available"`

	// Latest counts up-to-date mods.
	Latest int `json:"latest"`
}
