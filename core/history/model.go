package history

import (
	"time"
)

// Transfer is one row of the ledger: the outcome of a single mod transfer.
type Transfer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PassID     string    `gorm:"size:36;index" json:"pass_id"`
	ModName    string    `gorm:"size:255;index" json:"mod_name"`
	Version    string    `gorm:"size:64" json:"version"`
	Success    bool      `json:"success"`
	Phase      string    `gorm:"size:32" json:"phase"`
	Bytes      int64     `json:"bytes"`
	Hash       string    `gorm:"size:128" json:"hash"`
	Attempts   int       `json:"attempts"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `gorm:"index" json:"finished_at"`
}

// TableName pins the ledger table name.
func (Transfer) TableName() string {
	return "transfers"
}
