package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultLimit is used by Recent when no positive limit is given.
const DefaultLimit = 50

// ErrUnavailable is returned when the ledger has no database.
var ErrUnavailable = errors.New("transfer history unavailable")

// Store persists transfer outcomes. A Store without a database accepts
// writes as no-ops so the sync flow never depends on the ledger.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore wraps db. db may be nil.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// DB returns the underlying connection, or nil.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Enabled reports whether the ledger has a database.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

// Migrate creates or updates the ledger table.
func (s *Store) Migrate() error {
	if !s.Enabled() {
		return ErrUnavailable
	}
	if err := s.db.AutoMigrate(&Transfer{}); err != nil {
		return fmt.Errorf("migrate transfers: %w", err)
	}
	return nil
}

// Record inserts rows in one statement, assigning ids to rows without one.
func (s *Store) Record(ctx context.Context, rows ...Transfer) error {
	if !s.Enabled() || len(rows) == 0 {
		return nil
	}

	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("record transfers: %w", err)
	}
	return nil
}

// Recent returns the latest rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Transfer, error) {
	return s.find(ctx, "", limit)
}

// ForMod returns the latest rows for one mod, newest first.
func (s *Store) ForMod(ctx context.Context, modName string, limit int) ([]Transfer, error) {
	return s.find(ctx, modName, limit)
}

func (s *Store) find(ctx context.Context, modName string, limit int) ([]Transfer, error) {
	if !s.Enabled() {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := s.db.WithContext(ctx).Model(&Transfer{})
	if modName != "" {
		q = q.Where("mod_name = ?", modName)
	}

	var rows []Transfer
	if err := q.Order("finished_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	return rows, nil
}
