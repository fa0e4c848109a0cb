package checks

import (
	"fmt"
	"strings"
	"sync"

	"mod-sync/core/database"
	"mod-sync/core/history"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// HistoryReport strictly types the result of a ledger schema check.
type HistoryReport struct {
	Driver  string      `json:"driver"`
	Matched bool        `json:"matched"`
	Table   TableReport `json:"table"`
	Errors  []string    `json:"errors"`
}

type TableReport struct {
	Name           string   `json:"name"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckHistory verifies the ledger schema using the GORM model as the source of truth.
func CheckHistory(db *gorm.DB) (*HistoryReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	model, err := schema.Parse(&history.Transfer{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger model: %w", err)
	}

	report := &HistoryReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Errors:  []string{},
		Table: TableReport{
			Name:           model.Table,
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         "ok",
		},
	}

	actualCols, err := database.GetTableColumns(db, model.Table)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", model.Table, err))
		report.Matched = false
		report.Table.Status = "error"
		return report, nil // Partial fail
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for _, field := range model.Fields {
		if field.DBName == "" {
			continue
		}

		actCol, exists := actualMap[field.DBName]
		if !exists {
			report.Table.MissingColumns = append(report.Table.MissingColumns, field.DBName)
			report.Table.Status = "error"
			report.Matched = false
			continue
		}

		// Only columns with an explicit type tag are type checked.
		expType := strings.ToLower(field.TagSettings["TYPE"])
		if expType != "" && !strings.Contains(actCol.Type, expType) {
			mismatch := fmt.Sprintf("%s: expected %s, got %s", field.DBName, expType, actCol.Type)
			report.Table.TypeMismatches = append(report.Table.TypeMismatches, mismatch)
			report.Table.Status = "error"
			report.Matched = false
		}
	}

	return report, nil
}
