// Package database opens the transfer history ledger and inspects its schema.
//
// It wraps GORM with two dialects: sqlite (the default, a single file in the
// application folder) and MySQL for setups that share one ledger between
// machines.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the
// database within the configured timeout. The ledger is optional: callers log
// the error and carry on without history.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns (PRAGMA table_info on sqlite, SHOW
// COLUMNS on MySQL). The integrity check uses it to compare the ledger table
// against the model.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("History disabled", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "transfers")
package database
