// Package history keeps a ledger of mod transfers.
//
// Every transfer pass writes one row per mod it attempted: success, terminal
// phase, bytes, verified hash, attempt count and error. The ledger answers
// "what changed in my mods folder and when", which the inventory cache cannot
// since it only remembers the current state.
//
// The ledger is optional. A Store built without a database accepts writes as
// no-ops and reports ErrUnavailable on reads.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	store := history.NewStore(db, logger)
//	_ = store.Migrate()
//	rows, err := store.Recent(ctx, 20)
package history
