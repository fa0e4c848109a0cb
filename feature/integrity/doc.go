// Package integrity provides health checks for the local sync state.
//
// Unlike the 'modsync' package which compares the mods folder with the server,
// this package validates the infrastructure a sync pass relies on.
//
// # Checks Provided
//
//   - Structure: Checks that the mods folder exists, plus the backup folder when backups are enabled.
//   - Temp: Lists partial downloads (*.zip.tmp) left behind by interrupted transfers.
//   - Cache: Reads the inventory cache without modifying it and reports corrupt documents, schema mismatches and stale entries.
//   - History: Validates that the ledger schema matches the transfer model (columns, types).
//   - Mirror: Checks that the mirror bucket exists and holds every server mod (only when object storage is configured).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks (supports ?fix=true).
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/temp : Runs partial download check (supports ?fix=true).
//   - GET /integrity/cache : Runs cache check (supports ?fix=true).
//   - GET /integrity/history : Runs ledger schema check (supports ?fix=true).
//   - GET /integrity/mirror : Runs mirror check (supports ?fix=true).
package integrity
