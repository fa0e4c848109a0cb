// Package history exposes the transfer ledger over HTTP.
//
//   - GET /history : Most recent transfers, newest first (?limit=50, ?mod=FS25_cropA).
package history
