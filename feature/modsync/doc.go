// Package modsync coordinates mod synchronization with the dedicated server.
//
// A Service runs two kinds of passes over one mods folder:
//
//   - Reconcile: fetch the server manifest, scan the mods folder through the
//     inventory cache and compare both into a status list sorted missing
//     first.
//   - Download: transfer every Missing or UpdateAvailable mod of the last
//     reconciliation (or one named mod) through the transfer engine.
//
// Only one pass runs at a time; a second request gets ErrBusy. After a
// successful transfer the in-memory result becomes Latest, the inventory cache
// records the verified hash and the archive's declared version (saved once per
// pass) and each outcome is appended to the transfer history.
//
// # HTTP
//
//	GET  /mods                  last check and download state
//	POST /sync/check            run a reconciliation pass
//	POST /sync/download         start downloading pending mods (202)
//	POST /sync/download/:name   start downloading one mod (202)
//	GET  /sync/progress         per-mod progress and overall percent
package modsync
