// Package update reports whether a newer release of this tool is available.
//
//   - GET /update : Latest release compared with the running version (cached).
package update
