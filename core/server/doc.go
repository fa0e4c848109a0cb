// Package server holds the configuration of the local HTTP control surface.
//
// The `serve` command exposes the synchronizer to a presentation layer over
// HTTP. It binds to the loopback interface by default; when an API key is
// configured every request must carry it in the X-API-Key header.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by cmd/serve to build the listen address.
package server
