// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its
// registration and route loading logic.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager struct holds the registry of available features. It handles:
//   - Registration of features via Register()
//   - Loading of enabled features via LoadAll()
//
// Features such as 'sync' and 'integrity' are developed and tested in
// isolation and mounted together by the serve command.
package loader
