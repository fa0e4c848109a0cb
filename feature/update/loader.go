package update

import (
	"mod-sync/core/selfupdate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	checker *selfupdate.Checker
	handler *Handler
}

// NewFeature creates the update feature. A nil checker disables it.
func NewFeature(checker *selfupdate.Checker, logger *zap.Logger) *Feature {
	return &Feature{checker: checker, handler: NewHandler(checker, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "update"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.checker != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
