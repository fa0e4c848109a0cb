package update

import (
	"mod-sync/core/logger"
	"mod-sync/core/selfupdate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for update checks.
type Handler struct {
	checker *selfupdate.Checker
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(checker *selfupdate.Checker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{checker: checker, logger: logger}
}

// RegisterRoutes registers the update routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/update", h.HandleCheck)
}

// HandleCheck compares the running version with the latest release.
// @Summary Check For Updates
// @Description Compares the running version with the latest published release. Results are cached.
// @Tags update
// @Produce json
// @Param refresh query boolean false "Bypass the cache"
// @Success 200 {object} selfupdate.Result "Update Status"
// @Failure 502 {object} map[string]string "Release feed unavailable"
// @Router /update [get]
func (h *Handler) HandleCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if c.Query("refresh") == "true" {
		h.checker.ClearCache()
	}

	res, err := h.checker.Check(c.UserContext())
	if err != nil {
		l.Warn("Update check failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}
