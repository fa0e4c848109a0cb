package modsync

import (
	"errors"

	"mod-sync/core/logger"
	"mod-sync/core/manifest"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for mod synchronization.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/mods", h.HandleListMods)

	group := app.Group("/sync")
	group.Post("/check", h.HandleCheck)
	group.Post("/download", h.HandleDownloadAll)
	group.Post("/download/:name", h.HandleDownloadOne)
	group.Get("/progress", h.HandleProgress)
}

// HandleListMods returns the result of the last mod check.
// @Summary List Mods
// @Description Returns the per-mod status of the last check, sorted missing first, plus the download state.
// @Tags sync
// @Produce json
// @Success 200 {object} State "Sync State"
// @Router /mods [get]
func (h *Handler) HandleListMods(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}

// HandleCheck runs a reconciliation pass.
// @Summary Check Mods
// @Description Fetches the server manifest, scans the mods folder and compares them.
// @Tags sync
// @Produce json
// @Success 200 {object} reconcile.Plan "Reconciliation Plan"
// @Failure 409 {object} map[string]string "Another pass is running"
// @Failure 502 {object} map[string]string "Server manifest unavailable"
// @Router /sync/check [post]
func (h *Handler) HandleCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	plan, err := h.service.Reconcile(c.Context())
	if err != nil {
		l.Error("Mod check failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(plan)
}

// HandleDownloadAll starts downloading every missing or outdated mod.
// @Summary Download Pending Mods
// @Description Starts a background download pass over the pending mods of the last check.
// @Tags sync
// @Produce json
// @Success 202 {object} map[string]interface{} "Pass started"
// @Failure 400 {object} map[string]string "Nothing to download"
// @Failure 409 {object} map[string]string "Another pass is running"
// @Router /sync/download [post]
func (h *Handler) HandleDownloadAll(c *fiber.Ctx) error {
	return h.startDownload(c, "")
}

// HandleDownloadOne starts downloading a single mod.
// @Summary Download Mod
// @Description Starts a background download of one mod from the last check, whatever its status.
// @Tags sync
// @Produce json
// @Param name path string true "Mod name (e.g. 'FS25_cropA')"
// @Success 202 {object} map[string]interface{} "Pass started"
// @Failure 404 {object} map[string]string "Unknown mod"
// @Failure 409 {object} map[string]string "Another pass is running"
// @Router /sync/download/{name} [post]
func (h *Handler) HandleDownloadOne(c *fiber.Ctx) error {
	return h.startDownload(c, c.Params("name"))
}

func (h *Handler) startDownload(c *fiber.Ctx, name string) error {
	l := logger.WithRayID(h.service.logger, c)

	queued, err := h.service.StartDownload(name)
	if err != nil {
		l.Warn("Download not started", zap.String("mod", name), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Download pass started", zap.Int("queued", queued))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"queued": queued,
	})
}

// HandleProgress returns the progress of the current or last download pass.
// @Summary Download Progress
// @Description Latest progress event per mod and the overall completion percentage.
// @Tags sync
// @Produce json
// @Success 200 {object} ProgressSnapshot "Progress"
// @Router /sync/progress [get]
func (h *Handler) HandleProgress(c *fiber.Ctx) error {
	return c.JSON(h.service.Progress())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, ErrUnknownMod):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNothingToDownload):
		return fiber.StatusBadRequest
	case errors.Is(err, manifest.ErrManifestFetch), errors.Is(err, manifest.ErrManifestParse):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
