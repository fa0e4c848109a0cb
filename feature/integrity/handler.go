package integrity

import (
	"errors"

	"mod-sync/core/history"
	"mod-sync/core/logger"
	"mod-sync/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = checks.HistoryReport{}
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/temp", h.HandleTempCheck)
	group.Get("/cache", h.HandleCacheCheck)
	group.Get("/history", h.HandleHistoryCheck)
	group.Get("/mirror", h.HandleMirrorCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (Structure, Temp, Cache, History, Mirror). Optionally fixes what can be repaired.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Fix detected issues"
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"
	l.Info("Triggering all integrity checks", zap.Bool("fix", fix))

	report := h.service.CheckAll(c.UserContext(), fix)
	if !report.Healthy() {
		l.Warn("Integrity issues detected")
	}

	return c.JSON(report)
}

// HandleStructureCheck checks and optionally fixes structure.
// @Summary Check Structure
// @Description Checks if the mods folder (and the backup folder, when backups are enabled) exists. Optionally creates missing folders.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Fix missing folders"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	missing, err := h.service.CheckStructure()
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))

		if fix {
			l.Info("Attempting to fix missing folders")
			if err := h.service.FixStructure(missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": nonNil(missing),
	})
}

// HandleTempCheck checks and optionally removes partial downloads.
// @Summary Check Partial Downloads
// @Description Lists temporary archives left behind by interrupted transfers. Optionally deletes them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Delete leftovers"
// @Success 200 {object} map[string]interface{} "Temp Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/temp [get]
func (h *Handler) HandleTempCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	leftovers, err := h.service.CheckTemp()
	if err != nil {
		l.Error("Temp check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(leftovers) > 0 && fix {
		removed, err := h.service.FixTemp(leftovers)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to remove partial downloads",
				"details": err.Error(),
				"removed": removed,
			})
		}
		return c.JSON(fiber.Map{
			"status": "fixed",
			"fixed":  leftovers,
		})
	}

	return c.JSON(fiber.Map{
		"status":    "checked",
		"leftovers": nonNil(leftovers),
	})
}

// HandleCacheCheck checks and optionally repairs the inventory cache.
// @Summary Check Inventory Cache
// @Description Reads the persisted inventory cache and reports corrupt documents and stale entries. Optionally resets or prunes it.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Repair the cache"
// @Success 200 {object} checks.CacheReport "Cache Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/cache [get]
func (h *Handler) HandleCacheCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckCache()
	if err != nil {
		l.Error("Cache check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if fix && report.Status != "ok" && report.Status != "missing" {
		l.Info("Attempting to repair inventory cache", zap.String("status", report.Status))
		if err := h.service.FixCache(report); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to repair cache",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "fixed",
			"report": report,
		})
	}

	return c.JSON(report)
}

// HandleHistoryCheck checks and optionally migrates the ledger schema.
// @Summary Check History Schema
// @Description Checks if the transfer ledger schema matches the expected model. Optionally runs the migration.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Migrate the schema"
// @Success 200 {object} checks.HistoryReport "History Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Ledger Disabled"
// @Router /integrity/history [get]
func (h *Handler) HandleHistoryCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"
	l.Info("Starting history schema check")

	report, err := h.service.CheckHistory()
	if errors.Is(err, history.ErrUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("History schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Matched && fix {
		if err := h.service.FixHistory(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to migrate history",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "fixed",
			"report": report,
		})
	}

	return c.JSON(report)
}

// HandleMirrorCheck checks the object-storage mirror.
// @Summary Check Mirror
// @Description Checks that the mirror bucket exists and holds an archive for every server mod. Optionally creates the bucket.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Create the bucket"
// @Success 200 {object} checks.MirrorReport "Mirror Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "Mirror Disabled"
// @Router /integrity/mirror [get]
func (h *Handler) HandleMirrorCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"
	ctx := c.UserContext()

	report, err := h.service.CheckMirror(ctx)
	if errors.Is(err, ErrMirrorDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Mirror check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.BucketExists && fix {
		if err := h.service.FixMirror(ctx); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create bucket",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "fixed",
			"report": report,
		})
	}

	return c.JSON(report)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
