package history

import (
	"errors"
	"strconv"

	"mod-sync/core/history"
	"mod-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// maxLimit caps the rows returned by one request.
const maxLimit = 500

// Handler handles HTTP requests for the ledger.
type Handler struct {
	store  *history.Store
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *history.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/history", h.HandleList)
}

// HandleList returns recorded transfers.
// @Summary List Transfers
// @Description Returns the most recent transfers recorded in the ledger, newest first.
// @Tags history
// @Produce json
// @Param limit query int false "Maximum number of rows (default 50)"
// @Param mod query string false "Only transfers of this mod"
// @Success 200 {array} history.Transfer "Transfers"
// @Failure 503 {object} map[string]string "Ledger Disabled"
// @Router /history [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	limit := history.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = min(n, maxLimit)
	}

	var (
		rows []history.Transfer
		err  error
	)
	if mod := c.Query("mod"); mod != "" {
		rows, err = h.store.ForMod(c.UserContext(), mod, limit)
	} else {
		rows, err = h.store.Recent(c.UserContext(), limit)
	}

	if errors.Is(err, history.ErrUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Failed to read transfer history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if rows == nil {
		rows = []history.Transfer{}
	}
	return c.JSON(rows)
}
