package exchange

import (
	"errors"

	"ynab-exchange/core/logger"
	"ynab-exchange/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	runTaskSuccess = "Budget processing completed."
	runTaskFailure = "An error occurred while processing budgets."
)

// Handler handles HTTP requests for reconciliation passes.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the exchange routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/run-task", h.HandleRunTask)

	group := app.Group("/exchange")
	group.Get("/health", h.HandleHealth)
	group.Post("/run", h.HandleRunAll)
	group.Get("/budgets", h.HandleListBudgets)
	group.Post("/budgets/:id/run", h.HandleRunBudget)
	group.Get("/budgets/:id/cursor", h.HandleGetCursor)
	group.Delete("/budgets/:id/cursor", h.HandleResetCursor)
	group.Get("/budgets/:id/reports", h.HandleListReports)
	group.Get("/budgets/:id/reports/:pass", h.HandleGetReport)
}

// RunAllResponse is the body of a multi-budget run.
type RunAllResponse struct {
	Results []*reconcile.PassResult `json:"results"`
	Error   string                  `json:"error,omitempty"`
}

// HandleRunTask runs a pass over every budget and reports a plain outcome.
// @Summary Run Reconciliation
// @Description Runs one reconciliation pass over every configured budget. Intended for cron triggers.
// @Tags exchange
// @Produce plain
// @Success 200 {string} string "Budget processing completed."
// @Failure 500 {string} string "An error occurred while processing budgets."
// @Router /run-task [get]
func (h *Handler) HandleRunTask(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering reconciliation of all budgets")

	if _, err := h.service.RunAll(c.Context(), reconcile.Options{}); err != nil {
		l.Error("Budget processing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString(runTaskFailure)
	}
	return c.SendString(runTaskSuccess)
}

// HandleRunAll runs a pass over every budget and returns the pass results.
// @Summary Run All Budgets
// @Description Runs one pass per budget. With dry_run=true the planned actions are returned and nothing is mutated.
// @Tags exchange
// @Produce json
// @Param dry_run query boolean false "Plan only"
// @Success 200 {object} RunAllResponse
// @Failure 500 {object} RunAllResponse "Partial results with the joined error"
// @Router /exchange/run [post]
func (h *Handler) HandleRunAll(c *fiber.Ctx) error {
	opts := reconcile.Options{DryRun: c.QueryBool("dry_run", false)}
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering reconciliation", zap.Bool("dry_run", opts.DryRun))

	results, err := h.service.RunAll(c.Context(), opts)
	resp := RunAllResponse{Results: results}
	if err != nil {
		resp.Error = err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
	return c.JSON(resp)
}

// HandleRunBudget runs a pass over one budget.
// @Summary Run One Budget
// @Tags exchange
// @Produce json
// @Param id path string true "Budget ID"
// @Param dry_run query boolean false "Plan only"
// @Success 200 {object} reconcile.PassResult
// @Failure 404 {object} map[string]string "Unknown budget"
// @Failure 409 {object} map[string]string "Pass already running"
// @Failure 500 {object} reconcile.PassResult "Partial result"
// @Router /exchange/budgets/{id}/run [post]
func (h *Handler) HandleRunBudget(c *fiber.Ctx) error {
	opts := reconcile.Options{DryRun: c.QueryBool("dry_run", false)}

	result, err := h.service.RunBudget(c.Context(), c.Params("id"), opts)
	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, ErrUnknownBudget):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reconcile.ErrLeaseHeld):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case result != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// HandleListBudgets lists the configured budgets.
// @Summary List Budgets
// @Tags exchange
// @Produce json
// @Success 200 {array} reconcile.Budget
// @Router /exchange/budgets [get]
func (h *Handler) HandleListBudgets(c *fiber.Ctx) error {
	return c.JSON(h.service.Budgets())
}

// HandleGetCursor returns a budget's stored server knowledge.
// @Summary Get Cursor
// @Tags exchange
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} CursorState
// @Failure 404 {object} map[string]string "Unknown budget"
// @Router /exchange/budgets/{id}/cursor [get]
func (h *Handler) HandleGetCursor(c *fiber.Ctx) error {
	cursor, err := h.service.Cursor(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(cursor)
}

// HandleResetCursor forgets a budget's cursor.
// @Summary Reset Cursor
// @Description The next pass falls back to the lookback window.
// @Tags exchange
// @Param id path string true "Budget ID"
// @Success 204
// @Failure 404 {object} map[string]string "Unknown budget"
// @Router /exchange/budgets/{id}/cursor [delete]
func (h *Handler) HandleResetCursor(c *fiber.Ctx) error {
	if err := h.service.ResetCursor(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListReports lists archived pass ids, newest first.
// @Summary List Reports
// @Tags exchange
// @Produce json
// @Param id path string true "Budget ID"
// @Param limit query int false "Maximum ids returned"
// @Success 200 {array} string
// @Router /exchange/budgets/{id}/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	ids, err := h.service.Reports(c.Context(), c.Params("id"), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ids)
}

// HandleGetReport returns one archived pass result.
// @Summary Get Report
// @Tags exchange
// @Produce json
// @Param id path string true "Budget ID"
// @Param pass path string true "Pass ID"
// @Success 200 {object} reconcile.PassResult
// @Failure 404 {object} map[string]string "Not found"
// @Router /exchange/budgets/{id}/reports/{pass} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	result, err := h.service.Report(c.Context(), c.Params("id"), c.Params("pass"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// HandleHealth reports whether the state tables match the models.
// @Summary Health Check
// @Tags exchange
// @Produce json
// @Success 200 {object} HealthReport
// @Failure 503 {object} HealthReport "Schema drift"
// @Router /exchange/health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	report, err := h.service.Health()
	if err != nil {
		return h.fail(c, err)
	}
	if report.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnknownBudget), errors.Is(err, ErrReportNotFound), errors.Is(err, ErrArchiveDisabled):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithRayID(h.service.logger, c).Error("Request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
