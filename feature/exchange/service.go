package exchange

import (
	"context"
	"errors"
	"fmt"

	"ynab-exchange/core/logger"
	"ynab-exchange/core/reconcile"
	"ynab-exchange/core/state"
	"ynab-exchange/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnknownBudget is returned for a budget id absent from the budgets file.
var ErrUnknownBudget = errors.New("unknown budget")

// Runner runs one pass over one budget. reconcile.Engine implements it.
type Runner interface {
	Run(ctx context.Context, budget reconcile.Budget, opts reconcile.Options) (*reconcile.PassResult, error)
}

// CursorAdmin is a cursor store that can also forget a cursor.
type CursorAdmin interface {
	reconcile.CursorStore
	Delete(ctx context.Context, budgetID string) error
}

// CursorState is the stored cursor of one budget.
type CursorState struct {
	BudgetID  string `json:"budget_id"`
	Knowledge int64  `json:"knowledge"`
	Found     bool   `json:"found"`
}

// HealthReport describes whether the service can run a pass.
type HealthReport struct {
	Status   string              `json:"status"` // "ok", "degraded"
	Budgets  int                 `json:"budgets"`
	Database string              `json:"database"`
	Schema   *state.SchemaReport `json:"schema,omitempty"`
	Archive  bool                `json:"archive"`
}

// Service runs reconciliation passes over the configured budgets.
type Service struct {
	runner  Runner
	budgets []reconcile.Budget
	cursors CursorAdmin
	archive *ReportArchive
	db      *gorm.DB
	logger  *zap.Logger
}

// NewService creates a new exchange service. archive and db may be nil.
func NewService(runner Runner, budgets []reconcile.Budget, cursors CursorAdmin, archive *ReportArchive, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		runner:  runner,
		budgets: budgets,
		cursors: cursors,
		archive: archive,
		db:      db,
		logger:  logger,
	}
}

// Budgets returns the configured budgets.
func (s *Service) Budgets() []reconcile.Budget {
	return s.budgets
}

func (s *Service) budget(id string) (reconcile.Budget, error) {
	for _, b := range s.budgets {
		if b.ID == id {
			return b, nil
		}
	}
	return reconcile.Budget{}, fmt.Errorf("%w: %s", ErrUnknownBudget, id)
}

// RunAll runs one pass per budget, in order. A failing budget does not stop
// the others; every failure is returned joined.
func (s *Service) RunAll(ctx context.Context, opts reconcile.Options) ([]*reconcile.PassResult, error) {
	results := make([]*reconcile.PassResult, 0, len(s.budgets))
	var errs []error

	for _, b := range s.budgets {
		result, err := s.run(ctx, b, opts)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("budget %s: %w", b.ID, err))
		}
	}

	return results, errors.Join(errs...)
}

// RunBudget runs one pass over a single configured budget.
func (s *Service) RunBudget(ctx context.Context, budgetID string, opts reconcile.Options) (*reconcile.PassResult, error) {
	b, err := s.budget(budgetID)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, b, opts)
}

func (s *Service) run(ctx context.Context, b reconcile.Budget, opts reconcile.Options) (*reconcile.PassResult, error) {
	result, err := s.runner.Run(ctx, b, opts)
	if result == nil {
		return nil, err
	}

	l := logger.WithPass(s.logger, result.PassID, b.ID)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if reconcile.IsConfigError(err) {
			fields = append(fields, zap.Bool("config_error", true))
		}
		l.Error("Pass failed", fields...)
	} else {
		l.Info("Pass finished",
			zap.Bool("dry_run", result.DryRun),
			zap.Int("transactions", result.Summary.Transactions),
			zap.Int("mirrors_created", result.Summary.MirrorsCreated),
			zap.Int("mirrors_deleted", result.Summary.MirrorsDeleted),
			zap.String("net_adjustment", utils.FormatMilliunits(result.Summary.NetAdjustment, b.BaseCurrency)))
	}

	if s.archive != nil {
		if archErr := s.archive.Save(ctx, result); archErr != nil {
			l.Warn("Failed to archive pass report", zap.Error(archErr))
		}
	}

	return result, err
}

// Cursor returns the stored cursor of a budget.
func (s *Service) Cursor(ctx context.Context, budgetID string) (*CursorState, error) {
	if _, err := s.budget(budgetID); err != nil {
		return nil, err
	}
	knowledge, found, err := s.cursors.Get(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	return &CursorState{BudgetID: budgetID, Knowledge: knowledge, Found: found}, nil
}

// ResetCursor forgets a budget's cursor; the next pass rescans the lookback window.
func (s *Service) ResetCursor(ctx context.Context, budgetID string) error {
	if _, err := s.budget(budgetID); err != nil {
		return err
	}
	if err := s.cursors.Delete(ctx, budgetID); err != nil {
		return err
	}
	s.logger.Info("Cursor reset", zap.String("budget_id", budgetID))
	return nil
}

// Reports lists the archived pass reports of a budget, newest first.
func (s *Service) Reports(ctx context.Context, budgetID string, limit int) ([]string, error) {
	if _, err := s.budget(budgetID); err != nil {
		return nil, err
	}
	if s.archive == nil {
		return []string{}, nil
	}
	return s.archive.List(ctx, budgetID, limit)
}

// Report returns one archived pass report.
func (s *Service) Report(ctx context.Context, budgetID, passID string) (*reconcile.PassResult, error) {
	if _, err := s.budget(budgetID); err != nil {
		return nil, err
	}
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Get(ctx, budgetID, passID)
}

// Health checks the state schema when a database is configured.
func (s *Service) Health() (*HealthReport, error) {
	report := &HealthReport{
		Status:   "ok",
		Budgets:  len(s.budgets),
		Database: "disabled",
		Archive:  s.archive != nil,
	}
	if s.db == nil {
		return report, nil
	}

	schema, err := state.CheckSchema(s.db)
	if err != nil {
		return nil, err
	}
	report.Database = "connected"
	report.Schema = schema
	if !schema.Matched {
		report.Status = "degraded"
	}
	return report, nil
}
