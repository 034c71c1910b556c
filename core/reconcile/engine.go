package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ynab-exchange/core/rates"
	"ynab-exchange/core/ynab"

	"go.uber.org/zap"
)

// Deps are the collaborators of an Engine. Ledger, Rates and Cursors are
// required; the rest fall back to in-process or no-op implementations.
type Deps struct {
	Ledger    Ledger
	Rates     RateSource
	Cursors   CursorStore
	Records   RecordStore
	Locker    Locker
	Publisher Publisher
	Logger    *zap.Logger
}

// Engine runs reconciliation passes over configured budgets.
type Engine struct {
	cfg       Config
	ledger    Ledger
	rates     RateSource
	cursors   CursorStore
	records   RecordStore
	locker    Locker
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(cfg Config, deps Deps) *Engine {
	e := &Engine{
		cfg:       cfg,
		ledger:    deps.Ledger,
		rates:     deps.Rates,
		cursors:   deps.Cursors,
		records:   deps.Records,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		now:       time.Now,
	}
	if e.locker == nil {
		e.locker = NewMemoryLocker()
	}
	if e.publisher == nil {
		e.publisher = NopPublisher{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// passState is the mutable context shared by every account of one pass.
type passState struct {
	id         string
	budget     Budget
	currency   string
	mirror     ynab.Account
	dryRun     bool
	mark       ynab.FlagColor
	calc       Calculator
	policy     Policy
	correlator *Correlator
	logger     *zap.Logger

	// latest is the highest server knowledge observed so far.
	latest int64
}

func (p *passState) observe(knowledge int64) {
	if knowledge > p.latest {
		p.latest = knowledge
	}
}

// Run performs one pass over a budget: every eligible account is fetched,
// planned and, unless opts.DryRun is set, applied. The cursor advances only
// when every account succeeded.
//
// On failure the partial result is returned alongside the error.
func (e *Engine) Run(ctx context.Context, budget Budget, opts Options) (*PassResult, error) {
	result := &PassResult{
		PassID:       NewPassID(),
		BudgetID:     budget.ID,
		BaseCurrency: strings.ToUpper(budget.BaseCurrency),
		DryRun:       opts.DryRun,
		StartedAt:    e.now().UTC(),
		Accounts:     []AccountPlan{},
	}

	err := e.run(ctx, budget, opts, result)

	result.FinishedAt = e.now().UTC()
	result.Summary = summarize(result.Accounts)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context, budget Budget, opts Options, result *PassResult) error {
	if err := budget.Validate(); err != nil {
		return err
	}

	currency, err := rates.CounterCurrency(budget.BaseCurrency)
	if err != nil {
		return err
	}

	release, err := e.locker.Acquire(ctx, budget.ID)
	if err != nil {
		return fmt.Errorf("budget %s: %w", budget.ID, err)
	}
	defer release()

	logger := e.logger.With(
		zap.String("pass_id", result.PassID),
		zap.String("budget_id", budget.ID),
		zap.Bool("dry_run", opts.DryRun))

	start, found, err := e.cursors.Get(ctx, budget.ID)
	if err != nil {
		return fmt.Errorf("failed to read cursor: %w", err)
	}
	if !found || start < 0 {
		start = 0
	}
	result.StartKnowledge = start

	since := ynab.Since{Knowledge: start}
	if !since.IsDelta() {
		since.Date = e.now().Add(-e.cfg.Lookback())
	}

	accounts, err := e.ledger.ListAccounts(ctx, budget.ID)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	mirror, err := FindMirrorAccount(accounts, e.cfg.MirrorMarker)
	if err != nil {
		return err
	}
	result.MirrorAccountID = mirror.ID

	pass := &passState{
		id:         result.PassID,
		budget:     budget,
		currency:   currency,
		mirror:     mirror,
		dryRun:     opts.DryRun,
		mark:       e.cfg.MarkFlag(),
		calc:       e.cfg.Calculator(budget.Flag),
		policy:     e.cfg.Policy(),
		correlator: NewCorrelator(e.ledger, e.records, e.cfg.Lookback(), logger),
		logger:     logger,
		latest:     start,
	}

	eligible := EligibleAccounts(accounts, budget.Flag, mirror.ID)
	logger.Info("Starting pass",
		zap.String("since", since.String()),
		zap.String("mirror_account_id", mirror.ID),
		zap.Int("accounts", len(eligible)))

	for _, account := range eligible {
		plan, err := e.planAccount(ctx, pass, account, since)
		if err != nil {
			return fmt.Errorf("account %s: %w", account.ID, err)
		}
		result.Accounts = append(result.Accounts, plan)

		if opts.DryRun {
			continue
		}
		if err := e.applyAccount(ctx, pass, &result.Accounts[len(result.Accounts)-1]); err != nil {
			result.EndKnowledge = pass.latest
			return fmt.Errorf("account %s: %w", account.ID, err)
		}
	}

	result.EndKnowledge = pass.latest
	if opts.DryRun || pass.latest <= 0 {
		return nil
	}
	if err := e.cursors.Put(ctx, budget.ID, pass.latest); err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	logger.Info("Pass completed",
		zap.Int64("start_knowledge", start),
		zap.Int64("end_knowledge", pass.latest))
	return nil
}

// FindMirrorAccount returns the single open account whose name contains marker.
func FindMirrorAccount(accounts []ynab.Account, marker string) (ynab.Account, error) {
	var found []ynab.Account
	for _, account := range accounts {
		if account.Closed || account.Deleted || !strings.Contains(account.Name, marker) {
			continue
		}
		found = append(found, account)
	}

	switch len(found) {
	case 0:
		return ynab.Account{}, ErrMirrorAccountMissing
	case 1:
		return found[0], nil
	default:
		names := make([]string, 0, len(found))
		for _, account := range found {
			names = append(names, account.Name)
		}
		return ynab.Account{}, fmt.Errorf("%w: %s", ErrAmbiguousMirrorAccount, strings.Join(names, ", "))
	}
}

// EligibleAccounts returns the open accounts carrying flag, mirror excluded.
func EligibleAccounts(accounts []ynab.Account, flag, mirrorID string) []ynab.Account {
	eligible := make([]ynab.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.ID == mirrorID || account.Closed || account.Deleted {
			continue
		}
		if !strings.Contains(account.Name, flag) {
			continue
		}
		eligible = append(eligible, account)
	}
	return eligible
}

// publish sends an event; delivery failures never fail a pass.
func (e *Engine) publish(ctx context.Context, pass *passState, event Event) {
	event.PassID = pass.id
	event.BudgetID = pass.budget.ID
	event.OccurredAt = e.now().UTC()
	if err := e.publisher.Publish(ctx, event); err != nil {
		pass.logger.Warn("Failed to publish event",
			zap.String("type", string(event.Type)),
			zap.String("transaction_id", event.SourceID),
			zap.Error(err))
	}
}

// IsConfigError reports whether err aborts a pass because of a budget or
// account setup problem rather than a remote failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMirrorAccountMissing) ||
		errors.Is(err, ErrAmbiguousMirrorAccount) ||
		errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, rates.ErrUnsupportedCurrency)
}
