package reconcile

import (
	"context"

	"ynab-exchange/core/ynab"

	"github.com/shopspring/decimal"
)

// Ledger is the remote ledger the engine reads changes from and mirrors into.
// core/ynab.Client implements it.
type Ledger interface {
	// ListAccounts returns every account of a budget.
	ListAccounts(ctx context.Context, budgetID string) ([]ynab.Account, error)

	// ListTransactions returns one account's transactions changed since the bound,
	// and the server knowledge of the response.
	ListTransactions(ctx context.Context, budgetID, accountID string, since ynab.Since) ([]ynab.Transaction, int64, error)

	// CreateTransaction creates a transaction and returns it with the new server knowledge.
	CreateTransaction(ctx context.Context, budgetID string, tx ynab.SaveTransaction) (*ynab.MutationResult, error)

	// UpdateTransactionFlag sets the flag of a transaction.
	UpdateTransactionFlag(ctx context.Context, budgetID, transactionID string, flag ynab.FlagColor) (*ynab.MutationResult, error)

	// DeleteTransaction deletes a transaction.
	DeleteTransaction(ctx context.Context, budgetID, transactionID string) (*ynab.MutationResult, error)
}

// RateSource returns the rate converting one unit of from into its counter currency.
type RateSource interface {
	Rate(ctx context.Context, from string) (decimal.Decimal, error)
}

// CursorStore persists the server knowledge reached by the last successful pass.
type CursorStore interface {
	// Get returns the stored knowledge. found is false when the budget has none.
	Get(ctx context.Context, budgetID string) (knowledge int64, found bool, err error)

	// Put stores the knowledge for a budget.
	Put(ctx context.Context, budgetID string, knowledge int64) error
}

// RecordStore is the durable source -> mirror index.
type RecordStore interface {
	// Load returns the record of a source transaction, or nil when none exists.
	Load(ctx context.Context, budgetID, sourceID string) (*Record, error)

	// Save inserts or replaces a record.
	Save(ctx context.Context, rec Record) error
}

// Locker grants the exclusive right to run a pass over a budget.
type Locker interface {
	// Acquire returns ErrLeaseHeld when another pass holds the budget.
	Acquire(ctx context.Context, budgetID string) (release func(), err error)
}

// Publisher receives mirror lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
