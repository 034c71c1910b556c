package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ynab-exchange/core/ynab"
)

var (
	// ErrMirrorAccountMissing means no open account carries the mirror marker.
	ErrMirrorAccountMissing = errors.New("mirror account not found")
	// ErrAmbiguousMirrorAccount means more than one open account carries the mirror marker.
	ErrAmbiguousMirrorAccount = errors.New("more than one mirror account")
	// ErrLeaseHeld means another pass over the same budget is in flight.
	ErrLeaseHeld = errors.New("budget lease is held by another pass")
	// ErrInvalidBudget means a configured budget entry is incomplete.
	ErrInvalidBudget = errors.New("invalid budget configuration")
)

// Budget is one configured ledger to reconcile.
type Budget struct {
	// ID is the YNAB budget id.
	ID string `yaml:"id" json:"id"`
	// Name is an optional label used in logs.
	Name string `yaml:"name" json:"name,omitempty"`
	// BaseCurrency is the budget's declared currency (CAD or USD).
	BaseCurrency string `yaml:"base_currency" json:"base_currency"`
	// Flag is the marker that selects eligible accounts by name (e.g. "🇺🇸").
	Flag string `yaml:"flag" json:"flag"`
}

// Validate checks that every required field is set.
func (b Budget) Validate() error {
	var missing []string
	if strings.TrimSpace(b.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(b.BaseCurrency) == "" {
		missing = append(missing, "base_currency")
	}
	if b.Flag == "" {
		missing = append(missing, "flag")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %q missing %v", ErrInvalidBudget, b.ID, missing)
	}
	return nil
}

// Options controls a single pass.
type Options struct {
	// DryRun plans every action but performs no mutation and leaves the cursor alone.
	DryRun bool
}

// TransactionState is the classification of a source transaction in one pass.
type TransactionState string

const (
	// StateNew is a transaction seen for the first time.
	StateNew TransactionState = "new"
	// StateUpdated is a transaction mirrored earlier and edited since.
	StateUpdated TransactionState = "updated"
	// StateDeleted is a transaction deleted in the ledger.
	StateDeleted TransactionState = "deleted"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionDeleteMirror deletes a stale mirror transaction.
	ActionDeleteMirror ActionType = "delete_mirror"
	// ActionCreateMirror creates an adjustment in the mirror account.
	ActionCreateMirror ActionType = "create_mirror"
	// ActionMarkSource puts the reconciliation flag on the source transaction.
	ActionMarkSource ActionType = "mark_source"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// MirrorID is the mirror transaction deleted, or created once applied.
	MirrorID string `json:"mirror_id,omitempty"`

	// Adjustment is the payload of a create action.
	Adjustment *ynab.SaveTransaction `json:"adjustment,omitempty"`

	// Applied is set once the remote call succeeded.
	Applied bool `json:"applied"`
}

// TransactionPlan is the outcome of classifying one source transaction.
type TransactionPlan struct {
	SourceID string           `json:"source_id"`
	Date     string           `json:"date"`
	Payee    string           `json:"payee"`
	Amount   int64            `json:"amount"`
	State    TransactionState `json:"state"`

	// Skipped is set when no adjustment is created for a new transaction.
	Skipped bool `json:"skipped"`
	// Reason explains a skip or a correlation miss.
	Reason string `json:"reason,omitempty"`

	Actions []Action `json:"actions"`
}

// AccountPlan holds the plans of every transaction fetched for one account.
type AccountPlan struct {
	AccountID        string            `json:"account_id"`
	AccountName      string            `json:"account_name"`
	Currency         string            `json:"currency"`
	Rate             string            `json:"rate"`
	FetchedKnowledge int64             `json:"fetched_knowledge"`
	Transactions     []TransactionPlan `json:"transactions"`
}

// PassSummary provides aggregate counts for a pass.
type PassSummary struct {
	Accounts       int   `json:"accounts"`
	Transactions   int   `json:"transactions"`
	New            int   `json:"new"`
	Updated        int   `json:"updated"`
	Deleted        int   `json:"deleted"`
	Skipped        int   `json:"skipped"`
	MirrorsCreated int   `json:"mirrors_created"`
	MirrorsDeleted int   `json:"mirrors_deleted"`
	Marked         int   `json:"marked"`
	NetAdjustment  int64 `json:"net_adjustment"`
}

// PassResult is the full report of one pass over one budget.
type PassResult struct {
	PassID          string        `json:"pass_id"`
	BudgetID        string        `json:"budget_id"`
	BaseCurrency    string        `json:"base_currency"`
	MirrorAccountID string        `json:"mirror_account_id"`
	DryRun          bool          `json:"dry_run"`
	StartKnowledge  int64         `json:"start_knowledge"`
	EndKnowledge    int64         `json:"end_knowledge"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Accounts        []AccountPlan `json:"accounts"`
	Summary         PassSummary   `json:"summary"`
	Error           string        `json:"error,omitempty"`
}

// RecordState is the durable reconciliation state of a source transaction.
type RecordState string

const (
	// RecordMirrored means a live mirror exists.
	RecordMirrored RecordState = "mirrored"
	// RecordDeleted means the mirrors were removed.
	RecordDeleted RecordState = "deleted"
	// RecordPending means stale mirrors were removed and the replacement
	// has not been created yet. MirrorIDs lists mirrors still to delete.
	RecordPending RecordState = "pending"
)

// Record links a source transaction to the mirrors created for it.
type Record struct {
	BudgetID  string
	SourceID  string
	MirrorIDs []string
	State     RecordState
}

// MirrorRef identifies a mirror transaction found by the correlator.
type MirrorRef struct {
	ID   string
	Memo string
}

// EventType names a mirror lifecycle event.
type EventType string

const (
	EventMirrorCreated EventType = "mirror_created"
	EventMirrorDeleted EventType = "mirror_deleted"
	EventSourceMarked  EventType = "source_marked"
)

// Event is published after every applied mutation.
type Event struct {
	Type            EventType `json:"type"`
	PassID          string    `json:"pass_id"`
	BudgetID        string    `json:"budget_id"`
	AccountID       string    `json:"account_id"`
	SourceID        string    `json:"source_id"`
	MirrorID        string    `json:"mirror_id,omitempty"`
	Amount          int64     `json:"amount,omitempty"`
	ServerKnowledge int64     `json:"server_knowledge"`
	OccurredAt      time.Time `json:"occurred_at"`
}
