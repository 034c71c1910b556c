package reconcile

import (
	"time"

	"ynab-exchange/core/ynab"
)

// Config holds configuration for reconciliation passes.
type Config struct {
	// BudgetsFile is the YAML file listing the budgets to reconcile.
	BudgetsFile string `mapstructure:"budgets_file" default:"budgets.yaml"`
	// MirrorMarker is the glyph that identifies the mirror account by name.
	MirrorMarker string `mapstructure:"mirror_marker" default:"💱"`
	// ReconciledFlag is the flag color put on mirrored source transactions.
	ReconciledFlag string `mapstructure:"reconciled_flag" default:"green"`
	// LookbackDays bounds the first fetch and the memo scan when there is no cursor.
	LookbackDays int `mapstructure:"lookback_days" default:"30"`
	// RoundingStep snaps adjustments to a multiple of this many milliunits (1 or 10).
	RoundingStep int64 `mapstructure:"rounding_step" default:"1"`
	// ExchangeCategoryID receives adjustments of system payees. Empty keeps the source category.
	ExchangeCategoryID string `mapstructure:"exchange_category_id" default:""`
	// ExchangePayeeLabel replaces reserved system payee prefixes.
	ExchangePayeeLabel string `mapstructure:"exchange_payee_label" default:"Exchange"`
	// RouteUncategorizedTransfers mirrors uncategorized transfers into the exchange category instead of skipping them.
	RouteUncategorizedTransfers bool `mapstructure:"route_uncategorized_transfers" default:"false"`
	// CursorBackend selects where server knowledge is kept (database, storage).
	CursorBackend string `mapstructure:"cursor_backend" default:"database"`
	// IntervalSeconds runs a pass periodically inside the server. Zero disables the scheduler.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"0"`
	// ArchiveReports writes every pass result to object storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`
	// LeaseTTLSeconds is how long a database lease survives a crashed pass.
	LeaseTTLSeconds int `mapstructure:"lease_ttl_seconds" default:"900"`
}

const (
	CursorBackendDatabase = "database"
	CursorBackendStorage  = "storage"
)

// Lookback returns the lookback window, defaulting to 30 days.
func (c Config) Lookback() time.Duration {
	days := c.LookbackDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// MarkFlag returns the reconciliation flag color, defaulting to green.
func (c Config) MarkFlag() ynab.FlagColor {
	if c.ReconciledFlag == "" {
		return ynab.FlagGreen
	}
	return ynab.FlagColor(c.ReconciledFlag)
}

// Calculator returns the difference calculator configured for a budget flag.
func (c Config) Calculator(flag string) Calculator {
	return Calculator{FlagMarker: flag, RoundingStep: c.RoundingStep}
}

// Policy returns the configured mutation policy.
func (c Config) Policy() Policy {
	return Policy{
		ExchangeCategoryID:          c.ExchangeCategoryID,
		PayeeLabel:                  c.ExchangePayeeLabel,
		RouteUncategorizedTransfers: c.RouteUncategorizedTransfers,
	}
}
