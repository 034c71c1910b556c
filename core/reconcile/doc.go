// Package reconcile mirrors foreign-currency accounts of a budget into a single
// exchange account so that the budget balances in its base currency.
//
// Every eligible account (its name carries the budget flag, e.g. "🇺🇸") holds
// amounts entered in the counter currency. For each of its transactions the
// engine posts an adjustment to the mirror account (its name carries the
// mirror marker, default "💱") equal to amount*(rate-1), so source plus
// adjustment equals the amount converted into the base currency.
//
// # Pass
//
// A pass over one budget:
//
//  1. acquires the budget lease
//  2. reads the server knowledge cursor (or falls back to a 30 day lookback)
//  3. locates the mirror account and the eligible accounts
//  4. plans every changed transaction of every eligible account
//  5. applies the plans in order, unless the pass is a dry run
//  6. advances the cursor to the highest knowledge observed
//
// The cursor is written once, and only when every account succeeded, so a
// failed pass is retried from the same point.
//
// # Transaction states
//
// Deleted transactions lose their mirrors. Transactions already carrying the
// reconciliation flag, or recorded as mirrored, are Updated: their mirrors are
// deleted and a fresh adjustment is created. Everything else is New: an
// adjustment is created and the source is flagged.
//
// Mirrors are correlated through the record store when one is configured and
// otherwise by the source id embedded in the mirror memo.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(cfg.Reconcile, reconcile.Deps{
//	    Ledger:  ynab.NewClient(cfg.YNAB),
//	    Rates:   rates.NewCache(rates.NewClient(cfg.Rates), time.Hour),
//	    Cursors: state.NewDBCursorStore(db),
//	    Logger:  logger,
//	})
//
//	result, err := engine.Run(ctx, budget, reconcile.Options{DryRun: true})
package reconcile
