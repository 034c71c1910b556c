package reconcile

import (
	"context"
	"strings"
	"sync"
	"time"

	"ynab-exchange/core/ynab"

	"go.uber.org/zap"
)

// Correlator finds the mirror transactions previously created for a source
// transaction. It consults the record index first and falls back to scanning
// the mirror account for memos carrying the source id.
//
// A Correlator lives for one budget pass: the mirror account listing is
// fetched once and reused for every lookup.
type Correlator struct {
	ledger   Ledger
	records  RecordStore
	lookback time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	listings map[string][]ynab.Transaction
}

// NewCorrelator creates a Correlator. records may be nil.
func NewCorrelator(ledger Ledger, records RecordStore, lookback time.Duration, logger *zap.Logger) *Correlator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Correlator{
		ledger:   ledger,
		records:  records,
		lookback: lookback,
		now:      time.Now,
		logger:   logger,
		listings: make(map[string][]ynab.Transaction),
	}
}

// FindMirrorsOf returns the live mirrors of sourceID in the mirror account.
// Lookup failures are logged and yield no mirrors.
func (c *Correlator) FindMirrorsOf(ctx context.Context, budgetID, mirrorAccountID, sourceID string) []MirrorRef {
	if sourceID == "" {
		return nil
	}

	if c.records != nil {
		rec, err := c.records.Load(ctx, budgetID, sourceID)
		if err != nil {
			c.logger.Warn("Mirror record lookup failed",
				zap.String("budget", budgetID),
				zap.String("source", sourceID),
				zap.Error(err))
		} else if rec != nil && rec.State != RecordDeleted && len(rec.MirrorIDs) > 0 {
			refs := make([]MirrorRef, 0, len(rec.MirrorIDs))
			for _, id := range rec.MirrorIDs {
				refs = append(refs, MirrorRef{ID: id})
			}
			return refs
		}
	}

	listing, err := c.listing(ctx, budgetID, mirrorAccountID)
	if err != nil {
		c.logger.Warn("Mirror account scan failed",
			zap.String("budget", budgetID),
			zap.String("account", mirrorAccountID),
			zap.Error(err))
		return nil
	}

	var refs []MirrorRef
	for _, tx := range listing {
		if tx.Deleted || !strings.Contains(tx.Memo, sourceID) {
			continue
		}
		refs = append(refs, MirrorRef{ID: tx.ID, Memo: tx.Memo})
	}
	return refs
}

// Forget drops a deleted mirror from the cached listing.
func (c *Correlator) Forget(budgetID, mirrorAccountID, mirrorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := budgetID + "/" + mirrorAccountID
	listing, ok := c.listings[key]
	if !ok {
		return
	}
	kept := listing[:0:0]
	for _, tx := range listing {
		if tx.ID != mirrorID {
			kept = append(kept, tx)
		}
	}
	c.listings[key] = kept
}

func (c *Correlator) listing(ctx context.Context, budgetID, mirrorAccountID string) ([]ynab.Transaction, error) {
	key := budgetID + "/" + mirrorAccountID

	c.mu.Lock()
	defer c.mu.Unlock()

	if listing, ok := c.listings[key]; ok {
		return listing, nil
	}

	since := ynab.Since{Date: c.now().Add(-c.lookback)}
	listing, _, err := c.ledger.ListTransactions(ctx, budgetID, mirrorAccountID, since)
	if err != nil {
		return nil, err
	}
	c.listings[key] = listing
	return listing, nil
}
