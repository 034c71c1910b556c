package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ynab-exchange/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBLocker grants budget leases through the ledger_leases table, so passes
// started by different processes exclude each other. A held lease is renewed
// every ttl/3 until released; a lease left behind by a crashed pass expires
// after ttl.
type DBLocker struct {
	db        *gorm.DB
	ttl       time.Duration
	heartbeat time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewDBLocker creates a DBLocker. The database must translate errors so
// duplicate keys surface as gorm.ErrDuplicatedKey.
func NewDBLocker(db *gorm.DB, ttl time.Duration, logger *zap.Logger) *DBLocker {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBLocker{db: db, ttl: ttl, heartbeat: ttl / 3, now: time.Now, logger: logger}
}

func (l *DBLocker) Acquire(ctx context.Context, budgetID string) (func(), error) {
	owner := uuid.NewString()
	now := l.now().UTC()

	// Take over an expired lease
	res := l.db.WithContext(ctx).Model(&LedgerLease{}).
		Where("budget_id = ? AND expires_at < ?", budgetID, now).
		Updates(map[string]any{
			"owner":       owner,
			"acquired_at": now,
			"expires_at":  now.Add(l.ttl),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to acquire lease: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		err := l.db.WithContext(ctx).Create(&LedgerLease{
			BudgetID:   budgetID,
			Owner:      owner,
			AcquiredAt: now,
			ExpiresAt:  now.Add(l.ttl),
		}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, reconcile.ErrLeaseHeld
		}
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lease: %w", err)
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(budgetID, owner, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(budgetID, owner)
		})
	}, nil
}

// keepAlive renews the lease until stop is closed.
func (l *DBLocker) keepAlive(budgetID, owner string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := l.renew(budgetID, owner); err != nil {
				l.logger.Warn("Failed to renew lease", zap.String("budget_id", budgetID), zap.Error(err))
			}
		}
	}
}

// renew pushes the expiry of a lease still held by owner.
func (l *DBLocker) renew(budgetID, owner string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := l.db.WithContext(ctx).Model(&LedgerLease{}).
		Where("budget_id = ? AND owner = ?", budgetID, owner).
		Update("expires_at", l.now().UTC().Add(l.ttl))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("lease on %s was taken over", budgetID)
	}
	return nil
}

// release runs after the pass context may be cancelled, so it uses its own.
func (l *DBLocker) release(budgetID, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := l.db.WithContext(ctx).
		Where("budget_id = ? AND owner = ?", budgetID, owner).
		Delete(&LedgerLease{}).Error
	if err != nil {
		l.logger.Warn("Failed to release lease", zap.String("budget_id", budgetID), zap.Error(err))
	}
}
