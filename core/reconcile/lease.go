package reconcile

import (
	"context"
	"sync"
)

// MemoryLocker is an in-process Locker. It guards passes started by the same
// process (HTTP trigger racing the scheduler) when no database is configured.
type MemoryLocker struct {
	mapMu sync.Mutex
	muMap map[string]*sync.Mutex
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{muMap: make(map[string]*sync.Mutex)}
}

func (l *MemoryLocker) budgetLock(budgetID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[budgetID]; !exists {
		l.muMap[budgetID] = &sync.Mutex{}
	}
	return l.muMap[budgetID]
}

// Acquire never waits: a held budget fails with ErrLeaseHeld.
func (l *MemoryLocker) Acquire(_ context.Context, budgetID string) (func(), error) {
	mu := l.budgetLock(budgetID)
	if !mu.TryLock() {
		return nil, ErrLeaseHeld
	}
	return mu.Unlock, nil
}
