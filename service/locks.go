package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// groupLocks serializes operations per group id. The netting and
// settlement algorithms read current debts, compute deltas, and write
// back; interleaving two operations on the same group would lose
// updates. Operations on different groups proceed independently.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*semaphore.Weighted)}
}

// acquire blocks until the caller holds the group's lock or the context
// is done. The returned release must be called exactly once.
func (l *groupLocks) acquire(ctx context.Context, groupID string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.locks[groupID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[groupID] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
