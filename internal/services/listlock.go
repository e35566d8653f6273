package services

import (
	"sync"

	"github.com/google/uuid"
)

// listLocks serializes multi-record order mutations per list. Two concurrent
// reorders interleaved at per-row granularity can corrupt the dense rank
// sequence, so every operation that shifts more than one row holds the list's
// mutex for its whole duration.
type listLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newListLocks() *listLocks {
	return &listLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for listID and returns the unlock function.
func (l *listLocks) Lock(listID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[listID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[listID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
