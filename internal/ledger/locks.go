package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// accountLocks serializes postings per account. Postings against different
// accounts proceed in parallel; two postings against the same account take
// turns so the read-modify-write on its accumulators never loses an update.
type accountLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *accountLocks) lock(accountID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
