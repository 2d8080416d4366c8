// backend/src/services/locks.go
package services

import "sync"

// AccountLocks serializes ledger writes per account. Snapshot
// reconciliation computes a diff against the current ledger and then
// appends; two concurrent runs against the same account would otherwise
// diff against a stale baseline and double-adjust. Reads never take these
// locks and may observe a momentarily stale ledger.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one account and returns its unlock func.
func (l *AccountLocks) Lock(accountID string) func() {
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
