package service

import "sync"

// KeyLock is a table of mutexes addressed by string key. Lifecycle
// transitions that read then write across two tables (cancel checks the
// check-in store before flipping the reservation, check-in checks the
// reservation before inserting) take the reservation's lock so two such
// transitions on the same reservation cannot interleave. Entries are
// reference counted and removed once the last holder unlocks, so the table
// does not grow with the number of reservations ever seen.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLock returns an empty lock table.
func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key, creating it on first use, and returns
// the corresponding unlock function.
func (l *KeyLock) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &lockEntry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
