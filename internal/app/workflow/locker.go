package workflow

import (
	"fmt"
	"sync"
)

// RecordLocker serializes mutations per record. Two transitions racing on the
// same record (approve then reject before the first decision lands) are
// applied one after the other, each re-reading current status under the lock,
// instead of last-response-wins.
type RecordLocker struct {
	mu    sync.Mutex
	locks map[string]*recordLock
}

type recordLock struct {
	mu   sync.Mutex
	refs int
}

// NewRecordLocker creates a new RecordLocker
func NewRecordLocker() *RecordLocker {
	return &RecordLocker{locks: make(map[string]*recordLock)}
}

// Key builds a lock key from a workflow kind and record id
func Key(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// Lock acquires the lock for a key and returns its release function.
// Entries are reference counted and removed once the last holder releases,
// so the map does not grow with the number of records ever touched.
func (l *RecordLocker) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &recordLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
