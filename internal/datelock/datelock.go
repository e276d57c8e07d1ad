// Package datelock serializes work per event date within one process.
package datelock

import (
	"sync"

	"github.com/mcoot/eventledger/internal/model"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per event date. Entries are dropped once no
// goroutine holds or waits on them, so the map only grows with live dates.
type Locker struct {
	mu      sync.Mutex
	entries map[model.EventDate]*entry
}

// New creates an empty Locker
func New() *Locker {
	return &Locker{entries: make(map[model.EventDate]*entry)}
}

// Lock blocks until the caller holds the lock for date and returns
// the function that releases it.
func (l *Locker) Lock(date model.EventDate) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[date]
	if !ok {
		e = &entry{}
		l.entries[date] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, date)
			}
			l.mu.Unlock()
		})
	}
}

// Len reports how many dates currently have holders or waiters
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
