package ledger

import (
	"slices"
	"sync"
)

// Locker serializes balance mutations per nominee.
type Locker struct {
	mu    sync.Mutex
	locks map[uint]*nomineeLock
}

type nomineeLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[uint]*nomineeLock)}
}

// Lock acquires the locks of all given nominees in ascending id order and
// returns the function that releases them.
func (l *Locker) Lock(ids ...uint) (unlock func()) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	held := make([]*nomineeLock, 0, len(ids))
	for _, id := range ids {
		nl := l.acquire(id)
		nl.mu.Lock()
		held = append(held, nl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ids[i])
		}
	}
}

func (l *Locker) acquire(id uint) *nomineeLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	nl, ok := l.locks[id]
	if !ok {
		nl = &nomineeLock{}
		l.locks[id] = nl
	}
	nl.refs++
	return nl
}

func (l *Locker) release(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nl := l.locks[id]
	nl.refs--
	if nl.refs == 0 {
		delete(l.locks, id)
	}
}
