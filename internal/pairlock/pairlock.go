// Package pairlock provides mutual exclusion scoped to an unordered pair of
// user ids. Ledger and connection mutations for one pair are serialized
// behind the pair's mutex while unrelated pairs proceed concurrently.
package pairlock

import "sync"

type Set struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Set {
	return &Set{locks: make(map[string]*entry)}
}

// key normalizes the pair so (a,b) and (b,a) share one mutex.
func key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Lock acquires the mutex for the unordered pair {a, b} and returns the
// unlock function. Entries are reference counted and removed when the last
// holder releases, so the set does not grow with pair cardinality.
func (s *Set) Lock(a, b string) (unlock func()) {
	s.mu.Lock()
	k := key(a, b)
	e, ok := s.locks[k]
	if !ok {
		e = &entry{}
		s.locks[k] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.locks, k)
		}
		s.mu.Unlock()
	}
}
