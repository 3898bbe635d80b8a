/*
lock.go - Per-user mutual exclusion for ledger mutations

PURPOSE:
  Serializes charge/use for a single user while letting independent
  users proceed in parallel. A global lock would make every mutation
  contend; a per-user lock map keeps contention scoped to the user
  actually being mutated.

SHAPE:
  A lazily-populated map[userID]*sync.Mutex guarded by a small internal
  mutex. The inner lock is held only long enough to fetch-or-create the
  entry, never across the user's critical section.

LIFECYCLE:
  Locks are never reclaimed. One mutex per user ever seen is a few
  dozen bytes; reclamation would need reference counting for no
  measurable win at this scale.

SEE ALSO:
  - service.go: acquires the guard around every read-modify-write
*/
package point

import "sync"

// Guard provides per-user critical sections.
// The zero value is not usable; call NewGuard.
type Guard struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{locks: make(map[int64]*sync.Mutex)}
}

// WithUserLock runs fn while holding userID's lock exclusively.
// Callers must not re-enter for the same user from inside fn.
func (g *Guard) WithUserLock(userID int64, fn func() error) error {
	l := g.userLock(userID)
	l.Lock()
	defer l.Unlock()
	return fn()
}

func (g *Guard) userLock(userID int64) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[userID] = l
	}
	return l
}
