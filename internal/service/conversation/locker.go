package conversation

import (
	"sync"
	"time"
)

// Locker serializes exchanges per user when AI_SERIALIZE_EXCHANGES is set.
// Different users still run in parallel.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu sync.Mutex
	// refs counts holders and waiters; guarded by Locker.mu.
	refs     int
	lastUsed time.Time
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*userLock)}
}

// WithLock runs fn while holding the lock for userID.
func (l *Locker) WithLock(userID string, fn func() error) error {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	defer func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		ul.lastUsed = time.Now()
		l.mu.Unlock()
	}()

	return fn()
}

// Cleanup drops locks idle for longer than maxAge. Locks that are held or
// waited on are never dropped.
func (l *Locker) Cleanup(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, ul := range l.locks {
		if ul.refs > 0 {
			continue
		}
		if now.Sub(ul.lastUsed) >= maxAge {
			delete(l.locks, id)
			removed++
		}
	}
	return removed
}
