package services

import (
	"context"
	"sync"
	"time"
)

// Locker grants short-lived exclusive locks keyed by name.
// TryLock does not wait: acquired is false when another holder has the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), acquired bool, err error)
}

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]localLease
	seq   uint64
	clock func() time.Time
}

type localLease struct {
	token   uint64
	expires time.Time
}

// NewLocalLocker creates a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]localLease),
		clock: time.Now,
	}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if lease, ok := l.held[key]; ok && now.Before(lease.expires) {
		return nil, false, nil
	}
	l.seq++
	token := l.seq
	l.held[key] = localLease{token: token, expires: now.Add(ttl)}

	unlock := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// An expired lease may have been taken over; only the owner releases.
		if lease, ok := l.held[key]; ok && lease.token == token {
			delete(l.held, key)
		}
	}
	return unlock, true, nil
}
