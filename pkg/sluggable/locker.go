package sluggable

import (
	"context"
	"sync"
)

// Locker serializes slug assignment. Lock blocks until the key is held or ctx
// is done; the returned function releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (func(context.Context) error, error)
}

// MutexLocker is an in-process Locker. It only serializes callers sharing the
// same instance; use a distributed Locker when several processes write.
type MutexLocker struct {
	slots map[string]chan struct{}
	mu    sync.Mutex
}

// NewMutexLocker creates an in-process Locker.
func NewMutexLocker() *MutexLocker {
	return &MutexLocker{slots: make(map[string]chan struct{})}
}

// Lock acquires key, giving up when ctx is done.
func (l *MutexLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-slot })
		return nil
	}, nil
}

func lockKey(entityType string) string {
	return "sluggable:" + entityType
}

var _ Locker = (*MutexLocker)(nil)
