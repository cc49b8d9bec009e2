package lock

import (
	"context"
	"sync"
	"time"
)

// memoryLocker is a per-name mutex map. It only excludes goroutines of the
// current process, so it is meant for single-instance deployments and tests.
type memoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemory() Locker {
	return &memoryLocker{slots: map[string]chan struct{}{}}
}

func (l *memoryLocker) slot(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[name] = ch
	}

	return ch
}

func (l *memoryLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (Lease, bool, error) {
	ch := l.slot(name)

	select {
	case ch <- struct{}{}:
		return &memoryLease{ch: ch}, true, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return &memoryLease{ch: ch}, true, nil
	case <-timer.C:
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err() //nolint:wrapcheck
	}
}

type memoryLease struct {
	ch   chan struct{}
	once sync.Once
}

func (l *memoryLease) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })

	return nil
}
