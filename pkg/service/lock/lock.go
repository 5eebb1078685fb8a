package lock

import (
	"context"
	"sync"
)

// Locker serializes work on a key. The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Memory is an in-process keyed mutex. Entries are dropped when no holder or
// waiter remains.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

var _ Locker = &Memory{}

func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*keyLock)}
}

func (x *Memory) Lock(ctx context.Context, key string) (func(), error) {
	x.mu.Lock()
	l, ok := x.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		x.locks[key] = l
	}
	l.refs++
	x.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		x.release(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			x.release(key, l)
		})
	}, nil
}

func (x *Memory) release(key string, l *keyLock) {
	x.mu.Lock()
	defer x.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(x.locks, key)
	}
}
