// Package lock provides per-key locking for balance operations.
// A bettor's balance check and debit must not interleave with another
// table's debit for the same bettor.
package lock

import (
	"context"
	"errors"
	"sync"
)

// keyMutex is a channel-backed mutex so waiters can give up on context cancellation.
type keyMutex struct {
	ch       chan struct{}
	refCount int
}

// KeyedLock hands out one mutex per int64 key and drops it once no goroutine
// holds or waits for it.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[int64]*keyMutex
}

// NewKeyedLock creates an empty KeyedLock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[int64]*keyMutex)}
}

func (l *KeyedLock) acquireRef(key int64) *keyMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &keyMutex{ch: make(chan struct{}, 1)}
		l.locks[key] = m
	}
	m.refCount++
	return m
}

func (l *KeyedLock) releaseRef(key int64, m *keyMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refCount--
	if m.refCount == 0 {
		delete(l.locks, key)
	}
}

// Lock blocks until the key is free or ctx is done.
// A deadline expiry is reported as ErrLockTimeout.
func (l *KeyedLock) Lock(ctx context.Context, key int64) error {
	m := l.acquireRef(key)
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.releaseRef(key, m)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return ctx.Err()
	}
}

// TryLock acquires the key only if it is free.
func (l *KeyedLock) TryLock(key int64) bool {
	m := l.acquireRef(key)
	select {
	case m.ch <- struct{}{}:
		return true
	default:
		l.releaseRef(key, m)
		return false
	}
}

// Unlock releases a key acquired by Lock or TryLock.
func (l *KeyedLock) Unlock(key int64) {
	l.mu.Lock()
	m, ok := l.locks[key]
	l.mu.Unlock()
	if !ok {
		panic("lock: unlock of unlocked key")
	}
	<-m.ch
	l.releaseRef(key, m)
}

// WithLock runs fn while holding key.
func (l *KeyedLock) WithLock(ctx context.Context, key int64, fn func() error) error {
	if err := l.Lock(ctx, key); err != nil {
		return err
	}
	defer l.Unlock(key)
	return fn()
}

// Len returns the number of keys currently held or waited on.
func (l *KeyedLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
