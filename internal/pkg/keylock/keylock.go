// Package keylock provides per-key mutual exclusion. The shipping
// orchestrator uses it to allow one lifecycle transition per order at a time.
package keylock

import (
	"context"
	"sync"
	"time"

	"shipping/internal/pkg/errs"
)

// Locker hands out exclusive locks keyed by string. Entries are removed once
// no goroutine holds or waits for them.
type Locker struct {
	mu          sync.Mutex
	entries     map[string]*entry
	waitTimeout time.Duration
}

type entry struct {
	sem  chan struct{}
	refs int
}

// New returns a Locker whose Lock gives up after waitTimeout. A zero timeout
// waits until the context is done.
func New(waitTimeout time.Duration) *Locker {
	return &Locker{
		entries:     make(map[string]*entry),
		waitTimeout: waitTimeout,
	}
}

// Lock blocks until key is free, the wait timeout elapses or ctx is done.
//
// Returns:
//   - unlock: releases the key; must be called exactly once
//   - error: a ConflictError after the wait timeout, ctx.Err() on cancellation
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquire(key)

	var timeout <-chan time.Time
	if l.waitTimeout > 0 {
		timer := time.NewTimer(l.waitTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case e.sem <- struct{}{}:
		return l.unlocker(key, e), nil
	case <-timeout:
		l.release(key, e)
		return nil, errs.NewConflictError(key)
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

// TryLock takes key only if it is free right now.
func (l *Locker) TryLock(key string) (func(), bool) {
	e := l.acquire(key)
	select {
	case e.sem <- struct{}{}:
		return l.unlocker(key, e), true
	default:
		l.release(key, e)
		return nil, false
	}
}

func (l *Locker) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *Locker) unlocker(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(key, e)
		})
	}
}

// Len returns the number of keys currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
