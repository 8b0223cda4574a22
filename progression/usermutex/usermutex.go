// Package usermutex serializes critical sections per user id.
//
// Every key owns a weighted semaphore of size one. Waiters on the same key are
// served in FIFO order, different keys never contend, and a waiter gives up
// once the acquisition timeout elapses instead of queueing forever behind a
// stuck holder. Locks are not re-entrant: a critical section must never call
// WithLock again for the same user.
package usermutex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

var ErrLockTimeout = errors.New("user lock acquisition timed out")

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

type UserMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
}

// New creates a UserMutex. A timeout <= 0 disables the acquisition bound and
// leaves only the caller's context to abort waiting.
func New(timeout time.Duration) *UserMutex {
	return &UserMutex{
		entries: make(map[string]*entry),
		timeout: timeout,
	}
}

// WithLock runs fn while holding the lock for userID. The lock is released when
// fn returns, errors or panics; a panic is converted into an error.
func (m *UserMutex) WithLock(ctx context.Context, userID string, fn func(ctx context.Context) error) (err error) {
	e := m.retain(userID)
	defer m.release(userID, e)

	lockCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := e.sem.Acquire(lockCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("User lock acquisition timed out",
			slog.String("user_id", userID),
			slog.Duration("waited", time.Since(start)))
		return fmt.Errorf("%w: user %s", ErrLockTimeout, userID)
	}
	defer e.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic inside user critical section",
				slog.String("user_id", userID),
				slog.Any("panic", r))
			err = fmt.Errorf("panic in critical section for user %s: %v", userID, r)
		}
	}()

	return fn(ctx)
}

// Len returns the number of keys currently held or waited on.
func (m *UserMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *UserMutex) retain(userID string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		m.entries[userID] = e
	}
	e.refs++
	return e
}

func (m *UserMutex) release(userID string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.entries, userID)
	}
}
