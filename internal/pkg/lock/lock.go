// Package lock serialises mutations of one scorebook.
//
// Each book id gets its own semaphore. Entries are reference counted and removed once
// nobody holds or waits for them, so idle chats do not accumulate.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

type bookMutex struct {
	sem  chan struct{}
	refs int // holders plus waiters
}

// BookLock is a keyed lock over scorebook ids.
type BookLock struct {
	mu    sync.Mutex
	books map[int64]*bookMutex
}

// NewBookLock creates an empty BookLock.
func NewBookLock() *BookLock {
	return &BookLock{books: make(map[int64]*bookMutex)}
}

func (bl *BookLock) acquire(bookID int64) *bookMutex {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	m, ok := bl.books[bookID]
	if !ok {
		m = &bookMutex{sem: make(chan struct{}, 1)}
		bl.books[bookID] = m
	}
	m.refs++
	return m
}

func (bl *BookLock) release(bookID int64, m *bookMutex) {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(bl.books, bookID)
	}
}

// Lock blocks until the book is free or ctx is done.
func (bl *BookLock) Lock(ctx context.Context, bookID int64) error {
	m := bl.acquire(bookID)
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		bl.release(bookID, m)
		return ctx.Err()
	}
}

// TryLock takes the book lock only if it is free.
func (bl *BookLock) TryLock(bookID int64) bool {
	m := bl.acquire(bookID)
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		bl.release(bookID, m)
		return false
	}
}

// Unlock releases a lock taken by Lock or TryLock.
func (bl *BookLock) Unlock(bookID int64) {
	bl.mu.Lock()
	m, ok := bl.books[bookID]
	bl.mu.Unlock()
	if !ok {
		return
	}
	<-m.sem
	bl.release(bookID, m)
}

// WithLock runs fn while holding the book lock. Waiting longer than timeout returns
// ErrLockTimeout; a zero timeout waits until ctx is done.
func (bl *BookLock) WithLock(ctx context.Context, bookID int64, timeout time.Duration, fn func() error) error {
	lockCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := bl.Lock(lockCtx, bookID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return ErrLockTimeout
		}
		return err
	}
	defer bl.Unlock(bookID)
	return fn()
}

// IsLocked reports whether someone holds the book lock right now.
func (bl *BookLock) IsLocked(bookID int64) bool {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	m, ok := bl.books[bookID]
	return ok && len(m.sem) == 1
}

// Len returns the number of books with a holder or waiter.
func (bl *BookLock) Len() int {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	return len(bl.books)
}
