// Package repository persists whole scorebook snapshots.
//
// Every store works at dataset granularity: Save replaces everything stored for a
// book, Load returns everything. The last writer wins.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"uno-score-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// SnapshotStore loads and saves the whole dataset of one scorebook.
type SnapshotStore interface {
	Load(ctx context.Context, bookID int64) (model.Snapshot, error)
	Save(ctx context.Context, bookID int64, snap model.Snapshot) error
}

// SyncError reports that a snapshot was kept locally but the primary store failed.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrRemoteUnavailable, e.Err)
}

// Unwrap exposes both ErrRemoteUnavailable and the cause to errors.Is.
func (e *SyncError) Unwrap() []error {
	return []error{ErrRemoteUnavailable, e.Err}
}

// MemoryStore keeps deep copies of snapshots in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[int64]model.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[int64]model.Snapshot)}
}

// Load returns a copy of the stored snapshot.
func (s *MemoryStore) Load(_ context.Context, bookID int64) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.books[bookID]
	if !ok {
		return model.Snapshot{}, ErrSnapshotNotFound
	}
	return snap.Clone(), nil
}

// Save stores a copy of snap.
func (s *MemoryStore) Save(_ context.Context, bookID int64, snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[bookID] = snap.Clone()
	return nil
}
