package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"uno-score-bot/internal/model"
)

// FileStore keeps one JSON file per book at {dir}/{bookID}.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file a book is stored in.
func (s *FileStore) Path(bookID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(bookID, 10)+".json")
}

// Load reads a book's snapshot from disk.
func (s *FileStore) Load(ctx context.Context, bookID int64) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	f, err := os.Open(s.Path(bookID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Snapshot{}, ErrSnapshotNotFound
		}
		return model.Snapshot{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var snap model.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot to a temp file and renames it over the old one, so a crash
// never leaves a half-written file behind.
func (s *FileStore) Save(ctx context.Context, bookID int64, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	target := s.Path(bookID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
