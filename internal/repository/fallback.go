package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"uno-score-bot/internal/metrics"
	"uno-score-bot/internal/model"
)

// FallbackStore pairs a remote primary store with a local copy.
//
// Load returns whichever copy has the higher version and falls back to the local copy
// when the primary fails.
// Save always writes locally first; a primary failure is returned as a *SyncError so
// the caller can tell the user the data was kept locally.
type FallbackStore struct {
	primary SnapshotStore
	local   SnapshotStore
	metrics *metrics.Recorder
}

// NewFallbackStore creates a FallbackStore. rec may be nil.
func NewFallbackStore(primary, local SnapshotStore, rec *metrics.Recorder) *FallbackStore {
	return &FallbackStore{primary: primary, local: local, metrics: rec}
}

// Load returns the newer of the primary and local snapshots, or the local one if the
// primary is unreachable. A local copy with a higher version holds saves made while the
// primary was down; it wins and is written back to the primary. A book that the primary
// reports as missing is still looked up locally.
func (s *FallbackStore) Load(ctx context.Context, bookID int64) (model.Snapshot, error) {
	snap, err := s.primary.Load(ctx, bookID)
	if err == nil {
		return s.newest(ctx, bookID, snap), nil
	}
	if errors.Is(err, ErrSnapshotNotFound) {
		return s.local.Load(ctx, bookID)
	}

	log.Warn().Err(err).Int64("book_id", bookID).Msg("Primary store load failed, using local snapshot")
	s.metrics.RecordSyncFailure("load")

	local, localErr := s.local.Load(ctx, bookID)
	if localErr != nil {
		if errors.Is(localErr, ErrSnapshotNotFound) {
			return model.Snapshot{}, &SyncError{Op: "load", Err: err}
		}
		return model.Snapshot{}, &SyncError{Op: "load", Err: errors.Join(err, localErr)}
	}
	return local, nil
}

// newest compares primary with the local copy and catches the primary up when the
// local copy is ahead. Local read errors leave the primary copy in charge.
func (s *FallbackStore) newest(ctx context.Context, bookID int64, primary model.Snapshot) model.Snapshot {
	local, err := s.local.Load(ctx, bookID)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			log.Warn().Err(err).Int64("book_id", bookID).Msg("Local snapshot unreadable, using primary")
		}
		return primary
	}
	if local.Version <= primary.Version {
		return primary
	}

	log.Warn().
		Int64("book_id", bookID).
		Uint64("local_version", local.Version).
		Uint64("primary_version", primary.Version).
		Msg("Local snapshot is ahead of primary, resyncing")
	if err := s.primary.Save(ctx, bookID, local); err != nil {
		s.metrics.RecordSyncFailure("resync")
		log.Warn().Err(err).Int64("book_id", bookID).Msg("Primary resync failed")
	}
	return local
}

// Save writes snap locally, then to the primary.
func (s *FallbackStore) Save(ctx context.Context, bookID int64, snap model.Snapshot) error {
	if err := s.local.Save(ctx, bookID, snap); err != nil {
		return err
	}
	if err := s.primary.Save(ctx, bookID, snap); err != nil {
		log.Warn().Err(err).Int64("book_id", bookID).Msg("Primary store save failed, snapshot kept locally")
		s.metrics.RecordSyncFailure("save")
		return &SyncError{Op: "save", Err: err}
	}
	return nil
}

// Push copies the local snapshot of bookID to the primary, overwriting it. Use it to
// catch the primary up after saves that only reached the local copy.
func (s *FallbackStore) Push(ctx context.Context, bookID int64) (model.Snapshot, error) {
	snap, err := s.local.Load(ctx, bookID)
	if err != nil {
		return model.Snapshot{}, err
	}
	if err := s.primary.Save(ctx, bookID, snap); err != nil {
		s.metrics.RecordSyncFailure("push")
		return model.Snapshot{}, &SyncError{Op: "push", Err: err}
	}
	log.Info().Int64("book_id", bookID).Uint64("version", snap.Version).Msg("Local snapshot pushed to primary")
	return snap, nil
}
