package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uno-score-bot/internal/metrics"
	"uno-score-bot/internal/model"
)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Players: []string{"Aki", "Ben", "Cho"},
		Games: []model.GameRecord{
			{
				ID:       "0190a0b0-0000-7000-8000-000000000001",
				Seq:      1,
				Date:     model.MustParseDate("2025-01-19"),
				Type:     model.VariantPanee,
				Scores:   map[string]int{"Aki": 0, "Ben": 5, "Cho": 0},
				Duration: &model.Duration{Minutes: 12, Seconds: 3},
			},
			{
				ID:         "0190a0b0-0000-7000-8000-000000000002",
				Seq:        2,
				Date:       model.MustParseDate("2025-01-19"),
				Type:       model.VariantParty,
				IsOpen:     true,
				Scores:     map[string]int{"Aki": 7, "Ben": 0, "Cho": 2},
				TrueWinner: "Ben",
			},
		},
		Fund:             1200,
		LastGameType:     model.VariantParty,
		RankingOverrides: map[string][]string{"daily_2025-01-19": {"Cho", "Aki"}},
		DailyWinners:     map[string]string{"2025-01-19": "Cho"},
		YearlyWinners:    map[string]string{"2025": "Aki"},
		UpdatedAt:        time.Date(2025, 1, 19, 20, 0, 0, 0, time.UTC),
	}
}

// failingStore fails every call with err.
type failingStore struct{ err error }

func (s failingStore) Load(context.Context, int64) (model.Snapshot, error) {
	return model.Snapshot{}, s.err
}

func (s failingStore) Save(context.Context, int64, model.Snapshot) error { return s.err }

// flakyStore is a MemoryStore that can be switched off.
type flakyStore struct {
	*MemoryStore
	down bool
}

func (s *flakyStore) Load(ctx context.Context, bookID int64) (model.Snapshot, error) {
	if s.down {
		return model.Snapshot{}, errors.New("connection refused")
	}
	return s.MemoryStore.Load(ctx, bookID)
}

func (s *flakyStore) Save(ctx context.Context, bookID int64, snap model.Snapshot) error {
	if s.down {
		return errors.New("connection refused")
	}
	return s.MemoryStore.Save(ctx, bookID, snap)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Load(ctx, 1)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	snap := sampleSnapshot()
	require.NoError(t, s.Save(ctx, 1, snap))

	snap.Games[0].Scores["Aki"] = 99
	got, err := s.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Games[0].Scores["Aki"], "stored copy must be detached")

	got.Players[0] = "changed"
	again, err := s.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Aki", again.Players[0])
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir() + "/nested")

	_, err := s.Load(ctx, -100123)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	snap := sampleSnapshot()
	require.NoError(t, s.Save(ctx, -100123, snap))

	got, err := s.Load(ctx, -100123)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	_, err = os.Stat(s.Path(-100123) + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.Path(5), []byte("{not json"), 0o644))

	_, err := s.Load(context.Background(), 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFallbackStore_Save(t *testing.T) {
	ctx := context.Background()
	snap := sampleSnapshot()

	t.Run("both stores written", func(t *testing.T) {
		primary, local := NewMemoryStore(), NewMemoryStore()
		s := NewFallbackStore(primary, local, nil)
		require.NoError(t, s.Save(ctx, 1, snap))

		_, err := primary.Load(ctx, 1)
		assert.NoError(t, err)
		_, err = local.Load(ctx, 1)
		assert.NoError(t, err)
	})

	t.Run("primary failure keeps local copy", func(t *testing.T) {
		cause := errors.New("connection refused")
		local := NewMemoryStore()
		rec := metrics.NewRecorder()
		s := NewFallbackStore(failingStore{err: cause}, local, rec)

		err := s.Save(ctx, 1, snap)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRemoteUnavailable)
		assert.ErrorIs(t, err, cause)

		var syncErr *SyncError
		require.ErrorAs(t, err, &syncErr)
		assert.Equal(t, "save", syncErr.Op)

		got, err := local.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, snap.Players, got.Players)
	})

	t.Run("local failure is returned before primary is tried", func(t *testing.T) {
		primary := NewMemoryStore()
		s := NewFallbackStore(primary, failingStore{err: errors.New("disk full")}, nil)

		require.Error(t, s.Save(ctx, 1, snap))
		_, err := primary.Load(ctx, 1)
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})
}

func TestFallbackStore_Load(t *testing.T) {
	ctx := context.Background()
	snap := sampleSnapshot()
	down := failingStore{err: errors.New("timeout")}

	t.Run("primary preferred", func(t *testing.T) {
		primary, local := NewMemoryStore(), NewMemoryStore()
		current := snap.Clone()
		current.Version = 5
		require.NoError(t, primary.Save(ctx, 1, current))
		stale := snap.Clone()
		stale.Version = 4
		stale.Fund = 1
		require.NoError(t, local.Save(ctx, 1, stale))

		got, err := NewFallbackStore(primary, local, nil).Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), got.Fund)
		assert.Equal(t, uint64(5), got.Version)
	})

	t.Run("newer local copy wins and is written back", func(t *testing.T) {
		primary, local := NewMemoryStore(), NewMemoryStore()
		behind := snap.Clone()
		behind.Version = 2
		behind.Fund = 1
		require.NoError(t, primary.Save(ctx, 1, behind))
		ahead := snap.Clone()
		ahead.Version = 3
		require.NoError(t, local.Save(ctx, 1, ahead))

		got, err := NewFallbackStore(primary, local, nil).Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), got.Fund)
		assert.Equal(t, uint64(3), got.Version)

		remote, err := primary.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), remote.Version)
		assert.Equal(t, int64(1200), remote.Fund)
	})

	t.Run("falls back to local", func(t *testing.T) {
		local := NewMemoryStore()
		require.NoError(t, local.Save(ctx, 1, snap))

		got, err := NewFallbackStore(down, local, nil).Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, snap.Players, got.Players)
	})

	t.Run("missing remotely is looked up locally", func(t *testing.T) {
		local := NewMemoryStore()
		require.NoError(t, local.Save(ctx, 1, snap))

		got, err := NewFallbackStore(NewMemoryStore(), local, nil).Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, snap.Fund, got.Fund)

		_, err = NewFallbackStore(NewMemoryStore(), NewMemoryStore(), nil).Load(ctx, 2)
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	t.Run("both unavailable surfaces remote error", func(t *testing.T) {
		_, err := NewFallbackStore(down, NewMemoryStore(), nil).Load(ctx, 1)
		assert.ErrorIs(t, err, ErrRemoteUnavailable)
		assert.NotErrorIs(t, err, ErrSnapshotNotFound)
	})
}

func TestFallbackStore_OutageSavesSurviveRecovery(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{MemoryStore: NewMemoryStore()}
	local := NewMemoryStore()
	s := NewFallbackStore(primary, local, nil)

	// Mirrors a service mutation: load, append one game, bump the version, save.
	addGame := func(seq int64) error {
		snap, err := s.Load(ctx, 1)
		if errors.Is(err, ErrSnapshotNotFound) {
			snap, err = model.Snapshot{Players: []string{"Aki", "Ben"}}, nil
		}
		require.NoError(t, err)
		snap.Games = append(snap.Games, model.GameRecord{
			ID:     fmt.Sprintf("game-%d", seq),
			Seq:    seq,
			Date:   model.MustParseDate("2025-01-19"),
			Scores: map[string]int{"Aki": 0, "Ben": int(seq)},
		})
		snap.Version++
		return s.Save(ctx, 1, snap)
	}

	require.NoError(t, addGame(1))

	primary.down = true
	err := addGame(2)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "save", syncErr.Op)

	primary.down = false
	require.NoError(t, addGame(3))

	for name, store := range map[string]SnapshotStore{"merged": s, "primary": primary, "local": local} {
		got, err := store.Load(ctx, 1)
		require.NoError(t, err, name)
		assert.Len(t, got.Games, 3, name)
		assert.Equal(t, uint64(3), got.Version, name)
	}
}

func TestFallbackStore_Push(t *testing.T) {
	ctx := context.Background()
	snap := sampleSnapshot()
	snap.Version = 7

	primary, local := NewMemoryStore(), NewMemoryStore()
	stale := snap.Clone()
	stale.Version = 3
	require.NoError(t, primary.Save(ctx, 1, stale))
	require.NoError(t, local.Save(ctx, 1, snap))

	s := NewFallbackStore(primary, local, nil)
	pushed, err := s.Push(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), pushed.Version)

	got, err := primary.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.Version)

	_, err = s.Push(ctx, 2)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = NewFallbackStore(failingStore{err: errors.New("timeout")}, local, nil).Push(ctx, 1)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "push", syncErr.Op)
}
