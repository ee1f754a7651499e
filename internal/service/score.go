// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"uno-score-bot/internal/engine"
	"uno-score-bot/internal/importer"
	"uno-score-bot/internal/metrics"
	"uno-score-bot/internal/model"
	"uno-score-bot/internal/pkg/lock"
	"uno-score-bot/internal/repository"
	"uno-score-bot/internal/scorebook"
)

// Defaults seed a scorebook the first time a chat uses it.
type Defaults struct {
	Players []string
	Variant model.Variant
}

// ScoreService applies mutations to scorebooks.
//
// Each mutation takes the book lock, loads the whole snapshot (or seeds a new book),
// applies the change and saves the whole snapshot back. When the save only reached the
// local store, the mutation still succeeds and the returned error wraps
// repository.ErrRemoteUnavailable; use IsSyncWarning to tell the two apart.
type ScoreService struct {
	store       repository.SnapshotStore
	locks       *lock.BookLock
	metrics     *metrics.Recorder
	defaults    Defaults
	lockTimeout time.Duration
	now         func() time.Time
}

// NewScoreService creates a new ScoreService instance. rec may be nil.
func NewScoreService(
	store repository.SnapshotStore,
	locks *lock.BookLock,
	rec *metrics.Recorder,
	defaults Defaults,
	lockTimeout time.Duration,
) *ScoreService {
	if locks == nil {
		locks = lock.NewBookLock()
	}
	return &ScoreService{
		store:       store,
		locks:       locks,
		metrics:     rec,
		defaults:    defaults,
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
}

// IsSyncWarning reports whether err only says the remote copy is behind.
func IsSyncWarning(err error) bool {
	var syncErr *repository.SyncError
	return errors.As(err, &syncErr) && syncErr.Op == "save"
}

// Load returns the book for bookID, or a fresh unsaved book with the default roster.
func (s *ScoreService) Load(ctx context.Context, bookID int64) (*scorebook.Book, error) {
	snap, err := s.store.Load(ctx, bookID)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		return scorebook.New(s.defaults.Players, scorebook.WithDefaultVariant(s.defaults.Variant))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scorebook: %w", err)
	}
	return scorebook.FromSnapshot(snap)
}

func (s *ScoreService) mutate(ctx context.Context, bookID int64, op string, fn func(*scorebook.Book) error) (*scorebook.Book, error) {
	start := time.Now()
	var book *scorebook.Book
	err := s.locks.WithLock(ctx, bookID, s.lockTimeout, func() error {
		b, err := s.Load(ctx, bookID)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		book = b
		return s.store.Save(ctx, bookID, b.Snapshot(s.now()))
	})
	s.metrics.ObserveMutation(op, err, time.Since(start))

	switch {
	case err == nil:
		log.Info().Int64("book_id", bookID).Str("op", op).Uint64("version", book.Version()).Msg("Scorebook updated")
	case IsSyncWarning(err):
		log.Warn().Err(err).Int64("book_id", bookID).Str("op", op).Msg("Scorebook saved locally only")
	default:
		log.Debug().Err(err).Int64("book_id", bookID).Str("op", op).Msg("Scorebook mutation rejected")
		return nil, err
	}
	return book, err
}

// AddPlayer appends a player to the roster.
func (s *ScoreService) AddPlayer(ctx context.Context, bookID int64, name string) (*scorebook.Book, error) {
	return s.mutate(ctx, bookID, "add_player", func(b *scorebook.Book) error {
		return b.AddPlayer(name)
	})
}

// RemovePlayer drops a player from the roster.
func (s *ScoreService) RemovePlayer(ctx context.Context, bookID int64, name string) (*scorebook.Book, error) {
	return s.mutate(ctx, bookID, "remove_player", func(b *scorebook.Book) error {
		return b.RemovePlayer(name)
	})
}

// RecordGame stores a new game. An entry without a type reuses the last variant.
func (s *ScoreService) RecordGame(ctx context.Context, bookID int64, e scorebook.Entry) (model.GameRecord, error) {
	var rec model.GameRecord
	_, err := s.mutate(ctx, bookID, "record_game", func(b *scorebook.Book) error {
		if e.Type == "" {
			e.Type = b.LastType()
		}
		var err error
		rec, err = b.RecordGame(e)
		return err
	})
	return rec, err
}

// RecordScores stores a game given scores in roster order.
func (s *ScoreService) RecordScores(ctx context.Context, bookID int64, day model.Date, variant model.Variant, open bool, scores []int) (model.GameRecord, error) {
	var rec model.GameRecord
	_, err := s.mutate(ctx, bookID, "record_game", func(b *scorebook.Book) error {
		players := b.Players()
		if len(scores) != len(players) {
			return fmt.Errorf("%w: got %d scores for %d players", ErrScoreCount, len(scores), len(players))
		}
		e := scorebook.Entry{Date: day, Type: variant, IsOpen: open, Scores: make(map[string]int, len(players))}
		if e.Type == "" {
			e.Type = b.LastType()
		}
		for i, p := range players {
			e.Scores[p] = scores[i]
		}
		var err error
		rec, err = b.RecordGame(e)
		return err
	})
	return rec, err
}

// ToggleTrueWinner sets or clears the designated winner of a zero-tied game.
func (s *ScoreService) ToggleTrueWinner(ctx context.Context, bookID int64, gameID, player string) (model.GameRecord, error) {
	var rec model.GameRecord
	_, err := s.mutate(ctx, bookID, "toggle_true_winner", func(b *scorebook.Book) error {
		if !b.HasPlayer(player) {
			return scorebook.ErrUnknownPlayer
		}
		var err error
		rec, err = b.ToggleTrueWinner(gameID, player)
		return err
	})
	return rec, err
}

// ToggleTrueWinnerAt toggles the idx-th zero scorer of a tied game, in roster order.
// The index is resolved against the book held under the lock, so a roster or score
// change racing the caller cannot redirect it to another player.
func (s *ScoreService) ToggleTrueWinnerAt(ctx context.Context, bookID int64, gameID string, idx int) (model.GameRecord, error) {
	var rec model.GameRecord
	_, err := s.mutate(ctx, bookID, "toggle_true_winner", func(b *scorebook.Book) error {
		g, err := b.Game(gameID)
		if err != nil {
			return err
		}
		o := engine.Classify(g, b.Players())
		if g.IsOpen || !o.ZeroTie() || idx < 0 || idx >= len(o.ZeroScorers) {
			return ErrNotTied
		}
		rec, err = b.ToggleTrueWinner(gameID, o.ZeroScorers[idx])
		return err
	})
	return rec, err
}

// CycleType moves a game to the next variant.
func (s *ScoreService) CycleType(ctx context.Context, bookID int64, gameID string) (model.GameRecord, error) {
	var rec model.GameRecord
	_, err := s.mutate(ctx, bookID, "cycle_type", func(b *scorebook.Book) error {
		var err error
		rec, err = b.CycleType(gameID)
		return err
	})
	return rec, err
}

// DeleteGame removes one game.
func (s *ScoreService) DeleteGame(ctx context.Context, bookID int64, gameID string) error {
	_, err := s.mutate(ctx, bookID, "delete_game", func(b *scorebook.Book) error {
		return b.DeleteGame(gameID)
	})
	return err
}

// DeleteByDate removes every game on day.
func (s *ScoreService) DeleteByDate(ctx context.Context, bookID int64, day model.Date) (int, error) {
	n := 0
	_, err := s.mutate(ctx, bookID, "delete_by_date", func(b *scorebook.Book) error {
		n = b.DeleteByDate(day)
		return nil
	})
	return n, err
}

// DeleteByYear removes every game in year.
func (s *ScoreService) DeleteByYear(ctx context.Context, bookID int64, year int) (int, error) {
	n := 0
	_, err := s.mutate(ctx, bookID, "delete_by_year", func(b *scorebook.Book) error {
		n = b.DeleteByYear(year)
		return nil
	})
	return n, err
}

// ClearGames removes every game.
func (s *ScoreService) ClearGames(ctx context.Context, bookID int64) (int, error) {
	n := 0
	_, err := s.mutate(ctx, bookID, "clear_games", func(b *scorebook.Book) error {
		n = b.ClearGames()
		return nil
	})
	return n, err
}

// ToggleDailyWinner sets or clears the designated winner of a day's zero-tie.
func (s *ScoreService) ToggleDailyWinner(ctx context.Context, bookID int64, day model.Date, player string) (string, error) {
	winner := ""
	_, err := s.mutate(ctx, bookID, "toggle_daily_winner", func(b *scorebook.Book) error {
		if !b.HasPlayer(player) {
			return scorebook.ErrUnknownPlayer
		}
		winner = b.ToggleDailyWinner(day, player)
		return nil
	})
	return winner, err
}

// ToggleYearlyWinner sets or clears the designated winner of a year's zero-tie.
func (s *ScoreService) ToggleYearlyWinner(ctx context.Context, bookID int64, year int, player string) (string, error) {
	winner := ""
	_, err := s.mutate(ctx, bookID, "toggle_yearly_winner", func(b *scorebook.Book) error {
		if !b.HasPlayer(player) {
			return scorebook.ErrUnknownPlayer
		}
		winner = b.ToggleYearlyWinner(year, player)
		return nil
	})
	return winner, err
}

// SetRankingOverride stores a manual order for key. Names must be on the roster; an
// empty order clears the entry.
func (s *ScoreService) SetRankingOverride(ctx context.Context, bookID int64, key model.ScopeKey, order []string) error {
	_, err := s.mutate(ctx, bookID, "set_ranking_override", func(b *scorebook.Book) error {
		for _, p := range order {
			if !b.HasPlayer(p) {
				return fmt.Errorf("%w: %s", scorebook.ErrUnknownPlayer, p)
			}
		}
		b.SetRankingOverride(key, order)
		return nil
	})
	return err
}

// SetFund sets the group fund balance.
func (s *ScoreService) SetFund(ctx context.Context, bookID int64, amount int64) error {
	_, err := s.mutate(ctx, bookID, "set_fund", func(b *scorebook.Book) error {
		return b.SetFund(amount)
	})
	return err
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Format importer.Format
	Added  int
	Report importer.Report
}

// Import dispatches on the file name's extension. year completes m/d dates in sheets.
func (s *ScoreService) Import(ctx context.Context, bookID int64, filename string, r io.Reader, year int) (ImportResult, error) {
	format, err := importer.FormatFor(filename)
	if err != nil {
		return ImportResult{}, err
	}
	if format == importer.FormatJSON {
		added, err := s.ImportJSON(ctx, bookID, r)
		return ImportResult{Format: format, Added: added}, err
	}
	return s.ImportTabular(ctx, bookID, format, r, year)
}

// ImportTabular appends the rows of a CSV or XLSX sheet as new games.
func (s *ScoreService) ImportTabular(ctx context.Context, bookID int64, format importer.Format, r io.Reader, year int) (ImportResult, error) {
	res := ImportResult{Format: format}
	_, err := s.mutate(ctx, bookID, "import_"+string(format), func(b *scorebook.Book) error {
		opts := importer.Options{Year: year, Roster: b.Players()}
		var parsed importer.Result
		var err error
		switch format {
		case importer.FormatCSV:
			parsed, err = importer.ParseCSV(r, opts)
		case importer.FormatXLSX:
			parsed, err = importer.ParseXLSX(r, opts)
		default:
			err = fmt.Errorf("%w: %s", importer.ErrUnsupportedFormat, format)
		}
		if err != nil {
			return err
		}
		res.Report = parsed.Report
		if len(parsed.Records) == 0 {
			return ErrNothingToImport
		}
		res.Added = b.AppendRecords(parsed.Records)
		return nil
	})
	s.metrics.RecordImport(string(format), res.Added, len(res.Report.Skipped))
	return res, err
}

// ImportJSON merges an exported snapshot: the roster is replaced and games already
// present by id are skipped. A parse error aborts with nothing changed.
func (s *ScoreService) ImportJSON(ctx context.Context, bookID int64, r io.Reader) (int, error) {
	snap, err := importer.ParseSnapshotJSON(r)
	if err != nil {
		return 0, err
	}
	added := 0
	_, err = s.mutate(ctx, bookID, "import_json", func(b *scorebook.Book) error {
		var err error
		added, err = b.MergeSnapshot(snap)
		return err
	})
	s.metrics.RecordImport(string(importer.FormatJSON), added, 0)
	return added, err
}

// Export writes the whole book as indented JSON.
func (s *ScoreService) Export(ctx context.Context, bookID int64, w io.Writer) error {
	b, err := s.Load(ctx, bookID)
	if err != nil {
		return err
	}
	return importer.WriteSnapshotJSON(w, b.Snapshot(s.now()))
}
