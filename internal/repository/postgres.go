package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"uno-score-bot/internal/model"
)

// PostgresStore persists snapshots across the scorebooks, scorebook_players and
// scorebook_games tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load reads a book back, players by position and games by sequence.
// Returns ErrSnapshotNotFound if the book has never been saved.
func (s *PostgresStore) Load(ctx context.Context, bookID int64) (model.Snapshot, error) {
	const bookQuery = `
		SELECT fund, last_game_type, ranking_overrides, daily_winners, yearly_winners, updated_at, version
		FROM scorebooks
		WHERE id = $1
	`

	var snap model.Snapshot
	var lastType string
	var version int64
	err := s.pool.QueryRow(ctx, bookQuery, bookID).Scan(
		&snap.Fund,
		&lastType,
		&snap.RankingOverrides,
		&snap.DailyWinners,
		&snap.YearlyWinners,
		&snap.UpdatedAt,
		&version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Snapshot{}, ErrSnapshotNotFound
		}
		return model.Snapshot{}, fmt.Errorf("failed to get scorebook: %w", err)
	}
	snap.LastGameType = model.Variant(lastType)
	snap.Version = uint64(version)

	players, err := s.loadPlayers(ctx, bookID)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap.Players = players

	games, err := s.loadGames(ctx, bookID)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap.Games = games

	return snap, nil
}

func (s *PostgresStore) loadPlayers(ctx context.Context, bookID int64) ([]string, error) {
	const query = `
		SELECT name
		FROM scorebook_players
		WHERE book_id = $1
		ORDER BY position
	`

	rows, err := s.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	players, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan players: %w", err)
	}
	return players, nil
}

func (s *PostgresStore) loadGames(ctx context.Context, bookID int64) ([]model.GameRecord, error) {
	const query = `
		SELECT id, seq, game_date, game_type, is_open, scores, duration_minutes, duration_seconds, true_winner
		FROM scorebook_games
		WHERE book_id = $1
		ORDER BY seq
	`

	rows, err := s.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	defer rows.Close()

	games := make([]model.GameRecord, 0)
	for rows.Next() {
		var g model.GameRecord
		var day time.Time
		var gameType string
		var minutes, seconds *int32
		if err := rows.Scan(
			&g.ID,
			&g.Seq,
			&day,
			&gameType,
			&g.IsOpen,
			&g.Scores,
			&minutes,
			&seconds,
			&g.TrueWinner,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g.Date = model.DateOf(day)
		g.Type = model.Variant(gameType)
		if minutes != nil || seconds != nil {
			g.Duration = &model.Duration{}
			if minutes != nil {
				g.Duration.Minutes = int(*minutes)
			}
			if seconds != nil {
				g.Duration.Seconds = int(*seconds)
			}
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}
	return games, nil
}

// Save replaces everything stored for the book in a single transaction.
func (s *PostgresStore) Save(ctx context.Context, bookID int64, snap model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsertBook = `
		INSERT INTO scorebooks (id, fund, last_game_type, ranking_overrides, daily_winners, yearly_winners, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			fund = EXCLUDED.fund,
			last_game_type = EXCLUDED.last_game_type,
			ranking_overrides = EXCLUDED.ranking_overrides,
			daily_winners = EXCLUDED.daily_winners,
			yearly_winners = EXCLUDED.yearly_winners,
			updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version
	`
	o := snap.Overrides()
	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	if _, err := tx.Exec(ctx, upsertBook,
		bookID, snap.Fund, string(snap.LastGameType), o.Ranking, o.DailyWinners, o.YearlyWinners, updatedAt, int64(snap.Version),
	); err != nil {
		return fmt.Errorf("failed to save scorebook: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM scorebook_players WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM scorebook_games WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("failed to clear games: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range snap.Players {
		batch.Queue(`INSERT INTO scorebook_players (book_id, position, name) VALUES ($1, $2, $3)`, bookID, i, p)
	}
	for _, g := range snap.Games {
		var minutes, seconds *int32
		if g.Duration != nil {
			m, s := int32(g.Duration.Minutes), int32(g.Duration.Seconds)
			minutes, seconds = &m, &s
		}
		scores := g.Scores
		if scores == nil {
			scores = map[string]int{}
		}
		batch.Queue(`
			INSERT INTO scorebook_games
				(book_id, id, seq, game_date, game_type, is_open, scores, duration_minutes, duration_seconds, true_winner)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			bookID, g.ID, g.Seq, g.Date.Midnight(time.UTC), string(g.Type.OrDefault()), g.IsOpen, scores,
			minutes, seconds, g.TrueWinner,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scorebook: %w", err)
	}
	return nil
}
