package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "scorebooks",
		sql: `
		CREATE TABLE IF NOT EXISTS scorebooks (
			id BIGINT PRIMARY KEY,
			fund BIGINT NOT NULL DEFAULT 0,
			last_game_type TEXT NOT NULL DEFAULT '',
			ranking_overrides JSONB NOT NULL DEFAULT '{}'::jsonb,
			daily_winners JSONB NOT NULL DEFAULT '{}'::jsonb,
			yearly_winners JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			version BIGINT NOT NULL DEFAULT 0
		)`,
	},
	{
		name: "scorebook_players",
		sql: `
		CREATE TABLE IF NOT EXISTS scorebook_players (
			book_id BIGINT NOT NULL REFERENCES scorebooks(id) ON DELETE CASCADE,
			position INT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (book_id, position)
		)`,
	},
	{
		name: "scorebook_games",
		sql: `
		CREATE TABLE IF NOT EXISTS scorebook_games (
			book_id BIGINT NOT NULL REFERENCES scorebooks(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			seq BIGINT NOT NULL,
			game_date DATE NOT NULL,
			game_type TEXT NOT NULL,
			is_open BOOLEAN NOT NULL DEFAULT FALSE,
			scores JSONB NOT NULL,
			duration_minutes INT,
			duration_seconds INT,
			true_winner TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (book_id, id)
		);
		CREATE INDEX IF NOT EXISTS idx_scorebook_games_date ON scorebook_games(book_id, game_date, seq)`,
	},
}

// Migrate creates the scorebook tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.name, err)
		}
		log.Info().Int("step", i+1).Str("table", m.name).Msg("Migration applied")
	}
	return nil
}
