// Package main is the entry point for the UNO score bot.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"uno-score-bot/internal/bot"
	"uno-score-bot/internal/config"
	"uno-score-bot/internal/httpapi"
	"uno-score-bot/internal/metrics"
	"uno-score-bot/internal/pkg/db"
	"uno-score-bot/internal/pkg/lock"
	"uno-score-bot/internal/repository"
	"uno-score-bot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := metrics.NewRecorder()

	var store repository.SnapshotStore = repository.NewFileStore(cfg.Storage.LocalDir)
	var checks []httpapi.HealthChecker
	if cfg.Storage.PostgresEnabled {
		pool, err := connectPostgres(ctx, &cfg.Database)
		if err != nil {
			// Local files keep the bot usable; the remote copy catches up on the next save.
			log.Warn().Err(err).Msg("PostgreSQL unavailable, running on local storage only")
		} else {
			defer pool.Close()
			store = repository.NewFallbackStore(repository.NewPostgresStore(pool.Pool), store, rec)
			checks = append(checks, pool)
		}
	}
	log.Info().
		Str("local_dir", cfg.Storage.LocalDir).
		Bool("postgres", len(checks) > 0).
		Msg("Storage initialized")

	scoreService := service.NewScoreService(
		store,
		lock.NewBookLock(),
		rec,
		service.Defaults{Players: cfg.Scorebook.Players, Variant: cfg.Scorebook.Variant()},
		cfg.Scorebook.LockTimeout,
	)
	rankingService := service.NewRankingService(scoreService, cfg.Scorebook.Location(), cfg.Scorebook.RecentLimit)

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:         cfg,
		ScoreService:   scoreService,
		RankingService: rankingService,
		Metrics:        rec,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	var httpServer *http.Server
	if cfg.HTTP.Addr != "" {
		httpServer = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewServer(rankingService, rec, checks...).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("HTTP server failed")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}
	log.Info().Msg("Bot stopped gracefully")
}

// connectPostgres opens the pool and brings the schema up to date.
func connectPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*db.Pool, error) {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, pool.Pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
