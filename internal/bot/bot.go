// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"uno-score-bot/internal/config"
	"uno-score-bot/internal/handler"
	"uno-score-bot/internal/metrics"
	"uno-score-bot/internal/pkg/dateparse"
	"uno-score-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	members *GroupMembers
	limiter *UserRateLimiter
	metrics *metrics.Recorder

	scoreHandler   *handler.ScoreHandler
	rankingHandler *handler.RankingHandler
	fileHandler    *handler.FileHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config         *config.Config
	ScoreService   *service.ScoreService
	RankingService *service.RankingService
	Metrics        *metrics.Recorder
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	dates := dateparse.New(deps.Config.Scorebook.Location(), time.Now)
	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		members:        NewGroupMembers(),
		limiter:        NewUserRateLimiter(deps.Config.RateLimit.PerSecond, deps.Config.RateLimit.Burst),
		metrics:        deps.Metrics,
		scoreHandler:   handler.NewScoreHandler(deps.ScoreService, dates),
		rankingHandler: handler.NewRankingHandler(deps.RankingService, dates),
		fileHandler:    handler.NewFileHandler(deps.ScoreService, deps.RankingService),
	}

	b.registerMiddleware()
	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.members))
	b.bot.Use(LoggingMiddleware(b.metrics))
	b.bot.Use(RateLimitMiddleware(b.limiter, b.metrics))
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", handler.HandleHelp)
	b.bot.Handle("/help", handler.HandleHelp)

	// Recording
	b.bot.Handle("/score", b.scoreHandler.HandleScore)
	b.bot.Handle("/open", b.scoreHandler.HandleOpen)
	b.bot.Handle("/players", b.scoreHandler.HandlePlayers)

	// Views
	b.bot.Handle("/recent", b.rankingHandler.HandleRecent)
	b.bot.Handle("/table", b.rankingHandler.HandleTable)
	b.bot.Handle("/daily", b.rankingHandler.HandleDaily)
	b.bot.Handle("/yearly", b.rankingHandler.HandleYearly)
	b.bot.Handle("/summary", b.rankingHandler.HandleSummary)
	b.bot.Handle("/winloss", b.rankingHandler.HandleWinLoss)

	// Edits
	b.bot.Handle("/winner", b.scoreHandler.HandleWinner)
	b.bot.Handle("/daywinner", b.scoreHandler.HandleDayWinner)
	b.bot.Handle("/yearwinner", b.scoreHandler.HandleYearWinner)
	b.bot.Handle("/order", b.scoreHandler.HandleOrder)
	b.bot.Handle("/type", b.scoreHandler.HandleType)
	b.bot.Handle("/fund", b.scoreHandler.HandleFund)

	// Import and export
	b.bot.Handle("/export", b.fileHandler.HandleExport)
	b.bot.Handle(tele.OnDocument, b.fileHandler.HandleDocument)

	// Buttons under recorded games
	b.bot.Handle(tele.OnCallback, b.scoreHandler.HandleCallback)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/addplayer", b.scoreHandler.HandleAddPlayer)
	adminGroup.Handle("/removeplayer", b.scoreHandler.HandleRemovePlayer)
	adminGroup.Handle("/delete", b.scoreHandler.HandleDelete)
	adminGroup.Handle("/deletedate", b.scoreHandler.HandleDeleteDate)
	adminGroup.Handle("/deleteyear", b.scoreHandler.HandleDeleteYear)
	adminGroup.Handle("/clear", b.scoreHandler.HandleClear)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
