package bot

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"

	"uno-score-bot/internal/config"
	"uno-score-bot/internal/metrics"
)

// GroupMembers remembers users seen in whitelisted groups, who may then use the bot in
// a private chat.
type GroupMembers struct {
	mu    sync.RWMutex
	users map[int64]bool
}

// NewGroupMembers creates an empty GroupMembers set.
func NewGroupMembers() *GroupMembers {
	return &GroupMembers{users: make(map[int64]bool)}
}

// Allow marks a user as seen.
func (g *GroupMembers) Allow(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[userID] = true
}

// Allowed reports whether a user was seen in a whitelisted group.
func (g *GroupMembers) Allowed(userID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.users[userID]
}

// WhitelistMiddleware drops updates from chats that are not whitelisted.
// Private chats pass when the whitelist is empty or the user was seen in an allowed group.
func WhitelistMiddleware(cfg *config.Config, members *GroupMembers) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return nil
			}

			if chat.Type == tele.ChatPrivate {
				if len(cfg.Whitelist.Chats) == 0 || members.Allowed(sender.ID) {
					return next(c)
				}
				log.Debug().
					Int64("user_id", sender.ID).
					Msg("Ignoring private chat from user not seen in a whitelisted group")
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring command from non-whitelisted chat")
				return nil
			}
			members.Allow(sender.ID)
			return next(c)
		}
	}
}

// AdminMiddleware rejects commands from users who are not admins.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ 权限不足：需要管理员权限")
			}
			return next(c)
		}
	}
}

// LoggingMiddleware logs every incoming update and counts commands.
func LoggingMiddleware(rec *metrics.Recorder) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			chat := c.Chat()

			logEvent := log.Debug()
			if sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			logEvent.
				Str("text", c.Text()).
				Msg("Received message")

			if cmd := commandName(c.Text()); cmd != "" {
				rec.RecordCommand(cmd)
			}
			return next(c)
		}
	}
}

// commandName returns "/score" for "/score@unobot 1 2", or "" for plain text.
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}

// RecoveryMiddleware recovers from panics in handlers.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("text", c.Text()).
						Msg("Recovered from panic in handler")
					err = c.Reply("❌ 发生内部错误，请稍后重试")
				}
			}()
			return next(c)
		}
	}
}

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is how long an idle user entry is kept.
	maxIdleAge = 10 * time.Minute
)

type userEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter hands out one token bucket per user and prunes idle ones inline.
type UserRateLimiter struct {
	mu    sync.Mutex
	users map[int64]*userEntry
	r     rate.Limit
	b     int
	now   func() time.Time
}

// NewUserRateLimiter creates a limiter allowing perSecond commands with bursts of burst.
func NewUserRateLimiter(perSecond float64, burst int) *UserRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &UserRateLimiter{
		users: make(map[int64]*userEntry),
		r:     rate.Limit(perSecond),
		b:     burst,
		now:   time.Now,
	}
}

// Allow reports whether userID may run a command now.
func (l *UserRateLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.users) > cleanupThreshold {
		cutoff := now.Add(-maxIdleAge)
		for id, e := range l.users {
			if e.lastSeen.Before(cutoff) {
				delete(l.users, id)
			}
		}
	}

	e, ok := l.users[userID]
	if !ok {
		e = &userEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.users[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked users.
func (l *UserRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

// RateLimitMiddleware drops commands from users over their rate. The first rejected
// command in a burst gets a reply; the rest are ignored silently.
func RateLimitMiddleware(limiter *UserRateLimiter, rec *metrics.Recorder) tele.MiddlewareFunc {
	var warned sync.Map
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}
			if limiter.Allow(sender.ID) {
				warned.Delete(sender.ID)
				return next(c)
			}

			rec.RecordRateLimited()
			log.Debug().Int64("user_id", sender.ID).Msg("Rate limited")
			if _, seen := warned.LoadOrStore(sender.ID, true); seen {
				return nil
			}
			return c.Reply("⏳ 操作太频繁，请稍后再试")
		}
	}
}
