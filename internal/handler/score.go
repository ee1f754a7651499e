// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"uno-score-bot/internal/model"
	"uno-score-bot/internal/pkg/dateparse"
	"uno-score-bot/internal/pkg/lock"
	"uno-score-bot/internal/scorebook"
	"uno-score-bot/internal/service"
)

const syncWarning = "\n\n⚠️ 远程数据库不可用，本次修改只保存在本地"

// errorText maps domain errors to a reply.
func errorText(err error) string {
	switch {
	case errors.Is(err, scorebook.ErrUnknownPlayer):
		return "❌ 玩家不存在，使用 /players 查看名单"
	case errors.Is(err, scorebook.ErrDuplicatePlayer):
		return "❌ 玩家已存在"
	case errors.Is(err, scorebook.ErrEmptyName):
		return "❌ 名字不能为空"
	case errors.Is(err, scorebook.ErrRosterTooSmall):
		return fmt.Sprintf("❌ 至少需要 %d 名玩家", model.MinPlayers)
	case errors.Is(err, scorebook.ErrNoScore):
		return "❌ 至少要有一名玩家得分大于 0"
	case errors.Is(err, scorebook.ErrNegativeScore):
		return "❌ 分数不能为负数"
	case errors.Is(err, scorebook.ErrGameNotFound):
		return "❌ 对局不存在，使用 /recent 查看 id"
	case errors.Is(err, scorebook.ErrNegativeFund):
		return "❌ 基金不能为负数"
	case errors.Is(err, service.ErrScoreCount):
		return "❌ 分数个数与玩家人数不一致，使用 /players 查看顺序"
	case errors.Is(err, service.ErrNotTied):
		return "❌ 该对局没有并列零分"
	case errors.Is(err, service.ErrNothingToImport):
		return "❌ 文件中没有可导入的对局"
	case errors.Is(err, lock.ErrLockTimeout):
		return "⏳ 记分本正忙，请稍后重试"
	}
	return "❌ 操作失败，请稍后重试"
}

// reply answers with msg, or with the error text. A sync warning still counts as success.
func reply(c tele.Context, msg string, err error, opts ...interface{}) error {
	if err != nil && !service.IsSyncWarning(err) {
		log.Debug().Err(err).Str("text", c.Text()).Msg("Command failed")
		return c.Reply(errorText(err))
	}
	if err != nil {
		msg += syncWarning
	}
	return c.Reply(msg, opts...)
}

func bookID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

// ScoreHandler handles commands that change a scorebook.
type ScoreHandler struct {
	scores *service.ScoreService
	dates  *dateparse.Parser
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(scores *service.ScoreService, dates *dateparse.Parser) *ScoreHandler {
	return &ScoreHandler{scores: scores, dates: dates}
}

// HandlePlayers handles the /players command.
func (h *ScoreHandler) HandlePlayers(c tele.Context) error {
	b, err := h.scores.Load(context.Background(), bookID(c))
	if err != nil {
		return reply(c, "", err)
	}
	return c.Reply(renderPlayers(b.Players()))
}

// HandleAddPlayer handles the /addplayer command.
// Format: /addplayer <name>
func (h *ScoreHandler) HandleAddPlayer(c tele.Context) error {
	name := strings.TrimSpace(c.Message().Payload)
	if name == "" {
		return c.Reply("❌ 格式: /addplayer <名字>")
	}
	b, err := h.scores.AddPlayer(context.Background(), bookID(c), name)
	if b == nil {
		return reply(c, "", err)
	}
	return reply(c, "✅ 已添加 "+name+"\n\n"+renderPlayers(b.Players()), err)
}

// HandleRemovePlayer handles the /removeplayer command.
// Format: /removeplayer <name>
func (h *ScoreHandler) HandleRemovePlayer(c tele.Context) error {
	name := strings.TrimSpace(c.Message().Payload)
	if name == "" {
		return c.Reply("❌ 格式: /removeplayer <名字>")
	}
	b, err := h.scores.RemovePlayer(context.Background(), bookID(c), name)
	if b == nil {
		return reply(c, "", err)
	}
	return reply(c, "✅ 已移除 "+name+"\n\n"+renderPlayers(b.Players()), err)
}

// HandleScore handles the /score command.
// Format: /score [date] [type] s1 s2 ...
func (h *ScoreHandler) HandleScore(c tele.Context) error {
	return h.record(c, false)
}

// HandleOpen handles the /open command. Open games are stored but never counted.
func (h *ScoreHandler) HandleOpen(c tele.Context) error {
	return h.record(c, true)
}

func (h *ScoreHandler) record(c tele.Context, open bool) error {
	ctx := context.Background()
	args, err := parseScoreArgs(c.Args(), h.dates)
	if err != nil {
		return c.Reply(err.Error())
	}

	id := bookID(c)
	rec, err := h.scores.RecordScores(ctx, id, args.Day, args.Variant, open, args.Scores)
	if err != nil && !service.IsSyncWarning(err) {
		return reply(c, "", err)
	}
	b, loadErr := h.scores.Load(ctx, id)
	if loadErr != nil {
		return reply(c, "✅ 已记录 "+rec.ID, err)
	}
	return reply(c, renderRecorded(rec, b.Players()), err, buildRecordPanel(rec, b.Players()))
}

// HandleWinner handles the /winner command.
// Format: /winner <game-id> <player>
func (h *ScoreHandler) HandleWinner(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Reply("❌ 格式: /winner <对局id> <玩家>")
	}
	rec, err := h.scores.ToggleTrueWinner(context.Background(), bookID(c), args[0], args[1])
	msg := "✅ 已取消指定赢家"
	if rec.TrueWinner != "" {
		msg = "✅ 真正的赢家: " + rec.TrueWinner
	}
	return reply(c, msg, err)
}

// HandleDayWinner handles the /daywinner command.
// Format: /daywinner <date> <player>
func (h *ScoreHandler) HandleDayWinner(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Reply("❌ 格式: /daywinner <日期> <玩家>")
	}
	day, err := h.dates.Parse(args[0])
	if err != nil {
		return c.Reply(errBadDate.Error())
	}
	w, err := h.scores.ToggleDailyWinner(context.Background(), bookID(c), day, args[1])
	return reply(c, winnerText(day.String(), w), err)
}

// HandleYearWinner handles the /yearwinner command.
// Format: /yearwinner <year> <player>
func (h *ScoreHandler) HandleYearWinner(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Reply("❌ 格式: /yearwinner <年份> <玩家>")
	}
	year, err := parseYear(args[:1], 0)
	if err != nil {
		return c.Reply(err.Error())
	}
	w, err := h.scores.ToggleYearlyWinner(context.Background(), bookID(c), year, args[1])
	return reply(c, winnerText(strconv.Itoa(year), w), err)
}

func winnerText(period, winner string) string {
	if winner == "" {
		return "✅ " + period + " 已取消指定赢家"
	}
	return "✅ " + period + " 的赢家: " + winner
}

// HandleOrder handles the /order command.
// Format: /order daily|yearly <period> <p1> <p2> ...; no names clears the order.
func (h *ScoreHandler) HandleOrder(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Reply("❌ 格式: /order daily|yearly <日期或年份> <玩家1> <玩家2> ...")
	}
	key, err := parseScope(args[0], args[1], h.dates)
	if err != nil {
		return c.Reply(err.Error())
	}
	order := args[2:]
	err = h.scores.SetRankingOverride(context.Background(), bookID(c), key, order)
	if len(order) == 0 {
		return reply(c, "✅ 已清除 "+key.String()+" 的排序", err)
	}
	return reply(c, "✅ "+key.String()+" 同分排序: "+strings.Join(order, " > "), err)
}

// HandleType handles the /type command.
// Format: /type <game-id>
func (h *ScoreHandler) HandleType(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ 格式: /type <对局id>")
	}
	rec, err := h.scores.CycleType(context.Background(), bookID(c), args[0])
	return reply(c, "✅ 类型已改为 "+string(rec.Type), err)
}

// HandleDelete handles the /delete command.
// Format: /delete <game-id>
func (h *ScoreHandler) HandleDelete(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ 格式: /delete <对局id>")
	}
	err := h.scores.DeleteGame(context.Background(), bookID(c), args[0])
	return reply(c, "✅ 已删除对局", err)
}

// HandleDeleteDate handles the /deletedate command.
// Format: /deletedate <date>
func (h *ScoreHandler) HandleDeleteDate(c tele.Context) error {
	day, err := parseDay(c.Args(), h.dates)
	if err != nil {
		return c.Reply(err.Error())
	}
	if day == nil {
		return c.Reply("❌ 格式: /deletedate <日期>")
	}
	n, err := h.scores.DeleteByDate(context.Background(), bookID(c), *day)
	return reply(c, fmt.Sprintf("✅ 已删除 %s 的 %d 局", day, n), err)
}

// HandleDeleteYear handles the /deleteyear command.
// Format: /deleteyear <year>
func (h *ScoreHandler) HandleDeleteYear(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ 格式: /deleteyear <年份>")
	}
	year, err := parseYear(args, 0)
	if err != nil {
		return c.Reply(err.Error())
	}
	n, err := h.scores.DeleteByYear(context.Background(), bookID(c), year)
	return reply(c, fmt.Sprintf("✅ 已删除 %d 年的 %d 局", year, n), err)
}

// HandleClear handles the /clear command.
func (h *ScoreHandler) HandleClear(c tele.Context) error {
	if len(c.Args()) != 1 || c.Args()[0] != "confirm" {
		return c.Reply("⚠️ 这将删除全部对局，确认请发送 /clear confirm")
	}
	n, err := h.scores.ClearGames(context.Background(), bookID(c))
	return reply(c, fmt.Sprintf("✅ 已删除全部 %d 局", n), err)
}

// HandleFund handles the /fund command.
// Format: /fund shows the balance, /fund <amount> sets it.
func (h *ScoreHandler) HandleFund(c tele.Context) error {
	ctx := context.Background()
	args := c.Args()
	if len(args) == 0 {
		b, err := h.scores.Load(ctx, bookID(c))
		if err != nil {
			return reply(c, "", err)
		}
		return c.Reply(fmt.Sprintf("💰 基金: %d", b.Fund()))
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply("❌ 金额格式错误")
	}
	err = h.scores.SetFund(ctx, bookID(c), amount)
	return reply(c, fmt.Sprintf("✅ 基金已设为 %d", amount), err)
}
