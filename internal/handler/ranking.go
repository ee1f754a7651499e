package handler

import (
	"context"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"uno-score-bot/internal/pkg/dateparse"
	"uno-score-bot/internal/service"
)

// RankingHandler handles ranking and statistics commands.
type RankingHandler struct {
	ranking *service.RankingService
	dates   *dateparse.Parser
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(ranking *service.RankingService, dates *dateparse.Parser) *RankingHandler {
	return &RankingHandler{ranking: ranking, dates: dates}
}

// HandleRecent handles the /recent command.
// Format: /recent [n]
func (h *RankingHandler) HandleRecent(c tele.Context) error {
	n := 0
	if args := c.Args(); len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return c.Reply("❌ 数量必须是正整数")
		}
		n = v
	}
	v, err := h.ranking.Recent(context.Background(), bookID(c), n)
	if err != nil {
		return reply(c, "", err)
	}
	return c.Reply(renderRecent(v))
}

// HandleTable handles the /table command.
// Format: /table [year]
func (h *RankingHandler) HandleTable(c tele.Context) error {
	year, err := parseYear(c.Args(), h.ranking.CurrentYear())
	if err != nil {
		return c.Reply(err.Error())
	}
	r, err := h.ranking.YearReport(context.Background(), bookID(c), year)
	if err != nil {
		return reply(c, "", err)
	}
	return c.Reply(renderYearReport(r))
}

// HandleDaily handles the /daily command. Without a date it shows the latest day played
// this year.
// Format: /daily [date]
func (h *RankingHandler) HandleDaily(c tele.Context) error {
	day, err := parseDay(c.Args(), h.dates)
	if err != nil {
		return c.Reply(err.Error())
	}
	v, err := h.ranking.DailyRanking(context.Background(), bookID(c), h.ranking.CurrentYear(), day)
	if err != nil {
		return reply(c, "", err)
	}
	title := "📅 日排行"
	if v.Day != nil {
		title = fmt.Sprintf("📅 %s 排行", v.Day)
	}
	return c.Reply(renderRanking(title, v))
}

// HandleYearly handles the /yearly command.
// Format: /yearly [year]
func (h *RankingHandler) HandleYearly(c tele.Context) error {
	year, err := parseYear(c.Args(), h.ranking.CurrentYear())
	if err != nil {
		return c.Reply(err.Error())
	}
	v, err := h.ranking.YearlyRanking(context.Background(), bookID(c), year)
	if err != nil {
		return reply(c, "", err)
	}
	return c.Reply(renderRanking(fmt.Sprintf("🏆 %d 年排行", year), v))
}

// HandleSummary handles the /summary command.
// Format: /summary [year]
func (h *RankingHandler) HandleSummary(c tele.Context) error {
	year, err := parseYear(c.Args(), h.ranking.CurrentYear())
	if err != nil {
		return c.Reply(err.Error())
	}
	v, err := h.ranking.Summary(context.Background(), bookID(c), year)
	if err != nil {
		return reply(c, "", err)
	}
	return c.Reply(renderSummary(v))
}

// HandleWinLoss handles the /winloss command. Without a date it counts the current year.
// Format: /winloss [date]
func (h *RankingHandler) HandleWinLoss(c tele.Context) error {
	day, err := parseDay(c.Args(), h.dates)
	if err != nil {
		return c.Reply(err.Error())
	}
	v, err := h.ranking.WinLoss(context.Background(), bookID(c), h.ranking.CurrentYear(), day)
	if err != nil {
		return reply(c, "", err)
	}
	return c.Reply(renderWinLoss(v))
}
