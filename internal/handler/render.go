package handler

import (
	"fmt"
	"strings"

	"uno-score-bot/internal/engine"
	"uno-score-bot/internal/model"
	"uno-score-bot/internal/service"
)

const divider = "━━━━━━━━━━━━━━━"

var medals = []string{"🥇", "🥈", "🥉"}

func markSymbol(m engine.Mark) string {
	switch m {
	case engine.MarkWinner:
		return "👑"
	case engine.MarkTrueWinner:
		return "👑✓"
	case engine.MarkChoiceNeeded:
		return "👑?"
	case engine.MarkLoser:
		return "💀"
	}
	return ""
}

func rankLabel(pos int) string {
	if pos >= 1 && pos <= len(medals) {
		return medals[pos-1]
	}
	return fmt.Sprintf("%d.", pos)
}

// renderRanking formats a daily or yearly ranking.
func renderRanking(title string, v *service.RankingView) string {
	var sb strings.Builder
	sb.WriteString(title + "\n" + divider + "\n")
	if v.Games == 0 {
		sb.WriteString("暂无数据\n" + divider)
		return sb.String()
	}
	for i, s := range v.Standings {
		line := fmt.Sprintf("%s %s: %d", rankLabel(s.Position), s.Player, s.Total)
		if sym := markSymbol(v.Marks[s.Player]); sym != "" {
			line += " " + sym
		}
		if v.Tied[i] {
			line += " (同分)"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(divider + "\n")
	fmt.Fprintf(&sb, "🎮 %d 局", v.Games)
	if hasChoiceNeeded(v.Marks) {
		sb.WriteString("\n👑? 多人 0 分，需要指定真正的赢家")
	}
	return sb.String()
}

func hasChoiceNeeded(marks map[string]engine.Mark) bool {
	for _, m := range marks {
		if m == engine.MarkChoiceNeeded {
			return true
		}
	}
	return false
}

func renderDuration(d *model.Duration) string {
	if d == nil {
		return ""
	}
	return " ⏱" + d.String()
}

// renderRecordRow formats one game on a single line.
func renderRecordRow(r service.RecordRow, players []string) string {
	g := r.Record
	parts := make([]string, 0, len(players))
	for _, p := range players {
		part := fmt.Sprintf("%s %d", p, g.Score(p))
		if sym := markSymbol(r.Marks[p]); sym != "" {
			part += sym
		}
		parts = append(parts, part)
	}
	line := fmt.Sprintf("%s [%s] %s", g.Date.Short(), g.Type, strings.Join(parts, " / "))
	if g.IsOpen {
		line += " 🔓"
	}
	line += renderDuration(g.Duration)
	return line + "\n   id: " + g.ID
}

// renderRecent formats the newest games.
func renderRecent(v *service.RecentView) string {
	var sb strings.Builder
	sb.WriteString("🕒 最近对局\n" + divider + "\n")
	if len(v.Rows) == 0 {
		sb.WriteString("暂无数据\n" + divider)
		return sb.String()
	}
	for _, r := range v.Rows {
		sb.WriteString(renderRecordRow(r, v.Players) + "\n")
	}
	sb.WriteString(divider)
	return sb.String()
}

// renderYearReport formats the per-day table of a year.
func renderYearReport(r *service.YearReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %d 年成绩表\n%s\n", r.Year, divider)
	if r.Games == 0 {
		sb.WriteString("暂无数据\n" + divider)
		return sb.String()
	}
	for _, d := range r.Days {
		parts := make([]string, 0, len(r.Players))
		for _, p := range r.Players {
			parts = append(parts, fmt.Sprintf("%s %d%s", p, d.Totals[p], markSymbol(d.Marks[p])))
		}
		fmt.Fprintf(&sb, "%s (%d局) %s\n", d.Day.Short(), d.Games, strings.Join(parts, " / "))
	}
	sb.WriteString(divider + "\n累计: ")
	parts := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		parts = append(parts, fmt.Sprintf("%s %d%s", p, r.Totals[p], markSymbol(r.Marks[p])))
	}
	sb.WriteString(strings.Join(parts, " / "))
	fmt.Fprintf(&sb, "\n🎮 %d 局", r.Games)
	if r.Fund > 0 {
		fmt.Fprintf(&sb, "\n💰 基金: %d", r.Fund)
	}
	return sb.String()
}

func joinCounts(counts []engine.PlayerCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s(%d)", c.Player, c.Count))
	}
	return strings.Join(parts, ", ")
}

// renderSummary formats the statistics panel.
func renderSummary(v *service.SummaryView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %d 年统计\n%s\n", v.Year, divider)
	if v.Games == 0 {
		sb.WriteString("暂无数据\n" + divider)
		return sb.String()
	}
	fmt.Fprintf(&sb, "🎮 对局数: %d\n", v.Games)
	fmt.Fprintf(&sb, "🏆 第一: %s\n", strings.Join(v.First, ", "))
	fmt.Fprintf(&sb, "😢 最后: %s\n", strings.Join(v.Last, ", "))
	fmt.Fprintf(&sb, "👑 最多胜: %s\n", joinCounts(v.MostWins))
	fmt.Fprintf(&sb, "💀 最多负: %s\n", joinCounts(v.MostLosses))
	fmt.Fprintf(&sb, "📈 平均分: %.1f\n", v.Average)
	sb.WriteString(divider)
	return sb.String()
}

// renderWinLoss formats win and loss counts.
func renderWinLoss(v *service.WinLossView) string {
	var sb strings.Builder
	if v.Day != nil {
		fmt.Fprintf(&sb, "⚔️ %s 胜负\n", v.Day)
	} else {
		fmt.Fprintf(&sb, "⚔️ %d 年胜负\n", v.Year)
	}
	sb.WriteString(divider + "\n")
	sb.WriteString("胜: " + joinCounts(v.Wins) + "\n")
	sb.WriteString("负: " + joinCounts(v.Losses) + "\n")
	sb.WriteString(divider)
	return sb.String()
}

// renderPlayers formats the roster.
func renderPlayers(players []string) string {
	var sb strings.Builder
	sb.WriteString("👥 玩家\n" + divider + "\n")
	for i, p := range players {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}
	sb.WriteString(divider)
	return sb.String()
}

// renderRecorded confirms a newly stored game.
func renderRecorded(g model.GameRecord, players []string) string {
	o := engine.Classify(g, players)
	row := service.RecordRow{Record: g, Marks: engine.RecordMarks(g, players)}
	msg := "✅ 已记录\n\n" + renderRecordRow(row, players)
	if !g.IsOpen && o.ZeroTie() {
		msg += fmt.Sprintf("\n\n👑? %s 同为 0 分，点击按钮或使用 /winner %s <玩家> 指定赢家",
			strings.Join(o.ZeroScorers, "、"), g.ID)
	}
	return msg
}
