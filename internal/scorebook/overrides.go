package scorebook

import (
	"strconv"

	"uno-score-bot/internal/model"
)

// ToggleDailyWinner designates player as the winner of day's zero-tie, or clears the
// designation if player already holds it. It returns the winner after the toggle.
func (b *Book) ToggleDailyWinner(day model.Date, player string) string {
	return b.toggle(b.overrides.DailyWinners, day.String(), player)
}

// ToggleYearlyWinner is ToggleDailyWinner for a year.
func (b *Book) ToggleYearlyWinner(year int, player string) string {
	return b.toggle(b.overrides.YearlyWinners, strconv.Itoa(year), player)
}

func (b *Book) toggle(m map[string]string, key, player string) string {
	if m[key] == player {
		delete(m, key)
	} else {
		m[key] = player
	}
	b.touch()
	return m[key]
}

// SetRankingOverride replaces the ranking order stored for key. An empty order clears
// the entry.
func (b *Book) SetRankingOverride(key model.ScopeKey, order []string) {
	if len(order) == 0 {
		delete(b.overrides.Ranking, key.String())
	} else {
		b.overrides.Ranking[key.String()] = append([]string(nil), order...)
	}
	b.touch()
}
