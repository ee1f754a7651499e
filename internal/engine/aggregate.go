package engine

import "uno-score-bot/internal/model"

// Totals maps a player to a summed score.
type Totals map[string]int

// Sum returns the sum of all totals.
func (t Totals) Sum() int {
	sum := 0
	for _, v := range t {
		sum += v
	}
	return sum
}

// SumByPlayer sums each roster player's scores over records. Players missing from a
// record count as 0, and every roster player is present in the result even when
// records is empty. Use the record count, not the totals, to detect "no data".
func SumByPlayer(records []model.GameRecord, roster []string) Totals {
	totals := make(Totals, len(roster))
	for _, p := range roster {
		totals[p] = 0
	}
	for i := range records {
		for _, p := range roster {
			totals[p] += records[i].Score(p)
		}
	}
	return totals
}

// DayTotal is one row of the per-day summary.
type DayTotal struct {
	Day    model.Date
	Games  int
	Totals Totals
}

// DailyTotals returns per-day totals ascending by date. Open games are ignored and
// days with no scored game are omitted.
func DailyTotals(records []model.GameRecord, roster []string) []DayTotal {
	scored := Scored(records)
	groups := GroupByDay(scored)
	days := Days(scored)

	out := make([]DayTotal, 0, len(days))
	for _, day := range days {
		games := groups[day]
		out = append(out, DayTotal{
			Day:    day,
			Games:  len(games),
			Totals: SumByPlayer(games, roster),
		})
	}
	return out
}
