package engine

import (
	"sort"

	"uno-score-bot/internal/model"
)

// PlayerCount pairs a player with a counter value.
type PlayerCount struct {
	Player string `json:"player"`
	Count  int    `json:"count"`
}

// WinLossCounts holds per-player win and loss counters.
type WinLossCounts struct {
	Wins   map[string]int `json:"wins"`
	Losses map[string]int `json:"losses"`
}

// WinLoss counts per-record wins and losses. A player wins a record when their score is
// the record minimum and loses it when their score is the maximum and the maximum is
// above the minimum. Open records are skipped. Zero-tied players each count a win.
func WinLoss(records []model.GameRecord, roster []string) WinLossCounts {
	out := WinLossCounts{
		Wins:   make(map[string]int, len(roster)),
		Losses: make(map[string]int, len(roster)),
	}
	for _, p := range roster {
		out.Wins[p] = 0
		out.Losses[p] = 0
	}
	for _, g := range Scored(records) {
		o := Classify(g, roster)
		for _, p := range roster {
			s := g.Score(p)
			if s == o.Min {
				out.Wins[p]++
			}
			if s == o.Max && o.Max != o.Min {
				out.Losses[p]++
			}
		}
	}
	return out
}

// Summary is the year statistics panel.
type Summary struct {
	Games      int           `json:"games"`
	Totals     Totals        `json:"totals"`
	First      []string      `json:"first"`
	Last       []string      `json:"last"`
	MostWins   []PlayerCount `json:"mostWins"`
	MostLosses []PlayerCount `json:"mostLosses"`
	Average    float64       `json:"average"`
}

// Summarize computes the statistics panel over the scored records. It returns a zero
// Summary with Games == 0 when nothing is scored or the roster is empty.
func Summarize(records []model.GameRecord, roster []string) Summary {
	scored := Scored(records)
	if len(scored) == 0 || len(roster) == 0 {
		return Summary{Totals: SumByPlayer(nil, roster)}
	}

	totals := SumByPlayer(scored, roster)
	wl := WinLoss(scored, roster)

	o := ClassifyTotals(totals, roster)
	s := Summary{
		Games:   len(scored),
		Totals:  totals,
		Average: float64(totals.Sum()) / float64(len(roster)) / float64(len(scored)),
	}
	for _, p := range roster {
		if totals[p] == o.Min {
			s.First = append(s.First, p)
		}
		if totals[p] == o.Max {
			s.Last = append(s.Last, p)
		}
	}
	s.MostWins = topCounts(wl.Wins, roster)
	s.MostLosses = topCounts(wl.Losses, roster)
	return s
}

// topCounts returns every player sharing the highest count, in roster order.
func topCounts(counts map[string]int, roster []string) []PlayerCount {
	best := 0
	for i, p := range roster {
		if i == 0 || counts[p] > best {
			best = counts[p]
		}
	}
	var out []PlayerCount
	for _, p := range roster {
		if counts[p] == best {
			out = append(out, PlayerCount{Player: p, Count: best})
		}
	}
	return out
}

// SeriesPoint is one day of a cumulative score series.
type SeriesPoint struct {
	Day    model.Date `json:"day"`
	Totals Totals     `json:"totals"`
}

// CumulativeSeries returns running totals per player after each scored day, ascending.
// This is the data behind the progress line chart.
func CumulativeSeries(records []model.GameRecord, roster []string) []SeriesPoint {
	daily := DailyTotals(records, roster)
	running := SumByPlayer(nil, roster)

	out := make([]SeriesPoint, 0, len(daily))
	for _, d := range daily {
		point := make(Totals, len(roster))
		for _, p := range roster {
			running[p] += d.Totals[p]
			point[p] = running[p]
		}
		out = append(out, SeriesPoint{Day: d.Day, Totals: point})
	}
	return out
}

// SortedCounts returns counts as a slice ordered by count descending, then roster order.
func SortedCounts(counts map[string]int, roster []string) []PlayerCount {
	out := make([]PlayerCount, 0, len(roster))
	for _, p := range roster {
		out = append(out, PlayerCount{Player: p, Count: counts[p]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
