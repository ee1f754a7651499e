// Package engine turns game records into aggregated, classified and ranked views.
//
// Every function here is pure: it reads its arguments, allocates its result and never
// mutates its input. Nothing returns an error; empty inputs produce empty or zero views.
// Scoring is inverted: the lowest score wins and zero is the best possible score.
package engine

import "uno-score-bot/internal/model"

// SelectForYear returns the records dated in year, dropping open games when excludeOpen
// is set. Input order is preserved; callers apply their own ordering.
func SelectForYear(records []model.GameRecord, year int, excludeOpen bool) []model.GameRecord {
	return selectWhere(records, excludeOpen, func(g *model.GameRecord) bool {
		return g.Date.Year() == year
	})
}

// SelectForDay returns the records dated on day, dropping open games when excludeOpen
// is set.
func SelectForDay(records []model.GameRecord, day model.Date, excludeOpen bool) []model.GameRecord {
	return selectWhere(records, excludeOpen, func(g *model.GameRecord) bool {
		return g.Date == day
	})
}

// Scored returns the records that count towards aggregation, i.e. the non-open ones.
func Scored(records []model.GameRecord) []model.GameRecord {
	return selectWhere(records, true, func(*model.GameRecord) bool { return true })
}

func selectWhere(records []model.GameRecord, excludeOpen bool, keep func(*model.GameRecord) bool) []model.GameRecord {
	out := make([]model.GameRecord, 0, len(records))
	for i := range records {
		g := &records[i]
		if excludeOpen && g.IsOpen {
			continue
		}
		if keep(g) {
			out = append(out, *g)
		}
	}
	return out
}

// Days returns the distinct dates present in records, ascending.
func Days(records []model.GameRecord) []model.Date {
	seen := make(map[model.Date]struct{}, len(records))
	var days []model.Date
	for _, g := range records {
		if _, ok := seen[g.Date]; ok {
			continue
		}
		seen[g.Date] = struct{}{}
		days = append(days, g.Date)
	}
	sortDates(days)
	return days
}

// GroupByDay buckets records by date. Records keep their relative input order.
func GroupByDay(records []model.GameRecord) map[model.Date][]model.GameRecord {
	groups := make(map[model.Date][]model.GameRecord)
	for _, g := range records {
		groups[g.Date] = append(groups[g.Date], g)
	}
	return groups
}
