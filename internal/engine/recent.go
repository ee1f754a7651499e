package engine

import (
	"sort"

	"uno-score-bot/internal/model"
)

// MostRecent returns up to n records, newest first. Newest is decided by date, then by
// insertion sequence within a date. Open records are included.
func MostRecent(records []model.GameRecord, n int) []model.GameRecord {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	sorted := append([]model.GameRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Date.Compare(sorted[j].Date); c != 0 {
			return c > 0
		}
		return sorted[i].Seq > sorted[j].Seq
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// LatestDay returns the newest date among records.
func LatestDay(records []model.GameRecord) (model.Date, bool) {
	if len(records) == 0 {
		return model.Date{}, false
	}
	latest := records[0].Date
	for _, g := range records[1:] {
		if latest.Before(g.Date) {
			latest = g.Date
		}
	}
	return latest, true
}

// SortByDate orders records by date, then insertion sequence; descending when desc.
func SortByDate(records []model.GameRecord, desc bool) []model.GameRecord {
	sorted := append([]model.GameRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := sorted[i].Date.Compare(sorted[j].Date)
		if c == 0 {
			return sorted[i].Seq < sorted[j].Seq
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

func sortDates(days []model.Date) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}
