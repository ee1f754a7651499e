package engine

import (
	"sort"

	"uno-score-bot/internal/model"
)

// Standing is one row of a ranking. Position is 1-based.
type Standing struct {
	Position int    `json:"position"`
	Player   string `json:"player"`
	Total    int    `json:"total"`
}

// Rank sorts the roster ascending by total, lowest first.
//
// The sort is stable and starts from roster order. Within a group of equal totals the
// players named in override are reordered by their override position, taking the slots
// the listed players already held; unlisted players keep their place, so a pair with one
// side missing from override compares equal. Ties are resolved the same way whatever
// value they are at. Override names that are not on the roster are ignored.
func Rank(totals Totals, roster []string, override []string) []Standing {
	pos := make(map[string]int, len(override))
	for i, p := range override {
		if _, dup := pos[p]; !dup {
			pos[p] = i
		}
	}

	out := make([]Standing, len(roster))
	for i, p := range roster {
		out[i] = Standing{Player: p, Total: totals[p]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total < out[j].Total })

	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && out[end].Total == out[start].Total {
			end++
		}
		applyOverride(out[start:end], pos)
		start = end
	}

	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// applyOverride reorders the listed members of one tie group in place.
func applyOverride(group []Standing, pos map[string]int) {
	if len(group) < 2 || len(pos) == 0 {
		return
	}
	var slots []int
	var listed []Standing
	for i, s := range group {
		if _, ok := pos[s.Player]; ok {
			slots = append(slots, i)
			listed = append(listed, s)
		}
	}
	sort.SliceStable(listed, func(i, j int) bool { return pos[listed[i].Player] < pos[listed[j].Player] })
	for k, i := range slots {
		group[i] = listed[k]
	}
}

// RankScope ranks totals using the ranking override stored for key.
func RankScope(totals Totals, roster []string, overrides model.Overrides, key model.ScopeKey) []Standing {
	return Rank(totals, roster, overrides.RankingFor(key))
}

// Tied reports whether the standing at i shares its total with a neighbour.
// The ranking editor uses it to flag entries that can be reordered.
func Tied(standings []Standing, i int) bool {
	if i < 0 || i >= len(standings) {
		return false
	}
	t := standings[i].Total
	return (i > 0 && standings[i-1].Total == t) || (i+1 < len(standings) && standings[i+1].Total == t)
}

// Order returns the player names of standings in ranked order. It is the list stored by
// the ranking editor when an operator saves a manual order.
func Order(standings []Standing) []string {
	names := make([]string, len(standings))
	for i, s := range standings {
		names[i] = s.Player
	}
	return names
}
