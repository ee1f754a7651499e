package model

import (
	"fmt"
	"strconv"
)

// ScopeKind namespaces override entries.
type ScopeKind string

const (
	ScopeDaily  ScopeKind = "daily"
	ScopeYearly ScopeKind = "yearly"
)

// ScopeKey identifies the period an override applies to.
type ScopeKey struct {
	Kind   ScopeKind
	Period string
}

// DailyScope returns the scope key for a day.
func DailyScope(day Date) ScopeKey {
	return ScopeKey{Kind: ScopeDaily, Period: day.String()}
}

// YearlyScope returns the scope key for a year.
func YearlyScope(year int) ScopeKey {
	return ScopeKey{Kind: ScopeYearly, Period: strconv.Itoa(year)}
}

// String renders the key as kind_period, e.g. daily_2025-01-01.
func (k ScopeKey) String() string {
	return fmt.Sprintf("%s_%s", k.Kind, k.Period)
}

// Overrides holds the manual tie-break directives of a scorebook.
// Entries are never expired; a stale entry has no effect until the same tie recurs.
type Overrides struct {
	Ranking       map[string][]string // scope key -> ordered player names
	DailyWinners  map[string]string   // yyyy-mm-dd -> player
	YearlyWinners map[string]string   // year -> player
}

// NewOverrides returns empty, writable override maps.
func NewOverrides() Overrides {
	return Overrides{
		Ranking:       make(map[string][]string),
		DailyWinners:  make(map[string]string),
		YearlyWinners: make(map[string]string),
	}
}

// RankingFor returns the ranking override for key, or nil.
func (o Overrides) RankingFor(key ScopeKey) []string {
	return o.Ranking[key.String()]
}

// DailyWinner returns the designated winner of a day's zero-tie.
func (o Overrides) DailyWinner(day Date) string {
	return o.DailyWinners[day.String()]
}

// YearlyWinner returns the designated winner of a year's zero-tie.
func (o Overrides) YearlyWinner(year int) string {
	return o.YearlyWinners[strconv.Itoa(year)]
}

// Clone returns a deep copy with all maps allocated.
func (o Overrides) Clone() Overrides {
	c := NewOverrides()
	for k, v := range o.Ranking {
		c.Ranking[k] = append([]string(nil), v...)
	}
	for k, v := range o.DailyWinners {
		c.DailyWinners[k] = v
	}
	for k, v := range o.YearlyWinners {
		c.YearlyWinners[k] = v
	}
	return c
}
