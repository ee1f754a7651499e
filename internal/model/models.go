// Package model defines the data models for the UNO score bot.
package model

import (
	"fmt"
	"time"
)

// MinPlayers is the smallest roster a scorebook may have.
const MinPlayers = 2

// Duration is the elapsed time of one game. It is display-only.
type Duration struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// String formats the duration as m:ss.
func (d Duration) String() string {
	return fmt.Sprintf("%d:%02d", d.Minutes, d.Seconds)
}

// GameRecord is one scored game.
// Lower scores are better; a score of zero wins.
type GameRecord struct {
	ID         string         `json:"id"`
	Seq        int64          `json:"seq,omitempty"`
	Date       Date           `json:"date"`
	Type       Variant        `json:"type"`
	IsOpen     bool           `json:"isOpen,omitempty"`
	Scores     map[string]int `json:"scores"`
	Duration   *Duration      `json:"duration,omitempty"`
	TrueWinner string         `json:"trueWinner,omitempty"`
}

// Score returns the player's score, or 0 if the record has no entry for them.
func (g *GameRecord) Score(player string) int {
	return g.Scores[player]
}

// Clone returns a deep copy of the record.
func (g GameRecord) Clone() GameRecord {
	c := g
	c.Scores = make(map[string]int, len(g.Scores))
	for k, v := range g.Scores {
		c.Scores[k] = v
	}
	if g.Duration != nil {
		d := *g.Duration
		c.Duration = &d
	}
	return c
}

// Snapshot is the whole persisted dataset of one scorebook.
// Field names follow the JSON export format of the original web app,
// so files exported there can be imported as-is.
type Snapshot struct {
	Players          []string            `json:"players"`
	Games            []GameRecord        `json:"games"`
	Fund             int64               `json:"fund"`
	LastGameType     Variant             `json:"lastGameType,omitempty"`
	RankingOverrides map[string][]string `json:"rankingOverrides,omitempty"`
	DailyWinners     map[string]string   `json:"dailyWinners,omitempty"`
	YearlyWinners    map[string]string   `json:"yearlyWinner,omitempty"`
	UpdatedAt        time.Time           `json:"updatedAt"`
	Version          uint64              `json:"version,omitempty"`
}

// Overrides returns the snapshot's override maps as an Overrides value.
func (s *Snapshot) Overrides() Overrides {
	return Overrides{
		Ranking:       s.RankingOverrides,
		DailyWinners:  s.DailyWinners,
		YearlyWinners: s.YearlyWinners,
	}.Clone()
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Players = append([]string(nil), s.Players...)
	c.Games = make([]GameRecord, len(s.Games))
	for i, g := range s.Games {
		c.Games[i] = g.Clone()
	}
	o := s.Overrides()
	c.RankingOverrides = o.Ranking
	c.DailyWinners = o.DailyWinners
	c.YearlyWinners = o.YearlyWinners
	return c
}
