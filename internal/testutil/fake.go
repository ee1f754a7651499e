// Package testutil generates realistic rosters and game records for tests.
package testutil

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"uno-score-bot/internal/model"
)

// Faker wraps a seeded gofakeit generator.
type Faker struct {
	f *gofakeit.Faker
}

// NewFaker returns a deterministic generator for seed.
func NewFaker(seed uint64) *Faker {
	return &Faker{f: gofakeit.New(seed)}
}

// Roster returns n distinct first names.
func (g *Faker) Roster(n int) []string {
	seen := make(map[string]struct{}, n)
	roster := make([]string, 0, n)
	for len(roster) < n {
		name := g.f.FirstName()
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		roster = append(roster, name)
	}
	return roster
}

// Records returns n records for roster dated within year. Each record has at least one
// positive score; roughly one in ten is open.
func (g *Faker) Records(roster []string, year, n int) []model.GameRecord {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	out := make([]model.GameRecord, 0, n)
	for i := 0; i < n; i++ {
		scores := make(map[string]int, len(roster))
		for _, p := range roster {
			if g.f.Bool() {
				scores[p] = 0
			} else {
				scores[p] = g.f.IntRange(1, 300)
			}
		}
		scores[roster[g.f.IntRange(0, len(roster)-1)]] += 1 + g.f.IntRange(0, 50)

		out = append(out, model.GameRecord{
			ID:     g.f.UUID(),
			Seq:    int64(i + 1),
			Date:   model.DateOf(g.f.DateRange(start, end)),
			Type:   model.Variants()[g.f.IntRange(0, len(model.Variants())-1)],
			IsOpen: g.f.IntRange(0, 9) == 0,
			Scores: scores,
		})
	}
	return out
}

// Record builds a scored record with fixed fields, for table-driven tests.
func Record(id string, seq int64, day string, scores map[string]int) model.GameRecord {
	return model.GameRecord{
		ID:     id,
		Seq:    seq,
		Date:   model.MustParseDate(day),
		Type:   model.DefaultVariant,
		Scores: scores,
	}
}
