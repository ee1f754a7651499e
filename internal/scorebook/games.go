package scorebook

import (
	"fmt"

	"uno-score-bot/internal/model"
)

// Entry is a new game as typed in by a user.
type Entry struct {
	Date     model.Date
	Type     model.Variant
	IsOpen   bool
	Scores   map[string]int
	Duration *model.Duration
}

// RecordGame validates and appends a new game, returning the stored record.
// Every roster player gets an entry; missing ones are stored as 0. At least one score
// must be positive, otherwise nothing was entered.
func (b *Book) RecordGame(e Entry) (model.GameRecord, error) {
	if e.Date.IsZero() {
		return model.GameRecord{}, ErrInvalidDate
	}
	hasScore := false
	for name, s := range e.Scores {
		if !b.HasPlayer(name) {
			return model.GameRecord{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
		}
		if s < 0 {
			return model.GameRecord{}, ErrNegativeScore
		}
		if s > 0 {
			hasScore = true
		}
	}
	if !hasScore {
		return model.GameRecord{}, ErrNoScore
	}

	scores := make(map[string]int, len(b.players))
	for _, p := range b.players {
		scores[p] = e.Scores[p]
	}
	var dur *model.Duration
	if e.Duration != nil && (e.Duration.Minutes > 0 || e.Duration.Seconds > 0) {
		d := *e.Duration
		dur = &d
	}

	g := model.GameRecord{
		ID:       b.newID(),
		Seq:      b.takeSeq(),
		Date:     e.Date,
		Type:     e.Type.OrDefault(),
		IsOpen:   e.IsOpen,
		Scores:   scores,
		Duration: dur,
	}
	b.games = append(b.games, g)
	b.lastType = g.Type
	b.touch()
	return g.Clone(), nil
}

// ToggleTrueWinner designates player as the true winner of a zero-tied record, or
// clears the designation if player already holds it. It does not check that player
// is one of the tied zero-scorers.
func (b *Book) ToggleTrueWinner(id, player string) (model.GameRecord, error) {
	i := b.indexOf(id)
	if i < 0 {
		return model.GameRecord{}, ErrGameNotFound
	}
	g := &b.games[i]
	if g.TrueWinner == player {
		g.TrueWinner = ""
	} else {
		g.TrueWinner = player
	}
	b.touch()
	return g.Clone(), nil
}

// CycleType moves a record to the next variant.
func (b *Book) CycleType(id string) (model.GameRecord, error) {
	i := b.indexOf(id)
	if i < 0 {
		return model.GameRecord{}, ErrGameNotFound
	}
	b.games[i].Type = b.games[i].Type.Next()
	b.touch()
	return b.games[i].Clone(), nil
}

// DeleteGame removes one record.
func (b *Book) DeleteGame(id string) error {
	if b.removeWhere(func(g *model.GameRecord) bool { return g.ID == id }) == 0 {
		return ErrGameNotFound
	}
	return nil
}

// DeleteByDate removes every record on day and returns how many were removed.
func (b *Book) DeleteByDate(day model.Date) int {
	return b.removeWhere(func(g *model.GameRecord) bool { return g.Date == day })
}

// DeleteByYear removes every record in year and returns how many were removed.
func (b *Book) DeleteByYear(year int) int {
	return b.removeWhere(func(g *model.GameRecord) bool { return g.Date.Year() == year })
}

// ClearGames removes every record and returns how many were removed.
func (b *Book) ClearGames() int {
	return b.removeWhere(func(*model.GameRecord) bool { return true })
}

func (b *Book) removeWhere(match func(*model.GameRecord) bool) int {
	kept := b.games[:0]
	removed := 0
	for i := range b.games {
		if match(&b.games[i]) {
			removed++
			continue
		}
		kept = append(kept, b.games[i])
	}
	b.games = kept
	if removed > 0 {
		b.touch()
	}
	return removed
}

// AppendRecords adds imported records as new games. Each gets the next sequence
// number; ids are kept as given, so a tabular import that minted fresh ids is never
// deduplicated against an earlier one.
func (b *Book) AppendRecords(records []model.GameRecord) int {
	for _, r := range records {
		g := r.Clone()
		if g.ID == "" {
			g.ID = b.newID()
		}
		g.Seq = b.takeSeq()
		b.games = append(b.games, g)
	}
	if len(records) > 0 {
		b.touch()
	}
	return len(records)
}

// MergeSnapshot imports a JSON snapshot: the roster is replaced when the snapshot has a
// valid one, and records whose id is already present are skipped. It returns the
// number of records added.
func (b *Book) MergeSnapshot(s model.Snapshot) (int, error) {
	if len(s.Players) > 0 {
		roster, err := normaliseRoster(s.Players)
		if err != nil {
			return 0, err
		}
		b.players = roster
		b.touch()
	}
	existing := make(map[string]struct{}, len(b.games))
	for _, g := range b.games {
		existing[g.ID] = struct{}{}
	}
	var fresh []model.GameRecord
	for _, g := range s.Games {
		if _, ok := existing[g.ID]; ok && g.ID != "" {
			continue
		}
		existing[g.ID] = struct{}{}
		fresh = append(fresh, g)
	}
	return b.AppendRecords(fresh), nil
}
