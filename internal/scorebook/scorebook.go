// Package scorebook holds the mutable state of one group's score records.
//
// A Book is owned by a single caller at a time; the service layer serialises access
// per book. Every mutation validates first and leaves the book untouched on error.
package scorebook

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"uno-score-bot/internal/model"
)

// Validation errors.
var (
	ErrEmptyName       = errors.New("player name is empty")
	ErrDuplicatePlayer = errors.New("player already exists")
	ErrRosterTooSmall  = errors.New("roster needs at least two players")
	ErrUnknownPlayer   = errors.New("player is not on the roster")
	ErrNoScore         = errors.New("no score entered")
	ErrNegativeScore   = errors.New("scores cannot be negative")
	ErrGameNotFound    = errors.New("game not found")
	ErrNegativeFund    = errors.New("fund cannot be negative")
	ErrInvalidDate     = errors.New("game date is required")
)

// Book is the record store of one scorebook: roster, games, overrides and fund.
type Book struct {
	players   []string
	games     []model.GameRecord
	overrides model.Overrides
	fund      int64
	lastType  model.Variant
	nextSeq   int64
	version   uint64
	newID     func() string
}

// Option configures a Book.
type Option func(*Book)

// WithIDGenerator replaces the uuid v7 record id generator.
func WithIDGenerator(fn func() string) Option {
	return func(b *Book) { b.newID = fn }
}

// WithDefaultVariant sets the variant remembered by a fresh book.
func WithDefaultVariant(v model.Variant) Option {
	return func(b *Book) {
		if v.Valid() {
			b.lastType = v
		}
	}
}

// NewID returns a time-ordered record id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// New creates an empty book with the given roster.
func New(players []string, opts ...Option) (*Book, error) {
	roster, err := normaliseRoster(players)
	if err != nil {
		return nil, err
	}
	b := &Book{
		players:   roster,
		overrides: model.NewOverrides(),
		lastType:  model.DefaultVariant,
		nextSeq:   1,
		newID:     NewID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// FromSnapshot rebuilds a book from persisted state. Records without a sequence number
// are numbered after the highest existing one, in snapshot order.
func FromSnapshot(s model.Snapshot, opts ...Option) (*Book, error) {
	b, err := New(s.Players, opts...)
	if err != nil {
		return nil, err
	}
	b.fund = s.Fund
	b.version = s.Version
	if s.LastGameType != "" {
		b.lastType = s.LastGameType
	}
	b.overrides = s.Overrides()
	b.games = make([]model.GameRecord, 0, len(s.Games))
	for _, g := range s.Games {
		if g.Seq >= b.nextSeq {
			b.nextSeq = g.Seq + 1
		}
	}
	for _, g := range s.Games {
		g = g.Clone()
		if g.Seq == 0 {
			g.Seq = b.takeSeq()
		}
		b.games = append(b.games, g)
	}
	return b, nil
}

// Snapshot exports the whole dataset.
func (b *Book) Snapshot(now time.Time) model.Snapshot {
	o := b.overrides.Clone()
	return model.Snapshot{
		Players:          b.Players(),
		Games:            b.Games(),
		Fund:             b.fund,
		LastGameType:     b.lastType,
		RankingOverrides: o.Ranking,
		DailyWinners:     o.DailyWinners,
		YearlyWinners:    o.YearlyWinners,
		UpdatedAt:        now,
		Version:          b.version,
	}
}

// Version increases with every successful mutation. Callers may key memoised views
// on it.
func (b *Book) Version() uint64 { return b.version }

// Players returns a copy of the roster in display order.
func (b *Book) Players() []string { return append([]string(nil), b.players...) }

// Games returns a deep copy of all records in insertion order.
func (b *Book) Games() []model.GameRecord {
	out := make([]model.GameRecord, len(b.games))
	for i, g := range b.games {
		out[i] = g.Clone()
	}
	return out
}

// Game returns a copy of the record with id.
func (b *Book) Game(id string) (model.GameRecord, error) {
	i := b.indexOf(id)
	if i < 0 {
		return model.GameRecord{}, ErrGameNotFound
	}
	return b.games[i].Clone(), nil
}

// Overrides returns a copy of the override maps.
func (b *Book) Overrides() model.Overrides { return b.overrides.Clone() }

// Fund returns the fund balance.
func (b *Book) Fund() int64 { return b.fund }

// LastType returns the variant used by the most recent score entry.
func (b *Book) LastType() model.Variant { return b.lastType }

// HasPlayer reports whether name is on the roster.
func (b *Book) HasPlayer(name string) bool {
	for _, p := range b.players {
		if p == name {
			return true
		}
	}
	return false
}

// AddPlayer appends a player to the roster.
func (b *Book) AddPlayer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if b.HasPlayer(name) {
		return ErrDuplicatePlayer
	}
	b.players = append(b.players, name)
	b.touch()
	return nil
}

// RemovePlayer drops a player from the roster. Their scores stay in the records but no
// longer take part in aggregation.
func (b *Book) RemovePlayer(name string) error {
	if !b.HasPlayer(name) {
		return ErrUnknownPlayer
	}
	if len(b.players) <= model.MinPlayers {
		return ErrRosterTooSmall
	}
	kept := b.players[:0:0]
	for _, p := range b.players {
		if p != name {
			kept = append(kept, p)
		}
	}
	b.players = kept
	b.touch()
	return nil
}

// SetFund sets the group fund balance.
func (b *Book) SetFund(amount int64) error {
	if amount < 0 {
		return ErrNegativeFund
	}
	b.fund = amount
	b.touch()
	return nil
}

func (b *Book) touch() { b.version++ }

func (b *Book) takeSeq() int64 {
	s := b.nextSeq
	b.nextSeq++
	return s
}

func (b *Book) indexOf(id string) int {
	for i := range b.games {
		if b.games[i].ID == id {
			return i
		}
	}
	return -1
}

func normaliseRoster(players []string) ([]string, error) {
	seen := make(map[string]struct{}, len(players))
	roster := make([]string, 0, len(players))
	for _, p := range players {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, ErrEmptyName
		}
		if _, dup := seen[p]; dup {
			return nil, ErrDuplicatePlayer
		}
		seen[p] = struct{}{}
		roster = append(roster, p)
	}
	if len(roster) < model.MinPlayers {
		return nil, ErrRosterTooSmall
	}
	return roster, nil
}
