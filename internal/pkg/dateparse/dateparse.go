// Package dateparse turns user-typed day arguments into calendar days.
package dateparse

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"

	"uno-score-bot/internal/model"
)

// ErrUnrecognised is returned when no format matches the input.
var ErrUnrecognised = errors.New("unrecognised date")

// Parser resolves day arguments relative to "now" in a fixed location.
type Parser struct {
	loc *time.Location
	now func() time.Time
	w   *when.Parser
}

// New creates a Parser. A nil loc means UTC; a nil now means time.Now.
func New(loc *time.Location, now func() time.Time) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	w := when.New(nil)
	w.Add(en.All...)
	return &Parser{loc: loc, now: now, w: w}
}

// Today returns the current day in the parser's location.
func (p *Parser) Today() model.Date {
	return model.DateOf(p.now().In(p.loc))
}

// Parse accepts yyyy-mm-dd, y/m/d, m/d (current year) and natural phrases such as
// "today", "yesterday" or "last friday".
func (p *Parser) Parse(s string) (model.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Date{}, ErrUnrecognised
	}
	if d, err := model.ParseDate(s); err == nil {
		return d, nil
	}
	if d, ok := Slashed(s, p.Today().Year()); ok {
		return d, nil
	}
	if strings.ContainsAny(s, "/") {
		return model.Date{}, ErrUnrecognised
	}

	r, err := p.w.Parse(strings.ToLower(s), p.now().In(p.loc))
	if err != nil || r == nil {
		return model.Date{}, ErrUnrecognised
	}
	return model.DateOf(r.Time.In(p.loc)), nil
}

// Slashed parses "m/d" using year, or "y/m/d". Out-of-range parts are rejected.
func Slashed(s string, year int) (model.Date, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return model.Date{}, false
		}
		nums[i] = n
	}

	var y, m, d int
	switch len(nums) {
	case 2:
		y, m, d = year, nums[0], nums[1]
	case 3:
		y, m, d = nums[0], nums[1], nums[2]
	default:
		return model.Date{}, false
	}
	if y < 1 || m < 1 || m > 12 || d < 1 || d > 31 {
		return model.Date{}, false
	}
	date := model.NewDate(y, time.Month(m), d)
	if date.D != d {
		return model.Date{}, false
	}
	return date, true
}
