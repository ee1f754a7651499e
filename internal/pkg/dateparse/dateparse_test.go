package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uno-score-bot/internal/model"
)

func fixedParser() *Parser {
	now := time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)
	return New(time.UTC, func() time.Time { return now })
}

func TestParse(t *testing.T) {
	p := fixedParser()

	tests := []struct {
		in   string
		want string
	}{
		{"2024-12-31", "2024-12-31"},
		{"1/19", "2025-01-19"},
		{"2023/2/28", "2023-02-28"},
		{"today", "2025-03-12"},
		{"yesterday", "2025-03-11"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := p.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, model.MustParseDate(tt.want), got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	p := fixedParser()
	for _, in := range []string{"", "13/1", "2/30", "whenever"} {
		_, err := p.Parse(in)
		assert.ErrorIs(t, err, ErrUnrecognised, in)
	}
}

func TestSlashed(t *testing.T) {
	d, ok := Slashed("1/19", 2025)
	require.True(t, ok)
	assert.Equal(t, model.MustParseDate("2025-01-19"), d)

	_, ok = Slashed("1/2/3/4", 2025)
	assert.False(t, ok)
	_, ok = Slashed("a/b", 2025)
	assert.False(t, ok)
}

func TestToday_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, time.March, 12, 20, 0, 0, 0, time.UTC)
	p := New(tokyo, func() time.Time { return now })
	assert.Equal(t, model.MustParseDate("2025-03-13"), p.Today())
}
