package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"uno-score-bot/internal/model"
)

// TestCallbackRoundTripProperty checks that any game id and index survive encoding and
// fit Telegram's 64-byte callback limit.
func TestCallbackRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		action := rapid.SampledFrom([]string{actionWinner, actionType}).Draw(t, "action")
		gameID := uuid.New().String()
		param := rapid.IntRange(0, 99).Draw(t, "param")

		data := encodeCallback(action, gameID, param)
		if len(data) > 64 {
			t.Fatalf("callback data too long: %d bytes", len(data))
		}
		gotAction, gotID, gotParam, ok := decodeCallback("\f" + data)
		if !ok || gotAction != action || gotID != gameID || gotParam != param {
			t.Fatalf("decode(%q) = %q %q %d %v", data, gotAction, gotID, gotParam, ok)
		}
	})
}

func TestDecodeCallback_Invalid(t *testing.T) {
	for _, data := range []string{"", "shop_item:key", "uno_", "uno_win", "uno_win_abc", "uno_win_abc_x"} {
		_, _, _, ok := decodeCallback(data)
		assert.False(t, ok, data)
	}
}

func TestBuildRecordPanel(t *testing.T) {
	players := []string{"A", "B", "C"}
	g := model.GameRecord{
		ID:     "g1",
		Date:   model.MustParseDate("2025-03-01"),
		Type:   model.VariantParty,
		Scores: map[string]int{"A": 0, "B": 3, "C": 0},
	}

	kb := buildRecordPanel(g, players).InlineKeyboard
	require.Len(t, kb, 2)
	require.Len(t, kb[0], 2)
	assert.Equal(t, "👑 A", kb[0][0].Text)
	assert.Equal(t, encodeCallback(actionWinner, "g1", 1), kb[0][1].Data)
	assert.Equal(t, encodeCallback(actionType, "g1", 0), kb[1][0].Data)

	g.TrueWinner = "C"
	kb = buildRecordPanel(g, players).InlineKeyboard
	assert.Equal(t, "👑✓ C", kb[0][1].Text)

	g.Scores = map[string]int{"A": 0, "B": 3, "C": 1}
	kb = buildRecordPanel(g, players).InlineKeyboard
	require.Len(t, kb, 1, "no winner buttons without a zero tie")

	g.Scores = map[string]int{"A": 0, "B": 3, "C": 0}
	g.IsOpen = true
	kb = buildRecordPanel(g, players).InlineKeyboard
	require.Len(t, kb, 1, "open games never need a winner")
}
