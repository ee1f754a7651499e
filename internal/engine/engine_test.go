package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uno-score-bot/internal/model"
	"uno-score-bot/internal/testutil"
)

var abc = []string{"A", "B", "C"}

func TestSelectForYear(t *testing.T) {
	records := []model.GameRecord{
		testutil.Record("1", 1, "2024-12-31", map[string]int{"A": 1}),
		testutil.Record("2", 2, "2025-01-01", map[string]int{"A": 2}),
		testutil.Record("3", 3, "2025-06-01", map[string]int{"A": 3}),
	}
	records[2].IsOpen = true

	assert.Len(t, SelectForYear(records, 2025, false), 2)

	scored := SelectForYear(records, 2025, true)
	require.Len(t, scored, 1)
	assert.Equal(t, "2", scored[0].ID)

	assert.Empty(t, SelectForYear(records, 2030, false))
	assert.Len(t, SelectForDay(records, model.MustParseDate("2025-06-01"), false), 1)
	assert.Empty(t, SelectForDay(records, model.MustParseDate("2025-06-01"), true))
}

func TestSumByPlayer(t *testing.T) {
	t.Run("empty input yields zeros for roster", func(t *testing.T) {
		got := SumByPlayer(nil, abc)
		assert.Equal(t, Totals{"A": 0, "B": 0, "C": 0}, got)
	})

	t.Run("missing scores count as zero and non-roster scores are ignored", func(t *testing.T) {
		records := []model.GameRecord{
			testutil.Record("1", 1, "2025-01-01", map[string]int{"A": 5, "Z": 100}),
			testutil.Record("2", 2, "2025-01-02", map[string]int{"A": 1, "B": 2, "C": 3}),
		}
		got := SumByPlayer(records, abc)
		if diff := cmp.Diff(Totals{"A": 6, "B": 2, "C": 3}, got); diff != "" {
			t.Errorf("SumByPlayer mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 11, got.Sum())
	})
}

func TestClassify(t *testing.T) {
	g := testutil.Record("1", 1, "2025-01-01", map[string]int{"A": 0, "B": 0, "C": 5})
	o := Classify(g, abc)

	assert.Equal(t, []string{"A", "B"}, o.ZeroScorers)
	assert.Equal(t, 0, o.Min)
	assert.Equal(t, 5, o.Max)
	assert.Equal(t, []string{"C"}, o.Losers)
	assert.True(t, o.ZeroTie())
	assert.Equal(t, []string{"A", "B"}, o.Winners(""))
	assert.Equal(t, []string{"B"}, o.Winners("B"))
	assert.Equal(t, []string{"A", "B"}, o.Winners("C"), "a non-tied true winner is ignored")
}

func TestClassify_AllEqualHasNoLosers(t *testing.T) {
	g := testutil.Record("1", 1, "2025-01-01", map[string]int{"A": 4, "B": 4, "C": 4})
	o := Classify(g, abc)

	assert.Empty(t, o.Losers)
	assert.Empty(t, o.ZeroScorers)
	assert.False(t, o.ZeroTie())
}

func TestRecordMarks_ZeroTieScenario(t *testing.T) {
	g := testutil.Record("1", 1, "2025-01-01", map[string]int{"A": 0, "B": 3, "C": 0})

	marks := RecordMarks(g, abc)
	assert.Equal(t, map[string]Mark{
		"A": MarkChoiceNeeded,
		"B": MarkLoser,
		"C": MarkChoiceNeeded,
	}, marks)
	assert.True(t, marks["A"].IsWinner())
	assert.True(t, marks["C"].IsWinner())

	g.TrueWinner = "A"
	marks = RecordMarks(g, abc)
	assert.Equal(t, map[string]Mark{
		"A": MarkTrueWinner,
		"B": MarkLoser,
		"C": MarkNone,
	}, marks)
	assert.False(t, marks["C"].IsWinner())
}

func TestRecordMarks(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]int
		open   bool
		winner string
		want   map[string]Mark
	}{
		{
			name:   "single zero scorer wins",
			scores: map[string]int{"A": 0, "B": 10, "C": 4},
			want:   map[string]Mark{"A": MarkWinner, "B": MarkLoser, "C": MarkNone},
		},
		{
			name:   "no zero scorer still marks min and max",
			scores: map[string]int{"A": 3, "B": 10, "C": 10},
			want:   map[string]Mark{"A": MarkWinner, "B": MarkLoser, "C": MarkLoser},
		},
		{
			name:   "open game carries no marks",
			scores: map[string]int{"A": 0, "B": 10, "C": 4},
			open:   true,
			want:   map[string]Mark{"A": MarkNone, "B": MarkNone, "C": MarkNone},
		},
		{
			name:   "stale true winner falls back to choice needed",
			scores: map[string]int{"A": 0, "B": 10, "C": 0},
			winner: "B",
			want:   map[string]Mark{"A": MarkChoiceNeeded, "B": MarkLoser, "C": MarkChoiceNeeded},
		},
		{
			name:   "all equal non-zero are all winners",
			scores: map[string]int{"A": 2, "B": 2, "C": 2},
			want:   map[string]Mark{"A": MarkWinner, "B": MarkWinner, "C": MarkWinner},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.Record("1", 1, "2025-01-01", tt.scores)
			g.IsOpen = tt.open
			g.TrueWinner = tt.winner
			assert.Equal(t, tt.want, RecordMarks(g, abc))
		})
	}
}

func TestAggregateMarks_UsesDesignation(t *testing.T) {
	totals := Totals{"A": 0, "B": 7, "C": 0}

	assert.Equal(t, MarkChoiceNeeded, AggregateMarks(totals, abc, "")["C"])

	marks := AggregateMarks(totals, abc, "C")
	assert.Equal(t, MarkNone, marks["A"])
	assert.Equal(t, MarkLoser, marks["B"])
	assert.Equal(t, MarkTrueWinner, marks["C"])
}

func TestMark_MarshalText(t *testing.T) {
	b, err := MarkChoiceNeeded.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "choice-needed", string(b))
	assert.Equal(t, "none", Mark(99).String())

	var m Mark
	require.NoError(t, m.UnmarshalText([]byte("true-winner")))
	assert.Equal(t, MarkTrueWinner, m)
	require.NoError(t, m.UnmarshalText([]byte("bogus")))
	assert.Equal(t, MarkNone, m)
}

func TestDailyTotals_TwoRecordScenario(t *testing.T) {
	ab := []string{"A", "B"}
	records := []model.GameRecord{
		testutil.Record("1", 1, "2025-03-01", map[string]int{"A": 0, "B": 2}),
		testutil.Record("2", 2, "2025-03-01", map[string]int{"A": 0, "B": 1}),
	}

	daily := DailyTotals(records, ab)
	require.Len(t, daily, 1)
	assert.Equal(t, 2, daily[0].Games)
	assert.Equal(t, Totals{"A": 0, "B": 3}, daily[0].Totals)

	standings := Rank(daily[0].Totals, ab, nil)
	assert.Equal(t, []Standing{
		{Position: 1, Player: "A", Total: 0},
		{Position: 2, Player: "B", Total: 3},
	}, standings)
}

func TestDailyTotals_SkipsOpenOnlyDays(t *testing.T) {
	records := []model.GameRecord{
		testutil.Record("1", 1, "2025-03-02", map[string]int{"A": 4}),
		testutil.Record("2", 2, "2025-03-01", map[string]int{"A": 1}),
	}
	records[0].IsOpen = true

	daily := DailyTotals(records, abc)
	require.Len(t, daily, 1)
	assert.Equal(t, model.MustParseDate("2025-03-01"), daily[0].Day)
}

func TestRank_OverrideReordersTie(t *testing.T) {
	totals := Totals{"A": 5, "B": 5, "C": 1}

	got := Order(Rank(totals, abc, nil))
	assert.Equal(t, []string{"C", "A", "B"}, got)

	got = Order(Rank(totals, abc, []string{"B", "A"}))
	assert.Equal(t, []string{"C", "B", "A"}, got)
}

func TestRank_PartialOverrideComparesEqual(t *testing.T) {
	totals := Totals{"A": 2, "B": 2, "C": 2}

	// Only C is listed, so it keeps its own slot.
	got := Order(Rank(totals, abc, []string{"C"}))
	assert.Equal(t, abc, got)

	got = Order(Rank(totals, abc, []string{"C", "B", "Nobody"}))
	assert.Equal(t, []string{"A", "C", "B"}, got)

	// X is unlisted and sits between the listed pair.
	axb := []string{"A", "X", "B"}
	got = Order(Rank(Totals{"A": 0, "X": 0, "B": 0}, axb, []string{"B", "A"}))
	assert.Equal(t, []string{"B", "X", "A"}, got)
}

func TestRankScope(t *testing.T) {
	o := model.NewOverrides()
	day := model.MustParseDate("2025-01-01")
	o.Ranking[model.DailyScope(day).String()] = []string{"B", "A"}

	totals := Totals{"A": 0, "B": 0, "C": 3}
	assert.Equal(t, []string{"B", "A", "C"}, Order(RankScope(totals, abc, o, model.DailyScope(day))))
	assert.Equal(t, []string{"A", "B", "C"}, Order(RankScope(totals, abc, o, model.YearlyScope(2025))))
}

func TestTied(t *testing.T) {
	s := Rank(Totals{"A": 1, "B": 1, "C": 9}, abc, nil)
	assert.True(t, Tied(s, 0))
	assert.True(t, Tied(s, 1))
	assert.False(t, Tied(s, 2))
	assert.False(t, Tied(s, 3))
}

func TestMostRecent(t *testing.T) {
	records := []model.GameRecord{
		testutil.Record("a", 1, "2025-01-02", nil),
		testutil.Record("b", 2, "2025-01-03", nil),
		testutil.Record("c", 3, "2025-01-02", nil),
		testutil.Record("d", 4, "2025-01-01", nil),
	}

	got := MostRecent(records, 3)
	ids := make([]string, len(got))
	for i, g := range got {
		ids[i] = g.ID
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	assert.Nil(t, MostRecent(records, 0))
	assert.Nil(t, MostRecent(records, -1))
	assert.Len(t, MostRecent(records, 10), 4)

	day, ok := LatestDay(records)
	require.True(t, ok)
	assert.Equal(t, model.MustParseDate("2025-01-03"), day)

	_, ok = LatestDay(nil)
	assert.False(t, ok)
}

func TestSortByDate(t *testing.T) {
	records := []model.GameRecord{
		testutil.Record("a", 2, "2025-01-02", nil),
		testutil.Record("b", 1, "2025-01-02", nil),
		testutil.Record("c", 3, "2025-01-01", nil),
	}

	asc := SortByDate(records, false)
	assert.Equal(t, []string{"c", "b", "a"}, []string{asc[0].ID, asc[1].ID, asc[2].ID})

	desc := SortByDate(records, true)
	assert.Equal(t, []string{"b", "a", "c"}, []string{desc[0].ID, desc[1].ID, desc[2].ID})
}
