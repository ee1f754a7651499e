package engine

import "uno-score-bot/internal/model"

// WinningScore is the best possible score.
const WinningScore = 0

// Outcome is the classification of one record's scores.
type Outcome struct {
	Min         int
	Max         int
	ZeroScorers []string // roster order
	Losers      []string // players at Max, empty when every score is equal
}

// ZeroTie reports whether two or more players share the winning score.
// Such a record needs a manually designated true winner for display.
func (o Outcome) ZeroTie() bool {
	return len(o.ZeroScorers) > 1
}

// Winners returns the players displayed as winners. When the record is a zero-tie and
// trueWinner is one of the tied players, only trueWinner is returned.
func (o Outcome) Winners(trueWinner string) []string {
	if o.ZeroTie() && trueWinner != "" && contains(o.ZeroScorers, trueWinner) {
		return []string{trueWinner}
	}
	return append([]string(nil), o.ZeroScorers...)
}

// Classify computes min, max, zero-scorers and losers of a record, restricted to the
// roster. Missing scores count as 0.
func Classify(record model.GameRecord, roster []string) Outcome {
	return classifyScores(func(p string) int { return record.Score(p) }, roster)
}

// ClassifyTotals classifies aggregated totals with the same rules as a single record.
func ClassifyTotals(totals Totals, roster []string) Outcome {
	return classifyScores(func(p string) int { return totals[p] }, roster)
}

func classifyScores(score func(string) int, roster []string) Outcome {
	var out Outcome
	for i, p := range roster {
		s := score(p)
		if i == 0 || s < out.Min {
			out.Min = s
		}
		if i == 0 || s > out.Max {
			out.Max = s
		}
		if s == WinningScore {
			out.ZeroScorers = append(out.ZeroScorers, p)
		}
	}
	if out.Max > out.Min {
		for _, p := range roster {
			if score(p) == out.Max {
				out.Losers = append(out.Losers, p)
			}
		}
	}
	return out
}

// Mark is the display classification of one cell.
type Mark int

const (
	MarkNone Mark = iota
	MarkWinner
	MarkLoser
	// MarkChoiceNeeded highlights a zero-tied player while no true winner is designated.
	MarkChoiceNeeded
	// MarkTrueWinner is the designated sole winner of a zero-tie.
	MarkTrueWinner
)

// IsWinner reports whether the cell is highlighted as a winner.
func (m Mark) IsWinner() bool {
	return m == MarkWinner || m == MarkChoiceNeeded || m == MarkTrueWinner
}

func (m Mark) String() string {
	switch m {
	case MarkWinner:
		return "winner"
	case MarkLoser:
		return "loser"
	case MarkChoiceNeeded:
		return "choice-needed"
	case MarkTrueWinner:
		return "true-winner"
	default:
		return "none"
	}
}

// MarshalText lets marks appear as strings in JSON views.
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses the names written by MarshalText. Unknown names read as MarkNone.
func (m *Mark) UnmarshalText(b []byte) error {
	*m = MarkNone
	for _, k := range []Mark{MarkWinner, MarkLoser, MarkChoiceNeeded, MarkTrueWinner} {
		if k.String() == string(b) {
			*m = k
			break
		}
	}
	return nil
}

// RecordMarks classifies every roster player's cell of one record for display.
// Open records carry no marks. In a zero-tie every zero-scorer is highlighted until a
// true winner is set; then only that player keeps the highlight and the other
// zero-scorers lose it without becoming losers.
func RecordMarks(record model.GameRecord, roster []string) map[string]Mark {
	marks := make(map[string]Mark, len(roster))
	if record.IsOpen {
		for _, p := range roster {
			marks[p] = MarkNone
		}
		return marks
	}
	return markScores(func(p string) int { return record.Score(p) }, roster, record.TrueWinner)
}

// AggregateMarks classifies day or year totals. designated is the daily or yearly
// winner override for the scope, or "".
func AggregateMarks(totals Totals, roster []string, designated string) map[string]Mark {
	return markScores(func(p string) int { return totals[p] }, roster, designated)
}

func markScores(score func(string) int, roster []string, designated string) map[string]Mark {
	out := classifyScores(score, roster)
	tie := out.ZeroTie() && out.Min == WinningScore
	// A designation naming someone outside the tie is stale and ignored.
	if !tie || !contains(out.ZeroScorers, designated) {
		designated = ""
	}

	marks := make(map[string]Mark, len(roster))
	for _, p := range roster {
		s := score(p)
		switch {
		case tie && s == WinningScore:
			switch {
			case designated == "":
				marks[p] = MarkChoiceNeeded
			case designated == p:
				marks[p] = MarkTrueWinner
			default:
				marks[p] = MarkNone
			}
		case s == out.Min:
			marks[p] = MarkWinner
		case s == out.Max && out.Max != out.Min:
			marks[p] = MarkLoser
		default:
			marks[p] = MarkNone
		}
	}
	return marks
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
