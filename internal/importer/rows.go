package importer

import (
	"strings"

	"uno-score-bot/internal/model"
	"uno-score-bot/internal/pkg/dateparse"
)

// Header cells that never name a player.
var nonPlayerHeaders = map[string]bool{
	"タイプ": true,
	"種類":  true,
	"合計":  true,
	"累計":  true,
	"":    true,
}

// First-cell labels of the summary block at the bottom of a sheet.
var summaryLabels = []string{"累計", "順位", "1位", "最下位", "差分"}

// Skip reasons.
const (
	reasonSummary = "summary row"
	reasonDate    = "unrecognised date"
	reasonNoScore = "no score entered"
	reasonTooBig  = "score too large"
)

// maxScoreDigits bounds a score cell so any accepted value fits an int32.
const maxScoreDigits = 9

type column struct {
	name  string
	index int
}

// ParseRows turns sheet rows into records.
//
// The first row is a header whose cells after the date column name the players. If the
// first cell of the first row is already a date, the sheet has no header and the score
// columns follow opts.Roster in order. The last cell of a row names the variant.
func ParseRows(rows [][]string, opts Options) Result {
	var res Result
	if len(rows) == 0 {
		return res
	}

	cols, start := headerColumns(rows[0], opts)
	for _, c := range cols {
		res.Players = append(res.Players, c.name)
	}

	for i := start; i < len(rows); i++ {
		cells := cleanCells(rows[i])
		if isBlank(cells) {
			continue
		}
		res.Report.Rows++
		line := i + 1

		if isSummary(cells[0]) {
			res.Report.Skipped = append(res.Report.Skipped, SkippedRow{Line: line, Reason: reasonSummary})
			continue
		}
		date, ok := dateparse.Slashed(cells[0], opts.Year)
		if !ok {
			res.Report.Skipped = append(res.Report.Skipped, SkippedRow{Line: line, Reason: reasonDate})
			continue
		}

		scores := make(map[string]int, len(cols))
		hasScore, inRange := false, true
		for _, c := range cols {
			s := 0
			if c.index < len(cells) {
				s, ok = leadingInt(cells[c.index])
				inRange = inRange && ok
			}
			scores[c.name] = s
			if s > 0 {
				hasScore = true
			}
		}
		if !inRange {
			res.Report.Skipped = append(res.Report.Skipped, SkippedRow{Line: line, Reason: reasonTooBig})
			continue
		}
		if !hasScore {
			res.Report.Skipped = append(res.Report.Skipped, SkippedRow{Line: line, Reason: reasonNoScore})
			continue
		}

		variant, ok := model.MatchVariant(cells[len(cells)-1])
		if !ok {
			variant = model.DefaultVariant
		}
		res.Records = append(res.Records, model.GameRecord{
			ID:     opts.newID(),
			Date:   date,
			Type:   variant,
			Scores: scores,
		})
	}
	return res
}

func headerColumns(first []string, opts Options) ([]column, int) {
	cells := cleanCells(first)
	if len(cells) > 0 {
		if _, ok := dateparse.Slashed(cells[0], opts.Year); ok {
			cols := make([]column, len(opts.Roster))
			for i, p := range opts.Roster {
				cols[i] = column{name: p, index: i + 1}
			}
			return cols, 0
		}
	}

	var cols []column
	for i := 1; i < len(cells); i++ {
		if !nonPlayerHeaders[cells[i]] {
			cols = append(cols, column{name: cells[i], index: i})
		}
	}
	return cols, 1
}

func cleanCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(strings.ReplaceAll(c, `"`, ""))
	}
	if len(out) > 0 {
		out[0] = strings.TrimPrefix(out[0], "\ufeff")
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func isSummary(first string) bool {
	if first == "" {
		return true
	}
	for _, label := range summaryLabels {
		if strings.Contains(first, label) {
			return true
		}
	}
	return false
}

// leadingInt reads the integer prefix of s, so "12点" is 12. Anything without a leading
// number, and any negative number, is 0. ok is false when the prefix has more than
// maxScoreDigits significant digits.
func leadingInt(s string) (n int, ok bool) {
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > 0 {
			digits++
		}
		if digits > maxScoreDigits {
			return 0, false
		}
	}
	return n, true
}
