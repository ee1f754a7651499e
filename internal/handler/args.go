package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"uno-score-bot/internal/model"
	"uno-score-bot/internal/pkg/dateparse"
)

// Argument errors, shown to the user as-is.
var (
	errNoScores    = errors.New("❌ 请输入分数，例如 /score 0 5 12")
	errBadScore    = errors.New("❌ 分数必须是非负整数")
	errBadYear     = errors.New("❌ 年份格式错误，例如 2025")
	errBadDate     = errors.New("❌ 日期格式错误，例如 2025-01-19、1/19 或 yesterday")
	errMissingArgs = errors.New("❌ 参数不足")
)

var latinVariants = map[string]model.Variant{
	"panee":  model.VariantPanee,
	"party":  model.VariantParty,
	"normal": model.VariantNormal,
}

func parseVariant(s string) (model.Variant, bool) {
	if v, ok := latinVariants[strings.ToLower(s)]; ok {
		return v, true
	}
	return model.MatchVariant(s)
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// scoreArgs is the parsed form of /score [date] [type] s1 s2 ...
type scoreArgs struct {
	Day     model.Date
	Variant model.Variant
	Scores  []int
}

// parseScoreArgs reads an optional date and an optional variant, then the scores in
// roster order. A missing date means today.
func parseScoreArgs(args []string, dates *dateparse.Parser) (scoreArgs, error) {
	out := scoreArgs{Day: dates.Today()}
	i := 0
	if i < len(args) && !isInt(args[i]) {
		if _, ok := parseVariant(args[i]); !ok {
			d, err := dates.Parse(args[i])
			if err != nil {
				return out, errBadDate
			}
			out.Day = d
			i++
		}
	}
	if i < len(args) {
		if v, ok := parseVariant(args[i]); ok {
			out.Variant = v
			i++
		}
	}
	if i == len(args) {
		return out, errNoScores
	}
	for _, a := range args[i:] {
		n, err := strconv.Atoi(a)
		if err != nil || n < 0 {
			return out, errBadScore
		}
		out.Scores = append(out.Scores, n)
	}
	return out, nil
}

// parseYear reads an optional year argument, defaulting to current.
func parseYear(args []string, current int) (int, error) {
	if len(args) == 0 {
		return current, nil
	}
	y, err := strconv.Atoi(args[0])
	if err != nil || y < 1 || y > 9999 {
		return 0, errBadYear
	}
	return y, nil
}

// parseDay reads an optional date argument. Multi-word phrases such as "last friday"
// are joined before parsing.
func parseDay(args []string, dates *dateparse.Parser) (*model.Date, error) {
	if len(args) == 0 {
		return nil, nil
	}
	d, err := dates.Parse(strings.Join(args, " "))
	if err != nil {
		return nil, errBadDate
	}
	return &d, nil
}

// parseScope reads "daily <date>" or "yearly <year>".
func parseScope(kind, period string, dates *dateparse.Parser) (model.ScopeKey, error) {
	switch strings.ToLower(kind) {
	case "daily", "day", "d":
		d, err := dates.Parse(period)
		if err != nil {
			return model.ScopeKey{}, errBadDate
		}
		return model.DailyScope(d), nil
	case "yearly", "year", "y":
		y, err := parseYear([]string{period}, 0)
		if err != nil {
			return model.ScopeKey{}, err
		}
		return model.YearlyScope(y), nil
	}
	return model.ScopeKey{}, fmt.Errorf("❌ 范围必须是 daily 或 yearly")
}
