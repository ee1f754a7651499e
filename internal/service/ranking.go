package service

import (
	"context"
	"time"

	"uno-score-bot/internal/engine"
	"uno-score-bot/internal/model"
	"uno-score-bot/internal/scorebook"
)

// RecordRow is one game with its display marks.
type RecordRow struct {
	Record  model.GameRecord       `json:"record"`
	Marks   map[string]engine.Mark `json:"marks"`
	ZeroTie bool                   `json:"zeroTie"`
	Winners []string               `json:"winners"`
}

// DayRow is one day of the per-day summary table.
type DayRow struct {
	Day        model.Date             `json:"day"`
	Games      int                    `json:"games"`
	Totals     engine.Totals          `json:"totals"`
	Marks      map[string]engine.Mark `json:"marks"`
	Designated string                 `json:"designated,omitempty"`
}

// YearReport is the score table of one year.
type YearReport struct {
	Version    uint64                 `json:"version"`
	Year       int                    `json:"year"`
	Players    []string               `json:"players"`
	Games      int                    `json:"games"`
	Totals     engine.Totals          `json:"totals"`
	Marks      map[string]engine.Mark `json:"marks"`
	Designated string                 `json:"designated,omitempty"`
	Days       []DayRow               `json:"days"`
	Records    []RecordRow            `json:"records"`
	Fund       int64                  `json:"fund"`
}

// RankingView is a ranked aggregate for one scope.
type RankingView struct {
	Version    uint64                 `json:"version"`
	Scope      string                 `json:"scope"`
	Day        *model.Date            `json:"day,omitempty"`
	Year       int                    `json:"year"`
	Games      int                    `json:"games"`
	Standings  []engine.Standing      `json:"standings"`
	Tied       []bool                 `json:"tied"`
	Marks      map[string]engine.Mark `json:"marks"`
	Designated string                 `json:"designated,omitempty"`
	Override   []string               `json:"override,omitempty"`
}

// SummaryView is the statistics panel of one year.
type SummaryView struct {
	Version uint64 `json:"version"`
	Year    int    `json:"year"`
	engine.Summary `yaml:",inline"`
}

// WinLossView holds win and loss counts, sorted for display.
type WinLossView struct {
	Version uint64               `json:"version"`
	Year    int                  `json:"year"`
	Day     *model.Date          `json:"day,omitempty"`
	Wins    []engine.PlayerCount `json:"wins"`
	Losses  []engine.PlayerCount `json:"losses"`
}

// SeriesView is the cumulative progress of one year.
type SeriesView struct {
	Version uint64               `json:"version"`
	Year    int                  `json:"year"`
	Players []string             `json:"players"`
	Points  []engine.SeriesPoint `json:"points"`
}

// RecentView lists the newest games.
type RecentView struct {
	Version uint64      `json:"version"`
	Players []string    `json:"players"`
	Rows    []RecordRow `json:"rows"`
}

// RankingService builds read-only views of scorebooks.
// Views are recomputed on every call; each carries the book version so callers can
// cache them per (book, arguments, version).
type RankingService struct {
	scores      *ScoreService
	timezone    *time.Location
	recentLimit int
	now         func() time.Time
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(scores *ScoreService, timezone *time.Location, recentLimit int) *RankingService {
	if timezone == nil {
		timezone = time.UTC
	}
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &RankingService{
		scores:      scores,
		timezone:    timezone,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// CurrentYear returns the year of "now" in the configured timezone.
func (s *RankingService) CurrentYear() int {
	return s.now().In(s.timezone).Year()
}

// Today returns the current day in the configured timezone.
func (s *RankingService) Today() model.Date {
	return model.DateOf(s.now().In(s.timezone))
}

func recordRow(g model.GameRecord, players []string) RecordRow {
	o := engine.Classify(g, players)
	row := RecordRow{
		Record: g,
		Marks:  engine.RecordMarks(g, players),
	}
	if !g.IsOpen {
		row.ZeroTie = o.ZeroTie()
		row.Winners = o.Winners(g.TrueWinner)
	}
	return row
}

// YearReport builds the score table for year. Open games are listed but never counted.
func (s *RankingService) YearReport(ctx context.Context, bookID int64, year int) (*YearReport, error) {
	b, err := s.scores.Load(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return buildYearReport(b, year), nil
}

func buildYearReport(b *scorebook.Book, year int) *YearReport {
	players := b.Players()
	overrides := b.Overrides()
	all := engine.SelectForYear(b.Games(), year, false)
	scored := engine.Scored(all)

	totals := engine.SumByPlayer(scored, players)
	designated := overrides.YearlyWinner(year)
	r := &YearReport{
		Version:    b.Version(),
		Year:       year,
		Players:    players,
		Games:      len(scored),
		Totals:     totals,
		Marks:      engine.AggregateMarks(totals, players, designated),
		Designated: designated,
		Fund:       b.Fund(),
	}
	for _, d := range engine.DailyTotals(scored, players) {
		w := overrides.DailyWinner(d.Day)
		r.Days = append(r.Days, DayRow{
			Day:        d.Day,
			Games:      d.Games,
			Totals:     d.Totals,
			Marks:      engine.AggregateMarks(d.Totals, players, w),
			Designated: w,
		})
	}
	for _, g := range engine.SortByDate(all, true) {
		r.Records = append(r.Records, recordRow(g, players))
	}
	return r
}

// DailyRanking ranks one day. A nil day means the latest day of year with a scored
// game; with none the view is empty. year is ignored when day is given.
func (s *RankingService) DailyRanking(ctx context.Context, bookID int64, year int, day *model.Date) (*RankingView, error) {
	b, err := s.scores.Load(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if day == nil {
		latest, ok := engine.LatestDay(engine.SelectForYear(b.Games(), year, true))
		if !ok {
			return &RankingView{Version: b.Version(), Year: year}, nil
		}
		day = &latest
	}

	games := engine.SelectForDay(b.Games(), *day, true)
	key := model.DailyScope(*day)
	v := rankingView(b, key, games, b.Overrides().DailyWinner(*day))
	v.Day = day
	v.Year = day.Year()
	return v, nil
}

// YearlyRanking ranks the whole year.
func (s *RankingService) YearlyRanking(ctx context.Context, bookID int64, year int) (*RankingView, error) {
	b, err := s.scores.Load(ctx, bookID)
	if err != nil {
		return nil, err
	}
	games := engine.SelectForYear(b.Games(), year, true)
	v := rankingView(b, model.YearlyScope(year), games, b.Overrides().YearlyWinner(year))
	v.Year = year
	return v, nil
}

func rankingView(b *scorebook.Book, key model.ScopeKey, games []model.GameRecord, designated string) *RankingView {
	players := b.Players()
	overrides := b.Overrides()
	totals := engine.SumByPlayer(games, players)
	standings := engine.RankScope(totals, players, overrides, key)

	tied := make([]bool, len(standings))
	for i := range standings {
		tied[i] = engine.Tied(standings, i)
	}
	return &RankingView{
		Version:    b.Version(),
		Scope:      key.String(),
		Games:      len(games),
		Standings:  standings,
		Tied:       tied,
		Marks:      engine.AggregateMarks(totals, players, designated),
		Designated: designated,
		Override:   overrides.RankingFor(key),
	}
}

// Recent returns the newest n games of any year, open ones included. n <= 0 uses the
// configured limit.
func (s *RankingService) Recent(ctx context.Context, bookID int64, n int) (*RecentView, error) {
	b, err := s.scores.Load(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.recentLimit
	}
	players := b.Players()
	v := &RecentView{Version: b.Version(), Players: players}
	for _, g := range engine.MostRecent(b.Games(), n) {
		v.Rows = append(v.Rows, recordRow(g, players))
	}
	return v, nil
}

// Summary returns the statistics panel for year.
func (s *RankingService) Summary(ctx context.Context, bookID int64, year int) (*SummaryView, error) {
	b, err := s.scores.Load(ctx, bookID)
	if err != nil {
		return nil, err
	}
	games := engine.SelectForYear(b.Games(), year, true)
	return &SummaryView{
		Version: b.Version(),
		Year:    year,
		Summary: engine.Summarize(games, b.Players()),
	}, nil
}

// WinLoss counts wins and losses for year, or for one day when day is set.
func (s *RankingService) WinLoss(ctx context.Context, bookID int64, year int, day *model.Date) (*WinLossView, error) {
	b, err := s.scores.Load(ctx, bookID)
	if err != nil {
		return nil, err
	}
	games := engine.SelectForYear(b.Games(), year, true)
	if day != nil {
		games = engine.SelectForDay(b.Games(), *day, true)
		year = day.Year()
	}
	players := b.Players()
	wl := engine.WinLoss(games, players)
	return &WinLossView{
		Version: b.Version(),
		Year:    year,
		Day:     day,
		Wins:    engine.SortedCounts(wl.Wins, players),
		Losses:  engine.SortedCounts(wl.Losses, players),
	}, nil
}

// Series returns the cumulative totals per day for year.
func (s *RankingService) Series(ctx context.Context, bookID int64, year int) (*SeriesView, error) {
	b, err := s.scores.Load(ctx, bookID)
	if err != nil {
		return nil, err
	}
	players := b.Players()
	return &SeriesView{
		Version: b.Version(),
		Year:    year,
		Players: players,
		Points:  engine.CumulativeSeries(engine.SelectForYear(b.Games(), year, true), players),
	}, nil
}
