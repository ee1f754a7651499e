package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"uno-score-bot/internal/config"
	"uno-score-bot/internal/engine"
	"uno-score-bot/internal/pkg/db"
	"uno-score-bot/internal/repository"
	"uno-score-bot/internal/service"
)

// workspace is the local side of the bot's storage.
type workspace struct {
	cfg     *config.Config
	local   *repository.FileStore
	scores  *service.ScoreService
	ranking *service.RankingService
}

func openWorkspace(c *cli.Context) (*workspace, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if dir := c.String("dir"); dir != "" {
		cfg.Storage.LocalDir = dir
	}
	local := repository.NewFileStore(cfg.Storage.LocalDir)
	scores := service.NewScoreService(local, nil, nil, service.Defaults{
		Players: cfg.Scorebook.Players,
		Variant: cfg.Scorebook.Variant(),
	}, cfg.Scorebook.LockTimeout)
	return &workspace{
		cfg:     cfg,
		local:   local,
		scores:  scores,
		ranking: service.NewRankingService(scores, cfg.Scorebook.Location(), cfg.Scorebook.RecentLimit),
	}, nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "append games from a .csv, .xlsx or exported .json file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			bookFlag(),
			&cli.IntFlag{Name: "year", Usage: "year for m/d dates in sheets (default: current year)"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("import needs a FILE argument", 2)
			}
			ws, err := openWorkspace(c)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			year := c.Int("year")
			if year == 0 {
				year = ws.ranking.CurrentYear()
			}
			res, err := ws.scores.Import(c.Context, c.Int64("book"), filepath.Base(path), f, year)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d games from %s\n", res.Added, path)
			for _, row := range res.Report.Skipped {
				fmt.Fprintf(c.App.Writer, "  skipped line %d: %s\n", row.Line, row.Reason)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a scorebook as JSON",
		Flags: []cli.Flag{
			bookFlag(),
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			ws, err := openWorkspace(c)
			if err != nil {
				return err
			}
			var w io.Writer = c.App.Writer
			if out := c.String("out"); out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return ws.scores.Export(c.Context, c.Int64("book"), w)
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "print a yearly view of a scorebook",
		Flags: []cli.Flag{
			bookFlag(),
			&cli.IntFlag{Name: "year", Usage: "report year (default: current year)"},
			&cli.StringFlag{Name: "kind", Value: "table", Usage: "table, ranking or summary"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text, json or yaml"},
		},
		Action: func(c *cli.Context) error {
			ws, err := openWorkspace(c)
			if err != nil {
				return err
			}
			year := c.Int("year")
			if year == 0 {
				year = ws.ranking.CurrentYear()
			}
			book := c.Int64("book")

			var view any
			switch c.String("kind") {
			case "table":
				view, err = ws.ranking.YearReport(c.Context, book, year)
			case "ranking":
				view, err = ws.ranking.YearlyRanking(c.Context, book, year)
			case "summary":
				view, err = ws.ranking.Summary(c.Context, book, year)
			default:
				return cli.Exit(fmt.Sprintf("unknown report kind %q", c.String("kind")), 2)
			}
			if err != nil {
				return err
			}
			return writeReport(c.App.Writer, c.String("format"), view)
		},
	}
}

func writeReport(w io.Writer, format string, view any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return writeText(w, view)
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q", format), 2)
	}
}

func writeText(w io.Writer, view any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	switch v := view.(type) {
	case *service.YearReport:
		fmt.Fprintf(tw, "%d\tgames\t%s\n", v.Year, strings.Join(v.Players, "\t"))
		for _, d := range v.Days {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Day, d.Games, cells(v.Players, d.Totals, d.Marks))
		}
		fmt.Fprintf(tw, "total\t%d\t%s\n", v.Games, cells(v.Players, v.Totals, v.Marks))
		if v.Fund > 0 {
			fmt.Fprintf(tw, "fund\t%d\n", v.Fund)
		}
	case *service.RankingView:
		fmt.Fprintf(tw, "%s\t%d games\n", v.Scope, v.Games)
		for i, s := range v.Standings {
			tie := ""
			if i < len(v.Tied) && v.Tied[i] {
				tie = "tie"
			}
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", s.Position, s.Player, s.Total, markText(v.Marks[s.Player]), tie)
		}
	case *service.SummaryView:
		fmt.Fprintf(tw, "games\t%d\n", v.Games)
		fmt.Fprintf(tw, "first\t%s\n", strings.Join(v.First, ", "))
		fmt.Fprintf(tw, "last\t%s\n", strings.Join(v.Last, ", "))
		fmt.Fprintf(tw, "most wins\t%s\n", counts(v.MostWins))
		fmt.Fprintf(tw, "most losses\t%s\n", counts(v.MostLosses))
		fmt.Fprintf(tw, "average\t%.1f\n", v.Average)
	default:
		return fmt.Errorf("no text layout for %T", view)
	}
	return tw.Flush()
}

func cells(players []string, totals engine.Totals, marks map[string]engine.Mark) string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = fmt.Sprintf("%d%s", totals[p], markText(marks[p]))
	}
	return strings.Join(out, "\t")
}

func markText(m engine.Mark) string {
	if m == engine.MarkNone {
		return ""
	}
	return " (" + m.String() + ")"
}

func counts(pc []engine.PlayerCount) string {
	out := make([]string, len(pc))
	for i, c := range pc {
		out[i] = fmt.Sprintf("%s(%d)", c.Player, c.Count)
	}
	return strings.Join(out, ", ")
}

func connect(c *cli.Context, ws *workspace) (*db.Pool, error) {
	timeout := ws.cfg.Database.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()
	return db.NewPool(ctx, &ws.cfg.Database)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the scorebook tables",
		Action: func(c *cli.Context) error {
			ws, err := openWorkspace(c)
			if err != nil {
				return err
			}
			pool, err := connect(c, ws)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := repository.Migrate(c.Context, pool.Pool); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "migrations applied")
			return nil
		},
	}
}

func pushCommand() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "overwrite the remote copy of a scorebook with the local one",
		Flags: []cli.Flag{bookFlag()},
		Action: func(c *cli.Context) error {
			ws, err := openWorkspace(c)
			if err != nil {
				return err
			}
			pool, err := connect(c, ws)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := repository.NewFallbackStore(repository.NewPostgresStore(pool.Pool), ws.local, nil)
			snap, err := store.Push(c.Context, c.Int64("book"))
			if errors.Is(err, repository.ErrSnapshotNotFound) {
				return cli.Exit(fmt.Sprintf("no local snapshot for book %d", c.Int64("book")), 1)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "pushed version %d (%d games)\n", snap.Version, len(snap.Games))
			return nil
		},
	}
}
