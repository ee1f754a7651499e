// Package main is the offline scorebook tool: bulk import, export, reports and
// database maintenance against the same storage the bot uses.
package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("unoscore failed")
	}
}

// bookFlag is built per command; cli flags keep parse state.
func bookFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:     "book",
		Aliases:  []string{"b"},
		Usage:    "chat id of the scorebook",
		Required: true,
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "unoscore",
		Usage:  "manage UNO scorebooks offline",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config",
				Usage: "directory holding config.yaml",
			},
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "local snapshot directory, overrides storage.local_dir",
				EnvVars: []string{"UNOSCORE_DIR"},
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log warnings and errors",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("quiet") {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			importCommand(),
			exportCommand(),
			reportCommand(),
			{
				Name:  "db",
				Usage: "remote database maintenance",
				Subcommands: []*cli.Command{
					migrateCommand(),
					pushCommand(),
				},
			},
		},
	}
}
