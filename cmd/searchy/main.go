package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "searchy",
		Usage:     "Search a catalog as you type and browse the results in a grid",
		ArgsUsage: "[initial query]",
		Flags:     globalFlags(),
		Action:    runTUI,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Run one search without the interface and print the results",
				ArgsUsage: "<text>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to print (0 prints all)",
						Value: 20,
					},
				},
				Action: runQuery,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration file path and values",
				Action: runConfig,
			},
		},
	}
}

// globalFlags are shared with every subcommand
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.config/searchy/config.toml)",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Search backend: itunes, algolia or memory",
		},
		&cli.DurationFlag{
			Name:  "debounce",
			Usage: "Quiet interval after the last keystroke before searching",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Log file (the interface owns the terminal)",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Environment file with credentials",
			Value: ".env",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "Log a trace span for every backend call",
		},
		&cli.BoolFlag{
			Name:  "no-transition",
			Usage: "Switch screens without the artwork animation",
		},
	}
}
