package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"searchy/internal/search"
	"searchy/internal/ui"
)

// runTUI starts the interactive search screen
func runTUI(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	model := ui.NewModel(ui.Deps{
		Bus:     a.bus,
		Config:  a.cfg,
		Backend: a.backend,
		Images:  a.images,
		Query:   strings.Join(cmd.Args().Slice(), " "),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Printf("Error running program: %v", err)
		return fmt.Errorf("running program: %w", err)
	}
	log.Printf("UI exited normally")
	return nil
}

// runQuery searches once and prints a table of results
func runQuery(ctx context.Context, cmd *cli.Command) error {
	text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if text == "" {
		return errors.New("query: missing search text")
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Search.Timeout)
		defer cancel()
	}

	results, err := a.backend.Search(ctx, text)
	if err != nil {
		if errors.Is(err, search.ErrBackendUnavailable) {
			return errors.Wrapf(err, "search %q: backend %s unavailable", text, a.cfg.Search.Backend)
		}
		return errors.Wrapf(err, "search %q", text)
	}

	if len(results) == 0 {
		fmt.Fprintf(cmd.Root().Writer, "No matches for %q\n", text)
		return nil
	}
	if limit := cmd.Int("limit"); limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("#", "TITLE", "ARTIST", "ID")
	for i, r := range results {
		t.Row(strconv.Itoa(i+1), r.Title, r.Subtitle, r.ID)
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, t.String())
	return err
}

// runConfig prints where the configuration lives and what it resolved to
func runConfig(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := toml.Marshal(map[string]any{
		"search": map[string]any{
			"backend":  a.cfg.Search.Backend,
			"debounce": a.cfg.Search.Debounce.String(),
			"timeout":  a.cfg.Search.Timeout.String(),
			"limit":    a.cfg.Search.Limit,
		},
		"images": map[string]any{
			"cache_size": a.cfg.Images.CacheSize,
			"timeout":    a.cfg.Images.Timeout.String(),
		},
		"transition": map[string]any{
			"enabled":  a.cfg.Transition.Enabled,
			"duration": a.cfg.Transition.Duration.String(),
		},
		"log": map[string]any{
			"file":  a.cfg.Log.File,
			"trace": a.cfg.Log.Trace,
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "# %s\n%s", a.cfgPath, data)
	return nil
}
