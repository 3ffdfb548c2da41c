package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

// RenderHelpContent generates the key help shown in the pager
func (r *HelpRenderer) RenderHelpContent(keys keyMap) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sections := []struct {
		name  string
		lines [][2]string
	}{
		{"Search", [][2]string{
			{"type", "Edit the query, results follow after a short pause"},
			{keys.Search.Help().Key, "Search immediately"},
			{keys.FocusGrid.Help().Key + "/↓", "Move to the results"},
			{keys.FocusInput.Help().Key, "Back to the query"},
			{keys.Retry.Help().Key, "Retry a failed search"},
		}},
		{"Results", [][2]string{
			{"↑/↓, k/j", "Move up/down"},
			{"←/→, h/l", "Move left/right"},
			{"PgUp/PgDn", "Scroll a page"},
			{keys.Select.Help().Key + "/click", "Open the result"},
		}},
		{"Detail", [][2]string{
			{keys.Back.Help().Key, "Back to the results"},
			{keys.Metadata.Help().Key, "Show all metadata"},
		}},
		{"Other", [][2]string{
			{keys.Help.Help().Key, "Show this help"},
			{keys.Quit.Help().Key + ", ctrl+c", "Quit"},
		}},
	}

	width := 0
	for _, s := range sections {
		for _, l := range s.lines {
			width = max(width, lipgloss.Width(l[0]))
		}
	}

	var help strings.Builder
	help.WriteString(titleStyle.Render("searchy help"))
	help.WriteString("\n")
	for _, s := range sections {
		help.WriteString(sectionStyle.Render(s.name))
		help.WriteString("\n")
		for _, l := range s.lines {
			pad := strings.Repeat(" ", width-lipgloss.Width(l[0]))
			help.WriteString(fmt.Sprintf("  %s%s  %s\n", keyStyle.Render(l[0]), pad, descStyle.Render(l[1])))
		}
		help.WriteString("\n")
	}
	return help.String()
}

// pagerCommand runs the ov pager over content. It satisfies tea.ExecCommand
// so bubbletea releases the terminal for the pager and restores it afterwards.
type pagerCommand struct {
	content string
}

func (p *pagerCommand) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(p.content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	err = root.Run()
	// Small delay to ensure ov has fully exited before the program redraws
	time.Sleep(50 * time.Millisecond)
	return err
}

// ov talks to the terminal itself
func (p *pagerCommand) SetStdin(io.Reader)  {}
func (p *pagerCommand) SetStdout(io.Writer) {}
func (p *pagerCommand) SetStderr(io.Writer) {}

// showInPager returns a command that hands the terminal to ov
func showInPager(content string) tea.Cmd {
	return tea.Exec(&pagerCommand{content: content}, func(err error) tea.Msg {
		return pagerClosedMsg{err: err}
	})
}
