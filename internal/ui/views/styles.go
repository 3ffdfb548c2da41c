package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Help          lipgloss.Style
	CellTitle     lipgloss.Style
	CellSubtitle  lipgloss.Style
	CursorTitle   lipgloss.Style
	Placeholder   lipgloss.Style
	Failed        lipgloss.Style
	DetailTitle   lipgloss.Style
	DetailLabel   lipgloss.Style
	DetailValue   lipgloss.Style
	StatusError   lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Dim:          lipgloss.NewStyle().Faint(true),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Help:         lipgloss.NewStyle().Faint(true),
		CellTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		CellSubtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		CursorTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")).
			Background(lipgloss.Color("238")),
		Placeholder:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Failed:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		DetailTitle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		DetailLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		DetailValue:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}
