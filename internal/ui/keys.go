package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds every binding the controller reacts to
type keyMap struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	FocusGrid  key.Binding
	FocusInput key.Binding
	Search     key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Select     key.Binding
	Back       key.Binding
	Retry      key.Binding
	Help       key.Binding
	Metadata   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		FocusGrid:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "results")),
		FocusInput: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Search:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search now")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Retry:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "retry")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Metadata:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "metadata")),
	}
}

// inputHelp is shown while the query input has focus
func (k keyMap) inputHelp() []key.Binding {
	return []key.Binding{k.Search, k.FocusGrid, k.Retry, k.ForceQuit}
}

// gridHelp is shown while the grid has focus
func (k keyMap) gridHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Select, k.FocusInput, k.Help, k.Quit}
}

// detailHelp is shown on the detail screen
func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Back, k.Metadata, k.Quit}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return k.gridHelp()
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.FocusGrid, k.FocusInput, k.Retry},
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown},
		{k.Select, k.Back, k.Metadata},
		{k.Help, k.Quit, k.ForceQuit},
	}
}
