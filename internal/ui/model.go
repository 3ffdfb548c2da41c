package ui

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"searchy/internal/config"
	"searchy/internal/domain"
	"searchy/internal/eventbus"
	"searchy/internal/grid"
	"searchy/internal/images"
	"searchy/internal/pipeline"
	"searchy/internal/search"
	"searchy/internal/transition"
	"searchy/internal/ui/views"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusGrid
)

// Deps are the collaborators the controller is built from
type Deps struct {
	Bus     eventbus.EventBus
	Config  *config.Config
	Backend search.Backend
	Images  images.Provider
	Now     func() time.Time // defaults to time.Now
	Query   string           // typed into the input before the first frame
}

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	images images.Provider
	now    func() time.Time

	// UI-specific state
	width   int
	height  int
	focus   focusArea
	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model
	lastErr error

	pipeline *pipeline.Pipeline
	grid     *grid.Grid
	engine   *transition.Engine
	overlay  *transition.Overlay
	nav      navigator

	hiddenCell string // result whose grid artwork is covered by the overlay

	renderer     *views.Renderer
	helpRenderer *HelpRenderer

	// commands produced by callbacks that run inside Update
	queued []tea.Cmd
}

// NewModel creates a new UI model
func NewModel(deps Deps) *Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	bus := deps.Bus
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	input := textinput.New()
	input.Placeholder = "Search albums, artists…"
	input.Prompt = "› "
	input.Focus()
	input.SetValue(deps.Query)

	m := &Model{
		bus:          bus,
		config:       cfg,
		images:       deps.Images,
		now:          now,
		focus:        focusInput,
		keys:         newKeyMap(),
		help:         help.New(),
		input:        input,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		overlay:      &transition.Overlay{},
		renderer:     views.NewRenderer(cfg.Images.CacheSize),
		helpRenderer: NewHelpRenderer(),
	}

	m.pipeline = pipeline.New(deps.Backend, bus, pipeline.Options{
		QuietInterval: cfg.Search.Debounce,
		Timeout:       cfg.Search.Timeout,
	})
	m.grid = grid.New(deps.Images, inputFocus{m: m}, bus, grid.Options{
		Columns:   cfg.Grid.Columns,
		Margin:    cfg.Grid.Margin,
		LabelBand: cfg.Grid.LabelBand,
	})
	m.grid.OnSelect(m.onSelect)
	m.engine = transition.NewEngine(transition.Options{
		Duration:      cfg.Transition.Duration,
		FrameInterval: cfg.Transition.FrameInterval,
		Enabled:       cfg.Transition.Enabled,
	}, bus)

	return m
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if q := m.input.Value(); q != "" {
		cmds = append(cmds, m.pipeline.TextChanged(q))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if len(m.queued) > 0 {
		cmds := append([]tea.Cmd{cmd}, m.queued...)
		m.queued = nil
		return m, tea.Batch(cmds...)
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	if pipeline.Owns(msg) {
		outcome, cmd := m.pipeline.Update(msg)
		return tea.Batch(cmd, m.applyOutcome(outcome))
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return tea.Quit
		}
		if m.nav.top() != nil {
			return m.handleDetailKey(msg)
		}
		if m.focus == focusInput {
			return m.handleInputKey(msg)
		}
		return m.handleGridKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case grid.ImageLoadedMsg:
		m.grid.ApplyImage(msg)
		return nil

	case transition.FrameMsg:
		drv := m.nav.driver
		if drv == nil || !drv.Owns(msg) {
			return nil
		}
		if drv.Advance(msg.Time) {
			return drv.Tick()
		}
		m.finishTransition()
		return nil

	case destinationLaidOutMsg:
		return m.destinationReady(msg.driverID)

	case detailImageMsg:
		top := m.nav.top()
		if top == nil || top.result().ID != msg.resultID {
			return nil
		}
		top.loading = false
		if msg.err != nil {
			log.Printf("UI: detail artwork for %s failed: %v", msg.resultID, msg.err)
			m.bus.Publish(domain.ImageFetchFailedEvent{ImageID: top.result().ImageID, Err: msg.err})
			return nil
		}
		top.data = msg.data
		return nil

	case pagerClosedMsg:
		if msg.err != nil {
			log.Printf("UI: pager failed: %v", msg.err)
		}
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}

	// Cursor blink and anything else the input cares about
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) resize(width, height int) tea.Cmd {
	m.width = width
	m.height = height
	m.help.Width = width
	m.input.Width = max(width-14, 10)

	// Geometry is about to change under any running animation
	if m.nav.driver != nil {
		m.nav.driver.End(false)
		m.finishTransition()
	}
	return m.grid.Resize(width, m.gridRows())
}

func (m *Model) gridRows() int {
	return max(m.height-headerRows-footerRows, 0)
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.FocusGrid):
		if m.grid.CellCount() == 0 {
			return nil
		}
		m.input.Blur()
		m.focus = focusGrid
		return nil

	case key.Matches(msg, m.keys.Search):
		outcome, cmd := m.pipeline.Flush()
		return tea.Batch(cmd, m.applyOutcome(outcome))

	case key.Matches(msg, m.keys.Retry):
		return m.retry()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return tea.Batch(cmd, m.pipeline.TextChanged(after))
	}
	return cmd
}

func (m *Model) handleGridKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.grid.Cursor() < m.grid.Layout().Columns {
			return m.focusInput()
		}
		return m.grid.MoveCursor(0, -1)

	case key.Matches(msg, m.keys.Down):
		return m.grid.MoveCursor(0, 1)

	case key.Matches(msg, m.keys.Left):
		return m.grid.MoveCursor(-1, 0)

	case key.Matches(msg, m.keys.Right):
		return m.grid.MoveCursor(1, 0)

	case key.Matches(msg, m.keys.PageUp):
		return m.grid.ScrollBy(-m.pageRows())

	case key.Matches(msg, m.keys.PageDown):
		return m.grid.ScrollBy(m.pageRows())

	case key.Matches(msg, m.keys.Select):
		m.grid.SelectCursor()
		return nil

	case key.Matches(msg, m.keys.FocusInput), key.Matches(msg, m.keys.Back):
		return m.focusInput()

	case key.Matches(msg, m.keys.Retry):
		return m.retry()

	case key.Matches(msg, m.keys.Help):
		return showInPager(m.helpRenderer.RenderHelpContent(m.keys))
	}
	return nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.back()

	case key.Matches(msg, m.keys.Metadata):
		return showInPager(m.renderer.RenderMetadata(m.nav.top().result()))

	case key.Matches(msg, m.keys.Help):
		return showInPager(m.helpRenderer.RenderHelpContent(m.keys))

	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.nav.top() != nil {
		return nil
	}
	row := msg.Y - headerRows
	if row < 0 || row >= m.gridRows() {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.grid.ScrollBy(-1)
	case tea.MouseButtonWheelDown:
		return m.grid.ScrollBy(1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		if i, ok := m.grid.HitTest(domain.Point{X: msg.X, Y: row * 2}); ok {
			m.grid.Select(i)
		}
	}
	return nil
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	return m.input.Focus()
}

func (m *Model) pageRows() int {
	pitch := m.grid.Layout().Pitch()
	if pitch <= 0 {
		return 1
	}
	return max(m.gridRows()*2/pitch, 1)
}

func (m *Model) retry() tea.Cmd {
	outcome, cmd := m.pipeline.Retry()
	return tea.Batch(cmd, m.applyOutcome(outcome))
}

// applyOutcome moves a pipeline outcome into the grid. A failure empties the
// grid; the status line reports the count as unavailable.
func (m *Model) applyOutcome(o pipeline.Outcome) tea.Cmd {
	switch o.Kind {
	case pipeline.OutcomeResults:
		m.lastErr = nil
		return m.grid.SetResults(o.Set)
	case pipeline.OutcomeFailed:
		m.lastErr = o.Err
		return m.grid.SetResults(domain.SearchResultSet{Query: o.Query, Results: []domain.SearchResult{}})
	}
	return nil
}

// onSelect runs inside grid.Select, after the input lost focus
func (m *Model) onSelect(ev domain.SelectionEvent) {
	screen := &detailScreen{event: ev, loading: true}
	if cell, ok := m.grid.CellContent(ev.Index); ok && cell.Image == grid.ImageReady {
		screen.data = cell.Data
		screen.loading = false
	} else {
		m.queue(m.fetchDetailArt(ev.Result))
	}

	drv := m.engine.NewDriver(ev, transition.Push)
	m.nav.push(screen, drv)
	if err := drv.Start(m.overlay, gridEndpoint{m: m, result: ev.Result}, m.now()); err != nil {
		log.Printf("UI: cannot start transition: %v", err)
		m.nav.release()
		return
	}
	m.queue(laidOut(drv))
}

// back pops the detail screen, or cancels the push still animating towards it
func (m *Model) back() tea.Cmd {
	if drv := m.nav.driver; drv != nil && !drv.State().Terminal() {
		if drv.Direction() == transition.Push {
			drv.End(true)
			m.finishTransition()
			return nil
		}
		drv.End(false)
		m.finishTransition()
	}

	top := m.nav.top()
	if top == nil {
		return nil
	}
	drv := m.engine.NewDriver(top.event, transition.Pop)
	if err := drv.Start(m.overlay, detailEndpoint{m: m, screen: top}, m.now()); err != nil {
		log.Printf("UI: cannot start transition: %v", err)
		m.nav.pop(nil)
		return nil
	}
	m.nav.pop(drv)
	m.focus = focusGrid
	return laidOut(drv)
}

func (m *Model) destinationReady(driverID string) tea.Cmd {
	drv := m.nav.driver
	if drv == nil || drv.Context() == nil || drv.Context().ID != driverID {
		return nil
	}
	var dest transition.Endpoint
	if drv.Direction() == transition.Push {
		dest = detailEndpoint{m: m, screen: m.nav.top()}
	} else {
		dest = gridEndpoint{m: m, result: drv.Event().Result}
	}
	if drv.DestinationReady(dest, m.now()) {
		return drv.Tick()
	}
	m.finishTransition()
	return nil
}

// finishTransition empties the driver slot once the driver is terminal. A
// cancelled push takes its detail screen with it.
func (m *Model) finishTransition() {
	drv := m.nav.driver
	if drv == nil || !drv.State().Terminal() {
		return
	}
	if drv.State() == transition.Cancelled && drv.Direction() == transition.Push {
		m.nav.revert()
		m.focus = focusGrid
	}
	m.nav.release()
}

func (m *Model) fetchDetailArt(result domain.SearchResult) tea.Cmd {
	if m.images == nil || result.ImageID == "" {
		return nil
	}
	provider := m.images
	timeout := m.config.Images.Timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		data, err := provider.Fetch(ctx, result.ImageID)
		return detailImageMsg{resultID: result.ID, data: data, err: err}
	}
}

func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.queued = append(m.queued, cmd)
	}
}

func laidOut(drv *transition.Driver) tea.Cmd {
	id := drv.Context().ID
	return func() tea.Msg {
		return destinationLaidOutMsg{driverID: id}
	}
}

// ResultCount returns the number of results shown. ok is false while the
// latest search has failed and the count is unknown.
func (m *Model) ResultCount() (count int, ok bool) {
	if m.pipeline.Failed() {
		return 0, false
	}
	return m.grid.CellCount(), true
}

func (m *Model) statusView() views.StatusView {
	q := m.pipeline.Latest()
	s := views.StatusView{Query: q.Text, Spinner: m.spinner.View()}
	switch {
	case m.pipeline.InFlight():
		s.Kind = views.StatusSearching
	case m.pipeline.Failed():
		s.Kind = views.StatusFailed
		s.Err = m.lastErr
	case q.Blank():
		s.Kind = views.StatusIdle
	case m.grid.CellCount() == 0:
		s.Kind = views.StatusEmpty
	default:
		s.Kind = views.StatusResults
		s.Count = m.grid.CellCount()
	}
	return s
}

// View renders the current screen with the transition overlay on top
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}

	var base string
	if top := m.nav.top(); top != nil {
		base = m.renderer.RenderDetail(views.DetailView{
			Result:  top.result(),
			Data:    top.data,
			Loading: top.loading,
			ArtRect: detailArtRect(m.width, m.height),
			HideArt: top.hidden,
			Width:   m.width,
			Height:  m.height,
			Footer:  m.help.ShortHelpView(m.keys.detailHelp()),
		})
	} else {
		styles := m.renderer.Styles()
		bindings := m.keys.inputHelp()
		if m.focus == focusGrid {
			bindings = m.keys.gridHelp()
		}
		lines := []string{
			styles.Title.Render("searchy") + " " + m.input.View(),
			m.renderer.RenderStatus(m.statusView()),
			m.renderer.RenderGrid(views.GridView{
				Grid:     m.grid,
				Width:    m.width,
				Height:   m.gridRows(),
				HiddenID: m.hiddenCell,
				Focused:  m.focus == focusGrid,
			}),
			m.help.ShortHelpView(bindings),
		}
		base = views.CanvasFrom(strings.Join(lines, "\n"), m.width, m.height).String()
	}

	if snap, frame, ok := m.overlay.Current(); ok {
		base = m.renderer.RenderOverlay(base, m.width, m.height, snap, frame)
	}
	return base
}
