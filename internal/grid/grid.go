// Package grid binds a search result set to a two-column grid of cells.
//
// The grid keeps a fixed ring of cell slots for the rows that can be on
// screen. Scrolling rebinds only the slots whose item changed; every bind
// bumps the slot generation so an artwork fetch started for a previous
// binding is recognised and dropped when it lands. State is only touched
// from the bubbletea Update loop.
package grid

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"

	"searchy/internal/domain"
	"searchy/internal/eventbus"
	"searchy/internal/images"
)

// ImageState is the artwork state of a cell
type ImageState int

const (
	ImageLoading ImageState = iota
	ImageReady
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImageReady:
		return "ready"
	case ImageFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Cell is the display-ready projection of one result
type Cell struct {
	Index    int
	Result   domain.SearchResult
	Image    ImageState
	Data     []byte
	Rect     domain.Rect // whole cell, viewport coordinates
	ImageArt domain.Rect // artwork area, viewport coordinates
}

// Focus is whatever holds text input focus while the user types
type Focus interface {
	Blur()
}

// ImageLoadedMsg carries a finished artwork fetch back to the loop
type ImageLoadedMsg struct {
	Slot     int
	ResultID string
	Gen      uint64
	Data     []byte
	Err      error
}

// Options configures the grid
type Options struct {
	Columns   int
	Margin    int
	LabelBand int
}

// DefaultOptions matches the shipped config
func DefaultOptions() Options {
	return Options{Columns: 2, Margin: 2, LabelBand: 4}
}

type slot struct {
	index    int // bound result index, -1 when free
	resultID string
	gen      uint64
	state    ImageState
	data     []byte
	cancel   context.CancelFunc
}

func (s *slot) unbind() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.index = -1
	s.resultID = ""
	s.state = ImageLoading
	s.data = nil
}

// Grid is the result grid
type Grid struct {
	provider images.Provider
	focus    Focus
	bus      eventbus.EventBus
	opts     Options

	layout Layout
	set    domain.SearchResultSet
	byID   map[string]int

	cursor   int
	firstRow int

	slots   []slot
	nextGen uint64

	subscribers []func(domain.SelectionEvent)
}

// New creates an empty grid. provider may be nil, in which case every cell shows a placeholder.
func New(provider images.Provider, focus Focus, bus eventbus.EventBus, opts Options) *Grid {
	if opts.Columns <= 0 {
		opts.Columns = DefaultOptions().Columns
	}
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	g := &Grid{
		provider: provider,
		focus:    focus,
		bus:      bus,
		opts:     opts,
		byID:     map[string]int{},
		cursor:   -1,
	}
	g.layout = NewLayout(0, 0, opts.Columns, opts.Margin, opts.LabelBand)
	return g
}

// OnSelect registers fn to receive selection events
func (g *Grid) OnSelect(fn func(domain.SelectionEvent)) {
	g.subscribers = append(g.subscribers, fn)
}

// SetResults replaces the current set wholesale and reloads every cell
func (g *Grid) SetResults(set domain.SearchResultSet) tea.Cmd {
	for i := range g.slots {
		g.slots[i].unbind()
	}
	g.set = set
	g.byID = make(map[string]int, len(set.Results))
	for i, r := range set.Results {
		if _, dup := g.byID[r.ID]; !dup {
			g.byID[r.ID] = i
		}
	}
	g.firstRow = 0
	g.cursor = -1
	if len(set.Results) > 0 {
		g.cursor = 0
	}
	log.Printf("Grid: reload seq=%d with %d cells", set.Query.Seq, len(set.Results))
	return g.rebind(nil)
}

// Clear replaces the current set with the empty set
func (g *Grid) Clear() {
	g.SetResults(domain.SearchResultSet{Results: []domain.SearchResult{}})
}

// Set returns the current result set
func (g *Grid) Set() domain.SearchResultSet {
	return g.set
}

// Resize lays the grid out for a container of cols x rows terminal cells
func (g *Grid) Resize(cols, rows int) tea.Cmd {
	g.layout = NewLayout(cols, rows*2, g.opts.Columns, g.opts.Margin, g.opts.LabelBand)

	// Carry finished artwork over to the new slots instead of fetching it again
	carry := map[string][]byte{}
	for i := range g.slots {
		s := &g.slots[i]
		if s.index >= 0 && s.state == ImageReady {
			carry[s.resultID] = s.data
		}
		s.unbind()
	}
	g.slots = nil
	g.clampScroll()
	g.ensureCursorVisible()
	return g.rebind(carry)
}

// Layout returns the current layout
func (g *Grid) Layout() Layout {
	return g.layout
}

// CellCount returns the size of the current set
func (g *Grid) CellCount() int {
	return len(g.set.Results)
}

// CellContent returns the projection of the result at index
func (g *Grid) CellContent(index int) (Cell, bool) {
	if index < 0 || index >= len(g.set.Results) {
		return Cell{}, false
	}
	c := Cell{
		Index:    index,
		Result:   g.set.Results[index],
		Image:    ImageLoading,
		Rect:     g.toViewport(g.layout.CellRect(index)),
		ImageArt: g.toViewport(g.layout.ImageRect(index)),
	}
	if s := g.slotFor(index); s != nil {
		c.Image = s.state
		c.Data = s.data
	}
	return c, true
}

// Visible returns the indices of the cells that intersect the viewport
func (g *Grid) Visible() []int {
	if !g.layout.Valid() {
		return nil
	}
	first := g.firstRow * g.layout.Columns
	last := first + g.layout.VisibleRows()*g.layout.Columns
	if last > len(g.set.Results) {
		last = len(g.set.Results)
	}
	if last <= first {
		return nil
	}
	view := g.viewport()
	out := make([]int, 0, last-first)
	for i := first; i < last; i++ {
		if g.toViewport(g.layout.CellRect(i)).Intersects(view) {
			out = append(out, i)
		}
	}
	return out
}

// ApplyImage stores a finished fetch if its slot is still bound to the same
// item and generation. It reports whether the result was applied.
func (g *Grid) ApplyImage(msg ImageLoadedMsg) bool {
	if msg.Slot < 0 || msg.Slot >= len(g.slots) {
		return false
	}
	s := &g.slots[msg.Slot]
	if s.index < 0 || s.resultID != msg.ResultID || s.gen != msg.Gen {
		log.Printf("Grid: discarding artwork for %s (slot %d recycled)", msg.ResultID, msg.Slot)
		return false
	}
	s.cancel = nil
	if msg.Err != nil {
		s.state = ImageFailed
		s.data = nil
		result := g.set.Results[s.index]
		log.Printf("Grid: artwork for %s failed: %v", msg.ResultID, msg.Err)
		g.bus.Publish(domain.ImageFetchFailedEvent{ImageID: result.ImageID, Err: msg.Err})
		return true
	}
	s.state = ImageReady
	s.data = msg.Data
	return true
}

// Cursor returns the highlighted index, or -1 when the grid is empty
func (g *Grid) Cursor() int {
	return g.cursor
}

// MoveCursor moves the highlight by dx columns and dy rows and scrolls to keep it visible
func (g *Grid) MoveCursor(dx, dy int) tea.Cmd {
	n := len(g.set.Results)
	if n == 0 {
		return nil
	}
	next := g.cursor + dx + dy*g.layout.Columns
	if next < 0 {
		next = 0
	}
	if next >= n {
		next = n - 1
	}
	g.cursor = next
	if g.ensureCursorVisible() {
		return g.rebind(nil)
	}
	return nil
}

// ScrollBy scrolls the viewport by rows grid rows
func (g *Grid) ScrollBy(rows int) tea.Cmd {
	before := g.firstRow
	g.firstRow += rows
	g.clampScroll()
	if g.firstRow == before {
		return nil
	}
	// Keep the cursor on screen
	if g.cursor >= 0 {
		fully := g.fullyVisibleRows()
		row := g.cursor / g.layout.Columns
		col := g.cursor % g.layout.Columns
		if row < g.firstRow {
			row = g.firstRow
		} else if row >= g.firstRow+fully {
			row = g.firstRow + fully - 1
		}
		g.cursor = min(row*g.layout.Columns+col, len(g.set.Results)-1)
	}
	return g.rebind(nil)
}

// ScrollY returns the viewport offset into the content, in points
func (g *Grid) ScrollY() int {
	return g.firstRow * g.layout.Pitch()
}

// Select activates the cell at index. Text focus is dismissed before any
// subscriber sees the event.
func (g *Grid) Select(index int) (domain.SelectionEvent, bool) {
	if index < 0 || index >= len(g.set.Results) {
		return domain.SelectionEvent{}, false
	}
	if g.focus != nil {
		g.focus.Blur()
	}
	g.cursor = index

	result := g.set.Results[index]
	rect, _ := g.GeometryForItem(result)
	ev := domain.SelectionEvent{Result: result, Index: index, Rect: rect}

	log.Printf("Grid: selected %s at %d rect=%+v", result.ID, index, rect)
	g.bus.Publish(domain.ItemSelectedEvent{Selection: ev})
	for _, fn := range g.subscribers {
		fn(ev)
	}
	return ev, true
}

// SelectCursor activates the highlighted cell
func (g *Grid) SelectCursor() (domain.SelectionEvent, bool) {
	return g.Select(g.cursor)
}

// HitTest maps a viewport point to the index of the cell under it
func (g *Grid) HitTest(p domain.Point) (int, bool) {
	for _, i := range g.Visible() {
		if g.toViewport(g.layout.CellRect(i)).Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// GeometryForItem returns the on-screen artwork rect of result in viewport
// coordinates. It returns the zero Rect and false when the item is not in
// the current set or not within the viewport.
func (g *Grid) GeometryForItem(result domain.SearchResult) (domain.Rect, bool) {
	i, ok := g.byID[result.ID]
	if !ok || i >= len(g.set.Results) || !g.set.Results[i].SameItem(result) {
		return domain.Rect{}, false
	}
	rect := g.toViewport(g.layout.ImageRect(i))
	if !rect.Intersects(g.viewport()) {
		return domain.Rect{}, false
	}
	return rect, true
}

func (g *Grid) viewport() domain.Rect {
	return domain.Rect{W: g.layout.Width, H: g.layout.Height}
}

func (g *Grid) toViewport(r domain.Rect) domain.Rect {
	if r.Empty() {
		return domain.Rect{}
	}
	return r.Offset(0, -g.ScrollY())
}

func (g *Grid) fullyVisibleRows() int {
	if !g.layout.Valid() {
		return 1
	}
	n := (g.layout.Height - g.layout.Margin) / g.layout.Pitch()
	return max(n, 1)
}

func (g *Grid) clampScroll() {
	maxFirst := max(g.layout.Rows(len(g.set.Results))-g.fullyVisibleRows(), 0)
	g.firstRow = min(max(g.firstRow, 0), maxFirst)
}

// ensureCursorVisible scrolls so the cursor row is fully visible and reports whether it scrolled
func (g *Grid) ensureCursorVisible() bool {
	if g.cursor < 0 || !g.layout.Valid() {
		return false
	}
	before := g.firstRow
	row := g.cursor / g.layout.Columns
	fully := g.fullyVisibleRows()
	if row < g.firstRow {
		g.firstRow = row
	} else if row >= g.firstRow+fully {
		g.firstRow = row - fully + 1
	}
	g.clampScroll()
	return g.firstRow != before
}

func (g *Grid) slotFor(index int) *slot {
	if len(g.slots) == 0 {
		return nil
	}
	s := &g.slots[index%len(g.slots)]
	if s.index != index {
		return nil
	}
	return s
}

// rebind binds every visible index to its ring slot. Slots already holding
// the right item are left alone; the rest are recycled and start a fetch.
func (g *Grid) rebind(carry map[string][]byte) tea.Cmd {
	want := g.layout.VisibleRows() * g.layout.Columns
	if len(g.slots) != want {
		for i := range g.slots {
			g.slots[i].unbind()
		}
		g.slots = make([]slot, want)
		for i := range g.slots {
			g.slots[i].index = -1
		}
	}
	if want == 0 {
		return nil
	}

	visible := g.Visible()
	bound := make(map[int]bool, len(visible))
	var cmds []tea.Cmd
	for _, idx := range visible {
		k := idx % len(g.slots)
		bound[k] = true
		s := &g.slots[k]
		result := g.set.Results[idx]
		if s.index == idx && s.resultID == result.ID {
			continue
		}
		s.unbind()
		g.nextGen++
		s.index = idx
		s.resultID = result.ID
		s.gen = g.nextGen

		if data, ok := carry[result.ID]; ok {
			s.state = ImageReady
			s.data = data
			continue
		}
		if cmd := g.fetch(k, s, result); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	// Free slots that scrolled out without being reused
	for k := range g.slots {
		if !bound[k] && g.slots[k].index >= 0 {
			g.slots[k].unbind()
		}
	}
	return tea.Batch(cmds...)
}

func (g *Grid) fetch(k int, s *slot, result domain.SearchResult) tea.Cmd {
	if g.provider == nil || result.ImageID == "" {
		s.state = ImageFailed
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	provider := g.provider
	msg := ImageLoadedMsg{Slot: k, ResultID: result.ID, Gen: s.gen}
	imageID := result.ImageID
	return func() tea.Msg {
		defer cancel()
		data, err := provider.Fetch(ctx, imageID)
		if err != nil {
			msg.Err = errors.Wrapf(err, "artwork for %s", msg.ResultID)
		}
		msg.Data = data
		return msg
	}
}
