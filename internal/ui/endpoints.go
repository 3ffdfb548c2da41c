package ui

import (
	"searchy/internal/domain"
	"searchy/internal/grid"
	"searchy/internal/transition"
)

// inputFocus lets the grid dismiss the query input before it reports a selection
type inputFocus struct {
	m *Model
}

func (f inputFocus) Blur() {
	f.m.input.Blur()
	f.m.focus = focusGrid
}

// gridEndpoint is a result's cell on the search screen. Geometry is pulled
// from the grid on every call, so a cell that scrolled away reports no rect.
type gridEndpoint struct {
	m      *Model
	result domain.SearchResult
}

func (e gridEndpoint) ImageRect() (domain.Rect, bool) {
	r, ok := e.m.grid.GeometryForItem(e.result)
	if !ok {
		return domain.Rect{}, false
	}
	return r.Offset(0, headerRows*2), true
}

func (e gridEndpoint) Snapshot() transition.Snapshot {
	snap := transition.Snapshot{ResultID: e.result.ID}
	if i := e.m.grid.Set().IndexOf(e.result.ID); i >= 0 {
		if cell, ok := e.m.grid.CellContent(i); ok && cell.Image == grid.ImageReady {
			snap.Data = cell.Data
		}
	}
	return snap
}

func (e gridEndpoint) SetImageHidden(hidden bool) {
	switch {
	case hidden:
		e.m.hiddenCell = e.result.ID
	case e.m.hiddenCell == e.result.ID:
		e.m.hiddenCell = ""
	}
}

// detailEndpoint is the artwork of one detail screen
type detailEndpoint struct {
	m      *Model
	screen *detailScreen
}

func (e detailEndpoint) ImageRect() (domain.Rect, bool) {
	if e.screen == nil {
		return domain.Rect{}, false
	}
	r := detailArtRect(e.m.width, e.m.height)
	return r, !r.Empty()
}

func (e detailEndpoint) Snapshot() transition.Snapshot {
	if e.screen == nil {
		return transition.Snapshot{}
	}
	return transition.Snapshot{ResultID: e.screen.result().ID, Data: e.screen.data}
}

func (e detailEndpoint) SetImageHidden(hidden bool) {
	if e.screen != nil {
		e.screen.hidden = hidden
	}
}
