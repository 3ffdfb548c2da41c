package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"searchy/internal/domain"
	"searchy/internal/grid"
	"searchy/internal/images"
	"searchy/internal/transition"
)

// StatusKind is what the status line is reporting
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusSearching
	StatusResults
	StatusEmpty
	StatusFailed
)

// StatusView contains the state needed for the status line
type StatusView struct {
	Kind    StatusKind
	Query   string
	Count   int
	Err     error
	Spinner string
}

// GridView contains the state needed to draw the result grid
type GridView struct {
	Grid     *grid.Grid
	Width    int // terminal columns
	Height   int // terminal rows
	HiddenID string
	Focused  bool
}

// DetailView contains the state needed to draw the detail screen
type DetailView struct {
	Result  domain.SearchResult
	Data    []byte
	Loading bool
	ArtRect domain.Rect // screen points
	HideArt bool
	Width   int
	Height  int
	Footer  string
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
	thumbs *ThumbCache
}

// NewRenderer creates a new renderer keeping up to cacheSize rendered thumbnails
func NewRenderer(cacheSize int) *Renderer {
	return &Renderer{
		styles: NewStyles(),
		thumbs: NewThumbCache(cacheSize),
	}
}

// Styles returns the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// RenderStatus renders the one-line search status. A failed search reads
// differently from a search with no matches.
func (r *Renderer) RenderStatus(s StatusView) string {
	switch s.Kind {
	case StatusSearching:
		return r.styles.StatusLoading.Render(fmt.Sprintf("%s Searching for %q…", s.Spinner, s.Query))
	case StatusResults:
		noun := "results"
		if s.Count == 1 {
			noun = "result"
		}
		return r.styles.StatusSuccess.Render(fmt.Sprintf("%d %s for %q", s.Count, noun, s.Query))
	case StatusEmpty:
		return r.styles.Status.Render(fmt.Sprintf("No matches for %q", s.Query))
	case StatusFailed:
		msg := "Search failed"
		if s.Err != nil {
			msg = fmt.Sprintf("Search failed: %v", s.Err)
		}
		return r.styles.StatusError.Render(msg + " (results unavailable) · ctrl+r to retry")
	default:
		return r.styles.Status.Render("Type to search")
	}
}

// RenderGrid draws the visible cells of the grid into a Width x Height block
func (r *Renderer) RenderGrid(v GridView) string {
	canvas := NewCanvas(v.Width, v.Height)
	if v.Grid == nil {
		return canvas.String()
	}
	for _, i := range v.Grid.Visible() {
		cell, ok := v.Grid.CellContent(i)
		if !ok {
			continue
		}
		col, row := cell.ImageArt.X, cell.ImageArt.Y/2
		w := cell.ImageArt.W
		artRows := domain.RowsFor(cell.ImageArt.H)

		if cell.Result.ID != v.HiddenID {
			canvas.Place(r.cellArt(cell, w, artRows), col, row)
		}

		titleStyle := r.styles.CellTitle
		if v.Focused && i == v.Grid.Cursor() {
			titleStyle = r.styles.CursorTitle
		}
		canvas.Place(titleStyle.Render(ansi.Truncate(cell.Result.Title, w, "…")), col, row+artRows)
		canvas.Place(r.styles.CellSubtitle.Render(ansi.Truncate(cell.Result.Subtitle, w, "…")), col, row+artRows+1)
	}
	return canvas.String()
}

func (r *Renderer) cellArt(cell grid.Cell, cols, rows int) string {
	switch cell.Image {
	case grid.ImageReady:
		if art, ok := r.thumbs.Render(cell.Result.ImageID, cell.Data, cols, rows); ok {
			return art
		}
		return images.Placeholder(cols, rows, "·", "no art", r.styles.Failed)
	case grid.ImageFailed:
		return images.Placeholder(cols, rows, "·", "no art", r.styles.Failed)
	default:
		return images.Placeholder(cols, rows, "░", "…", r.styles.Placeholder)
	}
}

// RenderDetail draws the detail screen for one result
func (r *Renderer) RenderDetail(v DetailView) string {
	canvas := NewCanvas(v.Width, v.Height)
	canvas.Place(r.styles.DetailTitle.Render(ansi.Truncate(v.Result.Title, max(v.Width-2, 0), "…")), 1, 0)

	art := v.ArtRect
	cols, rows := art.W, domain.RowsFor(art.H)
	if !art.Empty() && !v.HideArt {
		var block string
		switch {
		case v.Data != nil:
			if rendered, ok := r.thumbs.Render(v.Result.ImageID, v.Data, cols, rows); ok {
				block = rendered
			} else {
				block = images.Placeholder(cols, rows, "·", "no art", r.styles.Failed)
			}
		case v.Loading:
			block = images.Placeholder(cols, rows, "░", "…", r.styles.Placeholder)
		default:
			block = images.Placeholder(cols, rows, "·", "no art", r.styles.Failed)
		}
		canvas.Place(block, art.X, art.Y/2)
	}

	textCol := art.X + art.W + 3
	row := art.Y / 2
	for _, f := range MetadataFields(v.Result) {
		canvas.Place(r.styles.DetailLabel.Render(f[0]), textCol, row)
		canvas.Place(r.styles.DetailValue.Render(f[1]), textCol, row+1)
		row += 3
	}
	if v.Footer != "" {
		canvas.Place(v.Footer, 1, v.Height-1)
	}
	return canvas.String()
}

// RenderOverlay draws snap at frame on top of base
func (r *Renderer) RenderOverlay(base string, width, height int, snap transition.Snapshot, frame domain.Rect) string {
	if frame.Empty() {
		return base
	}
	cols, rows := frame.W, domain.RowsFor(frame.H)
	block := snap.Fallback
	if snap.Data != nil {
		if art, ok := r.thumbs.Render("snapshot:"+snap.ResultID, snap.Data, cols, rows); ok {
			block = art
		}
	}
	if block == "" {
		block = images.Placeholder(cols, rows, "▒", "", r.styles.Placeholder)
	}
	canvas := CanvasFrom(base, width, height)
	canvas.Place(block, frame.X, frame.Y/2)
	return canvas.String()
}

// MetadataFields returns the label/value pairs shown for a result, skipping empty ones
func MetadataFields(res domain.SearchResult) [][2]string {
	all := [][2]string{
		{"Artist", res.Subtitle},
		{"Kind", res.Kind},
		{"Genre", res.Genre},
		{"Released", res.ReleaseDate},
		{"Price", res.Price},
	}
	out := make([][2]string, 0, len(all))
	for _, f := range all {
		if strings.TrimSpace(f[1]) != "" {
			out = append(out, f)
		}
	}
	return out
}

// RenderMetadata renders every field of a result for the pager
func (r *Renderer) RenderMetadata(res domain.SearchResult) string {
	var b strings.Builder
	b.WriteString(r.styles.DetailTitle.Render(res.Title))
	b.WriteString("\n\n")
	fields := append(MetadataFields(res),
		[2]string{"ID", res.ID},
		[2]string{"Artwork", res.ImageID},
		[2]string{"Preview", res.PreviewURL},
		[2]string{"Link", res.ViewURL},
	)
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f[0]))
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		label := f[0] + strings.Repeat(" ", width-lipgloss.Width(f[0]))
		b.WriteString(fmt.Sprintf("  %s  %s\n", r.styles.DetailLabel.Render(label), f[1]))
	}
	return b.String()
}
