package grid

import "searchy/internal/domain"

// Layout places cells in a fixed-column grid. All values are points.
type Layout struct {
	Columns   int
	Margin    int
	LabelBand int

	Width  int // container width
	Height int // container height

	CellW int
	CellH int
}

// NewLayout computes the cell size for a container of width x height points.
// A container too narrow for a single point of cell width gets a zero-size
// layout, which lays out nothing.
func NewLayout(width, height, columns, margin, labelBand int) Layout {
	if columns <= 0 {
		columns = 2
	}
	l := Layout{
		Columns:   columns,
		Margin:    margin,
		LabelBand: labelBand,
		Width:     width,
		Height:    height,
	}
	cw := (width - (columns+1)*margin) / columns
	if cw <= 0 || height <= 0 {
		return l
	}
	l.CellW = cw
	l.CellH = cw + labelBand
	return l
}

// Valid reports whether the layout can place at least one cell
func (l Layout) Valid() bool {
	return l.CellW > 0 && l.CellH > 0
}

// Pitch is the vertical distance between the tops of adjacent rows, rounded
// up to a whole terminal row so every row starts on a character boundary.
func (l Layout) Pitch() int {
	p := l.CellH + l.Margin
	if p%2 != 0 {
		p++
	}
	return p
}

// Rows returns the number of grid rows needed for n cells
func (l Layout) Rows(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + l.Columns - 1) / l.Columns
}

// ContentHeight is the height of n cells plus the trailing margin
func (l Layout) ContentHeight(n int) int {
	return l.Rows(n)*l.Pitch() + l.Margin
}

// VisibleRows is the number of grid rows that can intersect the viewport at once
func (l Layout) VisibleRows() int {
	if !l.Valid() {
		return 0
	}
	pitch := l.Pitch()
	return (l.Height+pitch-1)/pitch + 1
}

// CellRect returns the rect of cell i in content coordinates
func (l Layout) CellRect(i int) domain.Rect {
	if !l.Valid() || i < 0 {
		return domain.Rect{}
	}
	row, col := i/l.Columns, i%l.Columns
	return domain.Rect{
		X: l.Margin + col*(l.CellW+l.Margin),
		Y: l.Margin + row*l.Pitch(),
		W: l.CellW,
		H: l.CellH,
	}
}

// ImageRect returns the square artwork area at the top of cell i
func (l Layout) ImageRect(i int) domain.Rect {
	r := l.CellRect(i)
	if r.Empty() {
		return domain.Rect{}
	}
	r.H = l.CellW
	return r
}
