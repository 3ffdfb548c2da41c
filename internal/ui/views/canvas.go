package views

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Canvas is a fixed-size block of styled terminal lines that blocks can be
// pasted into at a column/row position
type Canvas struct {
	width int
	lines []string
}

// NewCanvas creates a blank width x height canvas
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{width: max(width, 0), lines: make([]string, max(height, 0))}
	blank := strings.Repeat(" ", c.width)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// CanvasFrom wraps already rendered content, padding or cutting it to width x height
func CanvasFrom(content string, width, height int) *Canvas {
	c := NewCanvas(width, height)
	for i, line := range strings.Split(content, "\n") {
		if i >= len(c.lines) {
			break
		}
		c.lines[i] = fit(line, c.width)
	}
	return c
}

// Place pastes block with its top-left corner at col, row. Whatever falls
// outside the canvas is clipped.
func (c *Canvas) Place(block string, col, row int) {
	if block == "" || col >= c.width {
		return
	}
	for i, bl := range strings.Split(block, "\n") {
		r := row + i
		if r < 0 || r >= len(c.lines) {
			continue
		}
		start := col
		if start < 0 {
			bl = ansi.Cut(bl, -start, ansi.StringWidth(bl))
			start = 0
		}
		bl = ansi.Truncate(bl, c.width-start, "")
		w := ansi.StringWidth(bl)
		if w == 0 {
			continue
		}
		base := c.lines[r]
		c.lines[r] = ansi.Cut(base, 0, start) + bl + ansi.Cut(base, start+w, c.width)
	}
}

// String joins the canvas lines
func (c *Canvas) String() string {
	return strings.Join(c.lines, "\n")
}

// fit pads or truncates s to exactly w columns
func fit(s string, w int) string {
	sw := ansi.StringWidth(s)
	if sw > w {
		return ansi.Truncate(s, w, "")
	}
	return s + strings.Repeat(" ", w-sw)
}
