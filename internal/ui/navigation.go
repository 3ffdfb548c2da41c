package ui

import (
	"log"

	"searchy/internal/domain"
	"searchy/internal/transition"
)

// Search screen layout, in terminal rows
const (
	headerRows = 2 // title + input, status line
	footerRows = 1 // key help
)

// detailScreen is one pushed result
type detailScreen struct {
	event   domain.SelectionEvent
	data    []byte
	loading bool
	hidden  bool
}

func (d *detailScreen) result() domain.SearchResult {
	return d.event.Result
}

// detailArtRect is where the detail screen draws its artwork, in screen points
func detailArtRect(width, height int) domain.Rect {
	side := min(width/2-4, (height-4)*2)
	if side%2 != 0 {
		side--
	}
	if side < 4 {
		return domain.Rect{}
	}
	return domain.Rect{X: 2, Y: 4, W: side, H: side}
}

// navigator is the screen stack above the search screen plus the one slot
// for the driver animating the latest push or pop
type navigator struct {
	stack  []*detailScreen
	driver *transition.Driver
}

// push puts d on top and hands the transition slot to driver. Whatever was
// in the slot is finished first.
func (n *navigator) push(d *detailScreen, driver *transition.Driver) {
	n.settle()
	n.stack = append(n.stack, d)
	n.driver = driver
}

// pop removes the top screen and hands the transition slot to driver
func (n *navigator) pop(driver *transition.Driver) *detailScreen {
	n.settle()
	if len(n.stack) == 0 {
		return nil
	}
	top := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	n.driver = driver
	return top
}

// revert drops the top screen without a transition
func (n *navigator) revert() {
	if len(n.stack) > 0 {
		n.stack = n.stack[:len(n.stack)-1]
	}
}

func (n *navigator) top() *detailScreen {
	if len(n.stack) == 0 {
		return nil
	}
	return n.stack[len(n.stack)-1]
}

func (n *navigator) depth() int {
	return len(n.stack)
}

// release empties the driver slot
func (n *navigator) release() {
	if n.driver != nil {
		n.driver.Release()
		n.driver = nil
	}
}

// settle jumps a running transition to its end and releases it
func (n *navigator) settle() {
	if n.driver == nil {
		return
	}
	if !n.driver.State().Terminal() {
		log.Printf("UI: interrupting %s transition", n.driver.Direction())
		n.driver.End(false)
	}
	n.release()
}
