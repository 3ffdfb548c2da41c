package transition

import (
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"searchy/internal/domain"
	"searchy/internal/eventbus"
)

var (
	// ErrDriverSpent is returned when a released driver is started again
	ErrDriverSpent = errors.New("transition: driver already used")
	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("transition: driver already started")
)

// Direction is the navigation direction a driver animates
type Direction int

const (
	Push Direction = iota
	Pop
)

func (d Direction) String() string {
	if d == Pop {
		return "pop"
	}
	return "push"
}

// State is a driver's lifecycle state
type State int

const (
	Idle State = iota
	Armed
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Terminal reports whether s is completed or cancelled
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled
}

// Context is the per-navigation state of one driver
type Context struct {
	ID          string
	Direction   Direction
	Event       domain.SelectionEvent
	Source      domain.Rect
	Destination domain.Rect
	Snapshot    Snapshot
}

// FrameMsg asks the driver identified by ID to advance
type FrameMsg struct {
	ID   string
	Time time.Time
}

// Driver animates one navigation and is then thrown away.
//
// idle -> armed -> running -> completed|cancelled -> idle (spent)
type Driver struct {
	opts      Options
	bus       eventbus.EventBus
	direction Direction
	event     domain.SelectionEvent

	state    State
	spent    bool
	degraded bool
	ctx      *Context

	layer  Layer
	source Endpoint
	dest   Endpoint

	started  time.Time
	progress float64
	frame    domain.Rect
}

// Start snapshots the source and puts the snapshot on the layer at the source
// rect. A source that is not laid out degrades the driver: nothing is drawn
// and the navigation completes as soon as the destination is ready.
func (d *Driver) Start(layer Layer, source Endpoint, now time.Time) error {
	if d.spent {
		return ErrDriverSpent
	}
	if d.state != Idle {
		return ErrAlreadyStarted
	}
	d.layer = layer
	d.source = source
	d.ctx = &Context{ID: uuid.NewString(), Direction: d.direction, Event: d.event}
	d.state = Armed

	rect, ok := source.ImageRect()
	if !d.opts.Enabled || !ok || rect.Empty() {
		d.degraded = true
		log.Printf("Transition %s: %s degraded (source rect %v, enabled %v)", d.ctx.ID, d.direction, rect, d.opts.Enabled)
		return nil
	}

	d.ctx.Source = rect
	d.ctx.Snapshot = source.Snapshot()
	d.frame = rect
	layer.Insert(d.ctx.Snapshot, rect)
	source.SetImageHidden(true)
	log.Printf("Transition %s: %s armed at %v", d.ctx.ID, d.direction, rect)
	return nil
}

// DestinationReady pulls the destination rect and starts the animation. It
// returns true when frames should be scheduled; a degraded driver or a
// destination with no artwork rect completes immediately instead.
func (d *Driver) DestinationReady(dest Endpoint, now time.Time) bool {
	if d.spent || d.state != Armed {
		return false
	}
	d.dest = dest
	if d.degraded {
		d.finish(Completed)
		return false
	}
	rect, ok := dest.ImageRect()
	if !ok || rect.Empty() {
		d.degraded = true
		log.Printf("Transition %s: destination not laid out, completing without animation", d.ctx.ID)
		d.finish(Completed)
		return false
	}
	d.ctx.Destination = rect
	dest.SetImageHidden(true)
	d.started = now
	d.state = Running
	return true
}

// Advance moves the snapshot to its position at now. It returns true while
// more frames are needed.
func (d *Driver) Advance(now time.Time) bool {
	if d.spent || d.state != Running {
		return false
	}
	t := 1.0
	if d.opts.Duration > 0 {
		t = float64(now.Sub(d.started)) / float64(d.opts.Duration)
	}
	if t >= 1 {
		d.finish(Completed)
		return false
	}
	d.progress = EaseInOutCubic(t)
	d.frame = domain.Lerp(d.ctx.Source, d.ctx.Destination, d.progress)
	d.layer.SetFrame(d.frame)
	return true
}

// End is the navigation layer telling the driver the transition is over.
// Cancelled reverts everything to the source; otherwise the driver jumps to
// its final state. Terminal drivers ignore it.
func (d *Driver) End(cancelled bool) {
	if d.spent || d.state == Idle || d.state.Terminal() {
		return
	}
	if cancelled {
		d.finish(Cancelled)
		return
	}
	d.finish(Completed)
}

// Release returns a finished driver to idle and marks it spent. A driver
// still in flight is cancelled first so nothing is left on the layer.
func (d *Driver) Release() {
	if d.spent {
		return
	}
	if d.state == Armed || d.state == Running {
		d.finish(Cancelled)
	}
	d.state = Idle
	d.spent = true
	d.layer, d.source, d.dest = nil, nil, nil
}

// Tick schedules the next frame
func (d *Driver) Tick() tea.Cmd {
	if d.ctx == nil || d.state != Running {
		return nil
	}
	id := d.ctx.ID
	return tea.Tick(d.opts.FrameInterval, func(t time.Time) tea.Msg {
		return FrameMsg{ID: id, Time: t}
	})
}

// Owns reports whether msg is a frame for this driver
func (d *Driver) Owns(msg FrameMsg) bool {
	return d.ctx != nil && msg.ID == d.ctx.ID
}

// State returns the lifecycle state
func (d *Driver) State() State { return d.state }

// Spent reports whether the driver has been released
func (d *Driver) Spent() bool { return d.spent }

// Degraded reports whether the driver is navigating without animation
func (d *Driver) Degraded() bool { return d.degraded }

// Direction returns the navigation direction
func (d *Driver) Direction() Direction { return d.direction }

// Event returns the selection this driver was created for
func (d *Driver) Event() domain.SelectionEvent { return d.event }

// Context returns the per-navigation state, nil before Start or after Release
func (d *Driver) Context() *Context {
	if d.spent {
		return nil
	}
	return d.ctx
}

// Progress returns the eased progress in [0, 1]
func (d *Driver) Progress() float64 { return d.progress }

// Frame returns the snapshot's current rect
func (d *Driver) Frame() domain.Rect { return d.frame }

func (d *Driver) finish(state State) {
	if d.layer != nil && d.layer.Active() {
		d.layer.Remove()
	}
	if d.source != nil {
		d.source.SetImageHidden(false)
	}
	if d.dest != nil {
		d.dest.SetImageHidden(false)
	}
	switch state {
	case Completed:
		d.progress = 1
		d.frame = d.ctx.Destination
	case Cancelled:
		d.progress = 0
		d.frame = d.ctx.Source
	}
	d.state = state
	log.Printf("Transition %s: %s %s (degraded=%v)", d.ctx.ID, d.direction, state, d.degraded)
	d.bus.Publish(domain.TransitionFinishedEvent{
		ID:        d.ctx.ID,
		Direction: d.direction.String(),
		State:     state.String(),
		Degraded:  d.degraded,
	})
}
