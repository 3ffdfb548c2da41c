// Package transition animates a result's artwork between the grid and the
// detail screen. Each navigation gets its own Driver, which is used once and
// then released.
package transition

import (
	"time"

	"searchy/internal/domain"
	"searchy/internal/eventbus"
)

const (
	DefaultDuration      = 350 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond
)

// Options configures the drivers an Engine creates
type Options struct {
	Duration      time.Duration
	FrameInterval time.Duration
	Enabled       bool
}

// DefaultOptions returns the stock timing with animation on
func DefaultOptions() Options {
	return Options{Duration: DefaultDuration, FrameInterval: DefaultFrameInterval, Enabled: true}
}

// Engine hands out drivers
type Engine struct {
	opts Options
	bus  eventbus.EventBus
}

// NewEngine creates an engine. Zero durations fall back to the defaults.
func NewEngine(opts Options, bus eventbus.EventBus) *Engine {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	return &Engine{opts: opts, bus: bus}
}

// NewDriver returns a fresh driver bound to event
func (e *Engine) NewDriver(event domain.SelectionEvent, direction Direction) *Driver {
	return &Driver{
		opts:      e.opts,
		bus:       e.bus,
		event:     event,
		direction: direction,
	}
}

// Options returns the engine's timing
func (e *Engine) Options() Options {
	return e.opts
}
