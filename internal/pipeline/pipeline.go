// Package pipeline turns text-changed events into an ordered stream of
// search result sets.
//
// The pipeline has three explicit stages:
//
//   - input: every text change is buffered and arms a quiet-interval timer
//     tagged with an input generation; only the timer of the latest
//     generation flushes.
//   - dispatch: the flushed text is trimmed and stamped with the next
//     sequence number. Blank text yields an empty set without touching the
//     backend; anything else runs the backend inside a tea.Cmd.
//   - apply: a response is applied only when its sequence number is the
//     latest dispatched; anything older is dropped.
//
// All methods must be called from the bubbletea Update loop. The pipeline
// holds no locks because nothing else touches its state.
package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"searchy/internal/domain"
	"searchy/internal/eventbus"
	"searchy/internal/search"
)

// DefaultQuietInterval is how long input must stay unchanged before dispatch
const DefaultQuietInterval = 330 * time.Millisecond

// OutcomeKind classifies what an Update did
type OutcomeKind int

const (
	// OutcomeNone means the message did not change the published state
	OutcomeNone OutcomeKind = iota
	// OutcomeDispatched means a backend call was started
	OutcomeDispatched
	// OutcomeResults means a new result set is current
	OutcomeResults
	// OutcomeFailed means the live query failed
	OutcomeFailed
	// OutcomeStale means a superseded response was dropped
	OutcomeStale
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeResults:
		return "results"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return "none"
	}
}

// Outcome is the result of feeding a message to the pipeline
type Outcome struct {
	Kind  OutcomeKind
	Query domain.SearchQuery
	Set   domain.SearchResultSet
	Err   error
}

// flushMsg fires when a quiet interval elapses
type flushMsg struct {
	gen uint64
}

// responseMsg carries a backend response back to the loop
type responseMsg struct {
	query   domain.SearchQuery
	results []domain.SearchResult
	err     error
	elapsed time.Duration
}

// Options configures a Pipeline
type Options struct {
	QuietInterval time.Duration
	Timeout       time.Duration // per backend call, 0 for none
}

// Pipeline is the debounce -> dispatch -> gate state machine
type Pipeline struct {
	backend search.Backend
	bus     eventbus.EventBus
	opts    Options

	pending string
	gen     uint64

	seq      uint64 // highest sequence number dispatched
	latest   domain.SearchQuery
	inFlight bool
	cancel   context.CancelFunc

	lastFailed bool
}

// New creates a pipeline over backend
func New(backend search.Backend, bus eventbus.EventBus, opts Options) *Pipeline {
	if opts.QuietInterval <= 0 {
		opts.QuietInterval = DefaultQuietInterval
	}
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	return &Pipeline{backend: backend, bus: bus, opts: opts}
}

// TextChanged buffers text and restarts the quiet interval
func (p *Pipeline) TextChanged(text string) tea.Cmd {
	p.pending = text
	p.gen++
	gen := p.gen
	return tea.Tick(p.opts.QuietInterval, func(time.Time) tea.Msg {
		return flushMsg{gen: gen}
	})
}

// Flush dispatches the pending text immediately, skipping the quiet interval
func (p *Pipeline) Flush() (Outcome, tea.Cmd) {
	p.gen++ // any armed timer is now stale
	return p.dispatch(p.pending)
}

// Retry re-dispatches after a failure. When the input has been edited since
// the failed query, the edited text goes out instead and the armed timer is
// dropped; otherwise the failed text is sent again and any timer stays armed.
// It does nothing unless the last applied outcome was a failure.
func (p *Pipeline) Retry() (Outcome, tea.Cmd) {
	if !p.lastFailed {
		return Outcome{Kind: OutcomeNone}, nil
	}
	if strings.TrimSpace(p.pending) != p.latest.Text {
		p.gen++
		return p.dispatch(p.pending)
	}
	return p.dispatch(p.latest.Text)
}

// Update feeds a message to the pipeline. Messages it does not own yield OutcomeNone.
func (p *Pipeline) Update(msg tea.Msg) (Outcome, tea.Cmd) {
	switch msg := msg.(type) {
	case flushMsg:
		if msg.gen != p.gen {
			return Outcome{Kind: OutcomeNone}, nil
		}
		return p.dispatch(p.pending)

	case responseMsg:
		return p.apply(msg), nil
	}
	return Outcome{Kind: OutcomeNone}, nil
}

// Owns reports whether msg is one of the pipeline's internal messages
func Owns(msg tea.Msg) bool {
	switch msg.(type) {
	case flushMsg, responseMsg:
		return true
	}
	return false
}

// Latest returns the most recently dispatched query
func (p *Pipeline) Latest() domain.SearchQuery {
	return p.latest
}

// Pending returns the buffered text not yet dispatched
func (p *Pipeline) Pending() string {
	return p.pending
}

// InFlight reports whether the latest query is still waiting for the backend
func (p *Pipeline) InFlight() bool {
	return p.inFlight
}

// Failed reports whether the latest applied outcome was a failure
func (p *Pipeline) Failed() bool {
	return p.lastFailed
}

// Stop cancels the in-flight call. Its response, if any, is still gated.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Pipeline) dispatch(text string) (Outcome, tea.Cmd) {
	p.seq++
	query := domain.NewQuery(text, p.seq)
	p.latest = query

	// The superseded call may finish anyway; the gate drops it. Cancelling
	// only saves the backend some work.
	p.Stop()
	p.bus.Publish(domain.SearchDispatchedEvent{Query: query})

	if query.Blank() {
		p.inFlight = false
		p.lastFailed = false
		log.Printf("Pipeline: seq=%d blank query, publishing empty set", query.Seq)
		return Outcome{
			Kind:  OutcomeResults,
			Query: query,
			Set:   domain.SearchResultSet{Query: query, Results: []domain.SearchResult{}},
		}, nil
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if p.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), p.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	p.cancel = cancel
	p.inFlight = true
	log.Printf("Pipeline: seq=%d dispatching %q", query.Seq, query.Text)

	backend := p.backend
	cmd := func() tea.Msg {
		defer cancel()
		start := time.Now()
		results, err := backend.Search(ctx, query.Text)
		return responseMsg{query: query, results: results, err: err, elapsed: time.Since(start)}
	}
	return Outcome{Kind: OutcomeDispatched, Query: query}, cmd
}

func (p *Pipeline) apply(msg responseMsg) Outcome {
	if msg.query.Seq != p.seq {
		log.Printf("Pipeline: dropping stale response seq=%d (latest %d)", msg.query.Seq, p.seq)
		p.bus.Publish(domain.ResponseDiscardedEvent{Query: msg.query, Latest: p.seq})
		return Outcome{Kind: OutcomeStale, Query: msg.query}
	}

	p.inFlight = false
	p.cancel = nil

	if msg.err != nil {
		p.lastFailed = true
		log.Printf("Pipeline: seq=%d search failed: %v", msg.query.Seq, msg.err)
		p.bus.Publish(domain.SearchFailedEvent{Query: msg.query, Err: msg.err})
		return Outcome{Kind: OutcomeFailed, Query: msg.query, Err: msg.err}
	}

	p.lastFailed = false
	results := msg.results
	if results == nil {
		results = []domain.SearchResult{}
	}
	log.Printf("Pipeline: seq=%d applied %d results in %s", msg.query.Seq, len(results), msg.elapsed)
	p.bus.Publish(domain.SearchCompletedEvent{Query: msg.query, Count: len(results), Elapsed: msg.elapsed})
	return Outcome{
		Kind:  OutcomeResults,
		Query: msg.query,
		Set:   domain.SearchResultSet{Query: msg.query, Results: results},
	}
}
