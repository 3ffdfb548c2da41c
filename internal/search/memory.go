package search

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"

	"searchy/internal/domain"
)

// Memory is an in-process backend over a fixed catalog. It is used for
// offline demos and tests, and can simulate a slow, out-of-order service.
type Memory struct {
	mu      sync.RWMutex
	items   []domain.SearchResult
	latency time.Duration
	jitter  time.Duration
	delay   func(query string) time.Duration
	fail    func(query string) error
}

// MemoryOption configures a Memory backend
type MemoryOption func(*Memory)

// WithLatency delays every response by base plus a random amount up to jitter
func WithLatency(base, jitter time.Duration) MemoryOption {
	return func(m *Memory) {
		m.latency = base
		m.jitter = jitter
	}
}

// WithDelay sets a per-query delay, overriding WithLatency
func WithDelay(fn func(query string) time.Duration) MemoryOption {
	return func(m *Memory) {
		m.delay = fn
	}
}

// WithFailure makes queries fail when fn returns a non-nil error
func WithFailure(fn func(query string) error) MemoryOption {
	return func(m *Memory) {
		m.fail = fn
	}
}

// NewMemory creates a Memory backend over items. A nil catalog uses the built-in one.
func NewMemory(items []domain.SearchResult, opts ...MemoryOption) *Memory {
	if items == nil {
		items = DefaultCatalog()
	}
	m := &Memory{items: append([]domain.SearchResult(nil), items...)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add appends an item to the catalog
func (m *Memory) Add(item domain.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

// Size returns the number of catalog items
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

type scored struct {
	item  domain.SearchResult
	score int
}

// Search implements Backend
func (m *Memory) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if err := m.wait(ctx, query); err != nil {
		return nil, err
	}
	if m.fail != nil {
		if err := m.fail(query); err != nil {
			return nil, failure(err, "memory search")
		}
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []domain.SearchResult{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []scored
	for _, item := range m.items {
		if s := scoreItem(item, terms); s > 0 {
			matches = append(matches, scored{item: item, score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]domain.SearchResult, len(matches))
	for i, s := range matches {
		results[i] = s.item
	}
	return results, nil
}

func (m *Memory) wait(ctx context.Context, query string) error {
	d := m.latency
	if m.jitter > 0 {
		d += rand.N(m.jitter)
	}
	if m.delay != nil {
		d = m.delay(query)
	}
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return canceled(err)
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return canceled(ctx.Err())
	case <-timer.C:
		return nil
	}
}

// scoreItem requires every term to match; title hits weigh more than
// subtitle hits, and a word within edit distance 1 counts as a weak hit.
func scoreItem(item domain.SearchResult, terms []string) int {
	title := strings.ToLower(item.Title)
	subtitle := strings.ToLower(item.Subtitle)
	genre := strings.ToLower(item.Genre)

	total := 0
	for _, term := range terms {
		switch {
		case strings.HasPrefix(title, term):
			total += 4
		case strings.Contains(title, term):
			total += 3
		case strings.Contains(subtitle, term):
			total += 2
		case strings.Contains(genre, term):
			total += 1
		case fuzzyWord(title+" "+subtitle, term):
			total += 1
		default:
			return 0
		}
	}
	return total
}

func fuzzyWord(text, term string) bool {
	if len(term) < 4 {
		return false
	}
	for _, word := range strings.Fields(text) {
		if levenshtein.ComputeDistance(word, term) <= 1 {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the built-in offline catalog. Artwork identifiers use
// the generated "gen:" scheme understood by images.GeneratedFetcher.
func DefaultCatalog() []domain.SearchResult {
	entry := func(id, title, artist, genre, year, colour string) domain.SearchResult {
		return domain.SearchResult{
			ID:          "mem:" + id,
			Title:       title,
			Subtitle:    artist,
			ImageID:     "gen:" + colour,
			Kind:        "album",
			Genre:       genre,
			ReleaseDate: year,
		}
	}
	return []domain.SearchResult{
		entry("1", "Kid A", "Radiohead", "Alternative", "2000", "3b6ea5"),
		entry("2", "OK Computer", "Radiohead", "Alternative", "1997", "8aa1b1"),
		entry("3", "In Rainbows", "Radiohead", "Alternative", "2007", "e2553d"),
		entry("4", "Radio Kills", "Radio Days", "Rock", "2011", "c17c3a"),
		entry("5", "Radio Silence", "Radio Days", "Rock", "2014", "404a57"),
		entry("6", "Kind of Blue", "Miles Davis", "Jazz", "1959", "1f4e8c"),
		entry("7", "A Love Supreme", "John Coltrane", "Jazz", "1965", "232323"),
		entry("8", "Blue Train", "John Coltrane", "Jazz", "1957", "246b9e"),
		entry("9", "Blonde", "Frank Ocean", "R&B", "2016", "d8c9a7"),
		entry("10", "Channel Orange", "Frank Ocean", "R&B", "2012", "f28a1c"),
		entry("11", "Random Access Memories", "Daft Punk", "Electronic", "2013", "151515"),
		entry("12", "Discovery", "Daft Punk", "Electronic", "2001", "6c4c9c"),
		entry("13", "Homework", "Daft Punk", "Electronic", "1997", "a33b2b"),
		entry("14", "To Pimp a Butterfly", "Kendrick Lamar", "Hip-Hop", "2015", "5b4636"),
		entry("15", "DAMN.", "Kendrick Lamar", "Hip-Hop", "2017", "c8102e"),
		entry("16", "Rumours", "Fleetwood Mac", "Rock", "1977", "c7b08b"),
		entry("17", "The Dark Side of the Moon", "Pink Floyd", "Rock", "1973", "0b0b0b"),
		entry("18", "Wish You Were Here", "Pink Floyd", "Rock", "1975", "9e4f2b"),
		entry("19", "Abbey Road", "The Beatles", "Rock", "1969", "4f7f4a"),
		entry("20", "Revolver", "The Beatles", "Rock", "1966", "e8e8e8"),
		entry("21", "Vespertine", "Björk", "Electronic", "2001", "f0e6f0"),
		entry("22", "Homogenic", "Björk", "Electronic", "1997", "7a2a6e"),
		entry("23", "Currents", "Tame Impala", "Psychedelic", "2015", "6b2fa5"),
		entry("24", "Lonerism", "Tame Impala", "Psychedelic", "2012", "d6a83d"),
	}
}
