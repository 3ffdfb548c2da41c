package grid

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchy/internal/domain"
	"searchy/internal/images"
)

type fakeFocus struct {
	log *[]string
}

func (f fakeFocus) Blur() { *f.log = append(*f.log, "blur") }

func echoProvider() images.Provider {
	return images.FetcherFunc(func(ctx context.Context, id string) ([]byte, error) {
		return []byte(id), nil
	})
}

func resultSet(seq uint64, n int) domain.SearchResultSet {
	rs := make([]domain.SearchResult, n)
	for i := range rs {
		rs[i] = domain.SearchResult{
			ID:      fmt.Sprintf("id%d", i),
			Title:   fmt.Sprintf("Title %d", i),
			ImageID: fmt.Sprintf("img%d", i),
		}
	}
	return domain.SearchResultSet{Query: domain.SearchQuery{Text: "q", Seq: seq}, Results: rs}
}

// drain runs cmd and every command it batches, returning the leaf messages
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func imageMsgs(t *testing.T, cmd tea.Cmd) []ImageLoadedMsg {
	t.Helper()
	var out []ImageLoadedMsg
	for _, m := range drain(cmd) {
		im, ok := m.(ImageLoadedMsg)
		require.True(t, ok, "unexpected %T", m)
		out = append(out, im)
	}
	return out
}

func TestLayout(t *testing.T) {
	tests := map[string]struct {
		width, height int
		wantW, wantH  int
		wantPitch     int
	}{
		"standard":   {width: 40, height: 48, wantW: 17, wantH: 21, wantPitch: 24},
		"even":       {width: 46, height: 48, wantW: 20, wantH: 24, wantPitch: 26},
		"too narrow": {width: 6, height: 48},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			l := NewLayout(tc.width, tc.height, 2, 2, 4)
			assert.Equal(t, tc.wantW, l.CellW)
			assert.Equal(t, tc.wantH, l.CellH)
			if tc.wantW == 0 {
				assert.False(t, l.Valid())
				assert.True(t, l.CellRect(0).Empty())
				return
			}
			assert.Equal(t, tc.wantPitch, l.Pitch())
			assert.Equal(t, domain.Rect{X: 2, Y: 2, W: tc.wantW, H: tc.wantH}, l.CellRect(0))
			assert.Equal(t, domain.Rect{X: 4 + tc.wantW, Y: 2, W: tc.wantW, H: tc.wantH}, l.CellRect(1))
			assert.Equal(t, 2+tc.wantPitch, l.CellRect(2).Y)
			assert.Equal(t, tc.wantW, l.ImageRect(3).H)
		})
	}
}

func TestSetResultsShowsCellsInOrder(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 24)

	set := domain.SearchResultSet{Results: []domain.SearchResult{
		{ID: "1", Title: "Radio A"},
		{ID: "2", Title: "Radio B"},
	}}
	g.SetResults(set)

	require.Equal(t, 2, g.CellCount())
	a, ok := g.CellContent(0)
	require.True(t, ok)
	b, ok := g.CellContent(1)
	require.True(t, ok)
	assert.Equal(t, "Radio A", a.Result.Title)
	assert.Equal(t, "Radio B", b.Result.Title)

	_, ok = g.CellContent(2)
	assert.False(t, ok)
	_, ok = g.CellContent(-1)
	assert.False(t, ok)
}

func TestImagesLoadForVisibleCellsOnly(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12) // one row on screen

	msgs := imageMsgs(t, g.SetResults(resultSet(1, 10)))
	require.Len(t, msgs, 2)

	for _, m := range msgs {
		assert.True(t, g.ApplyImage(m))
	}
	c, _ := g.CellContent(0)
	assert.Equal(t, ImageReady, c.Image)
	assert.Equal(t, []byte("img0"), c.Data)

	c, _ = g.CellContent(5)
	assert.Equal(t, ImageLoading, c.Image)
	assert.Nil(t, c.Data)
}

func TestStaleImageDiscardedAfterRecycle(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)

	first := imageMsgs(t, g.SetResults(resultSet(1, 10)))
	require.Len(t, first, 2)

	// Two rows down the ring wraps and cells 4 and 5 reuse the slots of 0 and 1
	recycled := imageMsgs(t, g.ScrollBy(2))
	require.Len(t, recycled, 2)
	assert.Equal(t, first[0].Slot, recycled[0].Slot)

	for _, m := range first {
		assert.False(t, g.ApplyImage(m), "fetch for %s should be dropped", m.ResultID)
	}
	c, _ := g.CellContent(4)
	assert.Equal(t, ImageLoading, c.Image)

	for _, m := range recycled {
		assert.True(t, g.ApplyImage(m))
	}
	c, _ = g.CellContent(4)
	assert.Equal(t, ImageReady, c.Image)
	assert.Equal(t, []byte("img4"), c.Data)
}

func TestStaleImageDiscardedAfterReload(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)

	old := imageMsgs(t, g.SetResults(resultSet(1, 4)))
	g.SetResults(resultSet(2, 4))

	for _, m := range old {
		assert.False(t, g.ApplyImage(m))
	}
}

func TestImageFailureShowsPlaceholderOnly(t *testing.T) {
	provider := images.FetcherFunc(func(ctx context.Context, id string) ([]byte, error) {
		return nil, errors.New("404")
	})
	g := New(provider, nil, nil, DefaultOptions())
	g.Resize(40, 12)

	for _, m := range imageMsgs(t, g.SetResults(resultSet(1, 2))) {
		assert.Error(t, m.Err)
		assert.True(t, g.ApplyImage(m))
	}
	c, _ := g.CellContent(0)
	assert.Equal(t, ImageFailed, c.Image)
	assert.Equal(t, 2, g.CellCount())
	assert.Equal(t, 0, g.Cursor())
}

func TestMissingImageIDFailsWithoutFetch(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)

	set := domain.SearchResultSet{Results: []domain.SearchResult{{ID: "a"}}}
	assert.Empty(t, drain(g.SetResults(set)))
	c, _ := g.CellContent(0)
	assert.Equal(t, ImageFailed, c.Image)
}

func TestGeometryForItem(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)
	set := resultSet(1, 10)
	g.SetResults(set)

	rect, ok := g.GeometryForItem(set.Results[1])
	require.True(t, ok)
	assert.Equal(t, domain.Rect{X: 21, Y: 2, W: 17, H: 17}, rect)

	// Absent item
	rect, ok = g.GeometryForItem(domain.SearchResult{ID: "nope"})
	assert.False(t, ok)
	assert.True(t, rect.Empty())

	// Laid out but scrolled off screen
	rect, ok = g.GeometryForItem(set.Results[8])
	assert.False(t, ok)
	assert.Equal(t, domain.Rect{}, rect)

	// Set replaced
	g.SetResults(resultSet(2, 0))
	rect, ok = g.GeometryForItem(set.Results[1])
	assert.False(t, ok)
	assert.Equal(t, domain.Rect{}, rect)
}

func TestGeometryBeforeLayout(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	set := resultSet(1, 2)
	g.SetResults(set)

	rect, ok := g.GeometryForItem(set.Results[0])
	assert.False(t, ok)
	assert.True(t, rect.Empty())
}

func TestSelectBlursFocusBeforeSubscribers(t *testing.T) {
	var order []string
	g := New(echoProvider(), fakeFocus{log: &order}, nil, DefaultOptions())
	g.Resize(40, 24)
	g.SetResults(resultSet(1, 3))

	var got domain.SelectionEvent
	g.OnSelect(func(ev domain.SelectionEvent) {
		order = append(order, "subscriber")
		got = ev
	})

	ev, ok := g.Select(1)
	require.True(t, ok)
	assert.Equal(t, []string{"blur", "subscriber"}, order)
	assert.Equal(t, ev, got)
	assert.Equal(t, "id1", ev.Result.ID)
	assert.Equal(t, 1, ev.Index)
	assert.False(t, ev.Rect.Empty())
	assert.Equal(t, 1, g.Cursor())

	_, ok = g.Select(7)
	assert.False(t, ok)
	assert.Len(t, order, 2)
}

func TestSelectOffScreenCarriesEmptyRect(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)
	g.SetResults(resultSet(1, 10))

	ev, ok := g.Select(9)
	require.True(t, ok)
	assert.True(t, ev.Rect.Empty())
}

func TestHitTest(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 24)
	g.SetResults(resultSet(1, 5))

	tests := map[string]struct {
		p    domain.Point
		want int
		ok   bool
	}{
		"first cell":  {p: domain.Point{X: 3, Y: 3}, want: 0, ok: true},
		"second cell": {p: domain.Point{X: 30, Y: 10}, want: 1, ok: true},
		"second row":  {p: domain.Point{X: 3, Y: 27}, want: 2, ok: true},
		"margin":      {p: domain.Point{X: 0, Y: 0}, want: -1},
		"gutter":      {p: domain.Point{X: 20, Y: 5}, want: -1},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := g.HitTest(tc.p)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMoveCursorScrollsIntoView(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)
	g.SetResults(resultSet(1, 9))

	assert.Nil(t, g.MoveCursor(1, 0), "same row, no scroll")
	assert.Equal(t, 1, g.Cursor())

	cmd := g.MoveCursor(0, 1)
	assert.Equal(t, 3, g.Cursor())
	assert.NotNil(t, cmd)
	assert.Equal(t, 24, g.ScrollY())

	g.MoveCursor(0, 10)
	assert.Equal(t, 8, g.Cursor())

	g.MoveCursor(-100, 0)
	assert.Equal(t, 0, g.Cursor())
	assert.Equal(t, 0, g.ScrollY())
}

func TestScrollByClamps(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)
	g.SetResults(resultSet(1, 6)) // three rows

	assert.Nil(t, g.ScrollBy(-1))
	g.ScrollBy(10)
	assert.Equal(t, 48, g.ScrollY())
	assert.Equal(t, 4, g.Cursor(), "cursor follows the viewport")
}

func TestResizeKeepsLoadedArtwork(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)
	for _, m := range imageMsgs(t, g.SetResults(resultSet(1, 4))) {
		g.ApplyImage(m)
	}

	msgs := imageMsgs(t, g.Resize(40, 24))
	// Cells 0 and 1 keep their art; only the newly visible row is fetched
	require.Len(t, msgs, 2)
	assert.ElementsMatch(t, []string{"id2", "id3"}, []string{msgs[0].ResultID, msgs[1].ResultID})

	c, _ := g.CellContent(0)
	assert.Equal(t, ImageReady, c.Image)
}

func TestClear(t *testing.T) {
	g := New(echoProvider(), nil, nil, DefaultOptions())
	g.Resize(40, 12)
	g.SetResults(resultSet(1, 4))

	g.Clear()
	assert.Equal(t, 0, g.CellCount())
	assert.Equal(t, -1, g.Cursor())
	assert.Nil(t, g.MoveCursor(1, 0))
}
