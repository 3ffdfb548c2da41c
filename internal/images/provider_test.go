package images

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingProviderCoalescesConcurrentFetches(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	fetcher := FetcherFunc(func(ctx context.Context, id string) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("bytes:" + id), nil
	})
	p, err := NewCachingProvider(fetcher, 8, time.Second)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := p.Fetch(context.Background(), "a")
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}

	// Let every caller join the in-flight fetch before releasing it
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, []byte("bytes:a"), r)
	}

	_, err = p.Fetch(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second fetch should be served from cache")
	assert.True(t, p.Cached("a"))
}

func TestCachingProviderEvictsLeastRecentlyUsed(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context, id string) ([]byte, error) {
		return []byte(id), nil
	})
	p, err := NewCachingProvider(fetcher, 2, 0)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		_, err := p.Fetch(context.Background(), id)
		require.NoError(t, err)
	}
	assert.False(t, p.Cached("a"))
	assert.True(t, p.Cached("b"))
	assert.True(t, p.Cached("c"))
	assert.Equal(t, 2, p.Len())
}

func TestCachingProviderFailureIsMarkedAndNotCached(t *testing.T) {
	var calls atomic.Int32
	fetcher := FetcherFunc(func(ctx context.Context, id string) ([]byte, error) {
		calls.Add(1)
		return nil, errors.New("404")
	})
	p, err := NewCachingProvider(fetcher, 2, 0)
	require.NoError(t, err)

	_, err = p.Fetch(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))

	_, err = p.Fetch(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, p.Cached("missing"))
}

func TestCachingProviderCallerContextStopsWaiting(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	fetcher := FetcherFunc(func(ctx context.Context, id string) ([]byte, error) {
		<-release
		return []byte("late"), nil
	})
	p, err := NewCachingProvider(fetcher, 2, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Fetch(ctx, "slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGeneratedFetcherAndThumbnail(t *testing.T) {
	data, err := GeneratedFetcher{Size: 16}.Fetch(context.Background(), "gen:3b6ea5")
	require.NoError(t, err)

	art, err := Thumbnail(data, 10, 5)
	require.NoError(t, err)
	lines := strings.Split(art, "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.Equal(t, 10, ansi.StringWidth(l))
	}
}

func TestGeneratedFetcherRejectsBadColour(t *testing.T) {
	_, err := GeneratedFetcher{}.Fetch(context.Background(), "gen:nothex")
	require.Error(t, err)
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnail([]byte("not an image"), 4, 2)
	require.Error(t, err)
}

func TestRoutingFetcher(t *testing.T) {
	remote := FetcherFunc(func(ctx context.Context, id string) ([]byte, error) {
		return []byte("remote"), nil
	})
	f := RoutingFetcher{Generated: GeneratedFetcher{Size: 4}, Remote: remote}

	data, err := f.Fetch(context.Background(), "https://img.example/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), data)

	data, err = f.Fetch(context.Background(), "gen:ffffff")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("remote"), data)
}

func TestPlaceholderDimensions(t *testing.T) {
	out := Placeholder(8, 3, "░", "…", lipgloss.NewStyle())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.Equal(t, 8, ansi.StringWidth(l))
	}
	assert.Contains(t, lines[1], "…")
}
