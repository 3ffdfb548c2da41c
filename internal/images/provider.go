// Package images fetches, caches and renders result artwork.
package images

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// ErrFetchFailed marks every artwork fetch failure
var ErrFetchFailed = errors.New("images: fetch failed")

// Provider resolves an image identifier to encoded image bytes
type Provider interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Fetcher is the uncached source a CachingProvider sits in front of
type Fetcher interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, id string) ([]byte, error)

// Fetch implements Fetcher
func (f FetcherFunc) Fetch(ctx context.Context, id string) ([]byte, error) {
	return f(ctx, id)
}

// CachingProvider caches fetched bytes in an LRU and coalesces concurrent
// fetches of the same identifier into one call to the underlying Fetcher.
type CachingProvider struct {
	fetcher Fetcher
	cache   *lru.Cache[string, []byte]
	group   singleflight.Group
	timeout time.Duration
}

// NewCachingProvider creates a provider holding up to size images
func NewCachingProvider(fetcher Fetcher, size int, timeout time.Duration) (*CachingProvider, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, errors.Wrap(err, "create image cache")
	}
	return &CachingProvider{fetcher: fetcher, cache: cache, timeout: timeout}, nil
}

// Fetch returns cached bytes or joins the single in-flight fetch for id.
// A caller whose context ends stops waiting; the shared fetch keeps running
// for the others and still fills the cache.
func (p *CachingProvider) Fetch(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, errors.Mark(errors.New("empty image identifier"), ErrFetchFailed)
	}
	if data, ok := p.cache.Get(id); ok {
		return data, nil
	}

	ch := p.group.DoChan(id, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if p.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, p.timeout)
			defer cancel()
		}
		data, err := p.fetcher.Fetch(fetchCtx, id)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "fetch image %s", id), ErrFetchFailed)
		}
		p.cache.Add(id, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Mark(ctx.Err(), ErrFetchFailed)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Cached reports whether id is already in the cache
func (p *CachingProvider) Cached(id string) bool {
	return p.cache.Contains(id)
}

// Len returns the number of cached images
func (p *CachingProvider) Len() int {
	return p.cache.Len()
}
