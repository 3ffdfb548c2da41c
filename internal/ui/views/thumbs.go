package views

import (
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"searchy/internal/images"
)

type thumbKey struct {
	id         string
	cols, rows int
}

// thumb is a cached render; ok is false for data that would not decode
type thumb struct {
	art string
	ok  bool
}

// ThumbCache keeps rendered half-block art so unchanged cells are not
// decoded and rescaled on every frame. Decode failures are cached too.
type ThumbCache struct {
	cache *lru.Cache[thumbKey, thumb]
}

// NewThumbCache creates a cache holding up to size renders
func NewThumbCache(size int) *ThumbCache {
	cache, err := lru.New[thumbKey, thumb](max(size, 16))
	if err != nil {
		// Only fails for a non-positive size, which max rules out
		panic(err)
	}
	return &ThumbCache{cache: cache}
}

// Render returns data drawn as cols x rows art. ok is false when data does not decode.
func (t *ThumbCache) Render(id string, data []byte, cols, rows int) (string, bool) {
	key := thumbKey{id: id, cols: cols, rows: rows}
	if th, ok := t.cache.Get(key); ok {
		return th.art, th.ok
	}
	art, err := images.Thumbnail(data, cols, rows)
	if err != nil {
		log.Printf("Views: cannot render artwork %s: %v", id, err)
		t.cache.Add(key, thumb{})
		return "", false
	}
	t.cache.Add(key, thumb{art: art, ok: true})
	return art, true
}

// Len returns the number of cached renders, failed ones included
func (t *ThumbCache) Len() int {
	return t.cache.Len()
}
