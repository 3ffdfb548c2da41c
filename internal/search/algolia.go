package search

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	algoliasearch "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"

	"searchy/internal/domain"
)

// AlgoliaOptions configures the Algolia backend. Field names select which
// hit attributes become the title, subtitle and artwork identifier.
type AlgoliaOptions struct {
	AppID         string
	APIKey        string
	APIKeyEnv     string
	Index         string
	TitleField    string
	SubtitleField string
	ImageField    string
	Limit         int
}

// Algolia searches an Algolia index. The client is created lazily on the
// first query so a missing key surfaces as a search failure, not a crash.
type Algolia struct {
	opts      AlgoliaOptions
	getClient func() (*algoliasearch.Client, error)
}

// NewAlgolia creates an Algolia backend
func NewAlgolia(opts AlgoliaOptions) *Algolia {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.TitleField == "" {
		opts.TitleField = "title"
	}
	if opts.SubtitleField == "" {
		opts.SubtitleField = "subtitle"
	}
	if opts.ImageField == "" {
		opts.ImageField = "image"
	}

	getClient := sync.OnceValues(func() (*algoliasearch.Client, error) {
		apiKey := opts.APIKey
		if apiKey == "" && opts.APIKeyEnv != "" {
			apiKey = os.Getenv(opts.APIKeyEnv)
		}
		if opts.AppID == "" {
			return nil, errors.New("algolia app id is empty")
		}
		if apiKey == "" {
			return nil, errors.Newf("algolia api key is empty (set %s)", opts.APIKeyEnv)
		}
		if opts.Index == "" {
			return nil, errors.New("algolia index name is empty")
		}
		return algoliasearch.NewClient(opts.AppID, apiKey), nil
	})

	return &Algolia{opts: opts, getClient: getClient}
}

// Search implements Backend
func (a *Algolia) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	client, err := a.getClient()
	if err != nil {
		return nil, unavailable(err, "algolia client")
	}
	index := client.InitIndex(a.opts.Index)

	// The v3 client is synchronous; run it aside so the caller's context still wins.
	type outcome struct {
		res algoliasearch.QueryRes
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := index.Search(query, opt.HitsPerPage(a.opts.Limit))
		done <- outcome{res: res, err: err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return nil, canceled(ctx.Err())
	case out = <-done:
	}
	if out.err != nil {
		return nil, unavailable(out.err, "algolia search")
	}
	return a.mapHits(out.res.Hits), nil
}

// mapHits converts hits in ranking order, skipping any without an objectID
func (a *Algolia) mapHits(hits []map[string]interface{}) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		id, _ := hit["objectID"].(string)
		if id == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:       id,
			Title:    stringField(hit, a.opts.TitleField),
			Subtitle: stringField(hit, a.opts.SubtitleField),
			ImageID:  stringField(hit, a.opts.ImageField),
			Kind:     stringField(hit, "kind"),
			Genre:    stringField(hit, "genre"),
			ViewURL:  stringField(hit, "url"),
		})
	}
	return results
}

func stringField(hit map[string]interface{}, name string) string {
	switch v := hit[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
