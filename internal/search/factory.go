package search

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"searchy/internal/config"
)

// FromConfig builds the configured backend, wrapped with tracing
func FromConfig(cfg *config.Config) (Backend, error) {
	var b Backend
	switch cfg.Search.Backend {
	case config.BackendITunes:
		b = NewITunes(ITunesOptions{
			BaseURL: cfg.Search.BaseURL,
			Country: cfg.Search.Country,
			Media:   cfg.Search.Media,
			Entity:  cfg.Search.Entity,
			Limit:   cfg.Search.Limit,
			Client:  &http.Client{Timeout: cfg.Search.Timeout},
		})
	case config.BackendAlgolia:
		b = NewAlgolia(AlgoliaOptions{
			AppID:         cfg.Algolia.AppID,
			APIKeyEnv:     cfg.Algolia.APIKeyEnv,
			Index:         cfg.Algolia.Index,
			TitleField:    cfg.Algolia.TitleField,
			SubtitleField: cfg.Algolia.SubtitleField,
			ImageField:    cfg.Algolia.ImageField,
			Limit:         cfg.Search.Limit,
		})
	case config.BackendMemory:
		b = NewMemory(nil, WithLatency(cfg.Search.Latency, cfg.Search.Jitter))
	default:
		return nil, errors.Newf("unknown search backend %q", cfg.Search.Backend)
	}
	return Traced(cfg.Search.Backend, b), nil
}
