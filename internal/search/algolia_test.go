package search

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchy/internal/domain"
)

func TestAlgoliaMissingCredentialsIsUnavailable(t *testing.T) {
	t.Setenv("SEARCHY_TEST_ALGOLIA_KEY", "")

	tests := map[string]struct {
		opts    AlgoliaOptions
		message string
	}{
		"no_app_id": {
			opts:    AlgoliaOptions{APIKey: "k", Index: "albums"},
			message: "app id is empty",
		},
		"no_key": {
			opts:    AlgoliaOptions{AppID: "APP", Index: "albums", APIKeyEnv: "SEARCHY_TEST_ALGOLIA_KEY"},
			message: "set SEARCHY_TEST_ALGOLIA_KEY",
		},
		"no_index": {
			opts:    AlgoliaOptions{AppID: "APP", APIKey: "k"},
			message: "index name is empty",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			results, err := NewAlgolia(tt.opts).Search(context.Background(), "radio")
			require.Error(t, err)
			assert.Nil(t, results)
			assert.True(t, errors.Is(err, ErrBackendUnavailable))
			assert.True(t, IsFailure(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestAlgoliaCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAlgolia(AlgoliaOptions{}).Search(ctx, "radio")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCanceled))
	assert.False(t, errors.Is(err, ErrBackendUnavailable))
}

func TestAlgoliaMapsConfiguredFields(t *testing.T) {
	backend := NewAlgolia(AlgoliaOptions{TitleField: "name", SubtitleField: "artist", ImageField: "cover"})

	got := backend.mapHits([]map[string]interface{}{
		{"objectID": "a1", "name": "Kid A", "artist": "Radiohead", "cover": "https://img/a1", "genre": "Rock", "year": 2000},
		{"name": "no id"},
		{"objectID": "a2", "name": 42, "kind": "album", "url": "https://view/a2"},
	})

	assert.Equal(t, []domain.SearchResult{
		{ID: "a1", Title: "Kid A", Subtitle: "Radiohead", ImageID: "https://img/a1", Genre: "Rock"},
		{ID: "a2", Title: "42", Kind: "album", ViewURL: "https://view/a2"},
	}, got)
}

func TestAlgoliaDefaultFields(t *testing.T) {
	got := NewAlgolia(AlgoliaOptions{}).mapHits([]map[string]interface{}{
		{"objectID": "x", "title": "T", "subtitle": "S", "image": "gen:112233"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "T", got[0].Title)
	assert.Equal(t, "S", got[0].Subtitle)
	assert.Equal(t, "gen:112233", got[0].ImageID)
}
