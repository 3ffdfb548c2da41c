package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"searchy/internal/domain"
)

// ITunesOptions configures the iTunes Search API backend
type ITunesOptions struct {
	BaseURL string
	Country string
	Media   string
	Entity  string
	Limit   int
	Client  *http.Client
}

// ITunes searches the public iTunes Search API
type ITunes struct {
	opts ITunesOptions
}

// NewITunes creates an iTunes backend. Zero options fall back to the public endpoint.
func NewITunes(opts ITunesOptions) *ITunes {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://itunes.apple.com/search"
	}
	if opts.Media == "" {
		opts.Media = "music"
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ITunes{opts: opts}
}

type itunesResponse struct {
	ResultCount int          `json:"resultCount"`
	Results     []itunesItem `json:"results"`
}

type itunesItem struct {
	WrapperType       string  `json:"wrapperType"`
	Kind              string  `json:"kind"`
	TrackID           int64   `json:"trackId"`
	CollectionID      int64   `json:"collectionId"`
	ArtistName        string  `json:"artistName"`
	CollectionName    string  `json:"collectionName"`
	TrackName         string  `json:"trackName"`
	ArtworkURL100     string  `json:"artworkUrl100"`
	PrimaryGenreName  string  `json:"primaryGenreName"`
	ReleaseDate       string  `json:"releaseDate"`
	PreviewURL        string  `json:"previewUrl"`
	TrackViewURL      string  `json:"trackViewUrl"`
	CollectionViewURL string  `json:"collectionViewUrl"`
	TrackPrice        float64 `json:"trackPrice"`
	CollectionPrice   float64 `json:"collectionPrice"`
	Currency          string  `json:"currency"`
}

// Search implements Backend
func (s *ITunes) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(query), nil)
	if err != nil {
		return nil, failure(err, "build itunes request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, canceled(ctxErr)
		}
		return nil, unavailable(err, "itunes request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, unavailable(
			errors.Newf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"itunes search",
		)
	}

	var payload itunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, failure(err, "decode itunes response")
	}

	results := make([]domain.SearchResult, 0, len(payload.Results))
	seen := make(map[string]bool, len(payload.Results))
	for _, item := range payload.Results {
		r, ok := item.toResult()
		if !ok || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		results = append(results, r)
	}
	return results, nil
}

func (s *ITunes) requestURL(query string) string {
	params := url.Values{}
	params.Set("term", query)
	params.Set("media", s.opts.Media)
	params.Set("limit", strconv.Itoa(s.opts.Limit))
	if s.opts.Entity != "" {
		params.Set("entity", s.opts.Entity)
	}
	if s.opts.Country != "" {
		params.Set("country", s.opts.Country)
	}
	return s.opts.BaseURL + "?" + params.Encode()
}

func (i itunesItem) toResult() (domain.SearchResult, bool) {
	r := domain.SearchResult{
		Subtitle:    i.ArtistName,
		ImageID:     largeArtwork(i.ArtworkURL100),
		Genre:       i.PrimaryGenreName,
		ReleaseDate: releaseYear(i.ReleaseDate),
		PreviewURL:  i.PreviewURL,
	}

	switch {
	case i.WrapperType == "track" && i.TrackID != 0:
		r.ID = "track:" + strconv.FormatInt(i.TrackID, 10)
		r.Title = i.TrackName
		r.Kind = i.Kind
		r.ViewURL = i.TrackViewURL
		r.Price = formatPrice(i.TrackPrice, i.Currency)
	case i.CollectionID != 0:
		r.ID = "collection:" + strconv.FormatInt(i.CollectionID, 10)
		r.Title = i.CollectionName
		r.Kind = "album"
		r.ViewURL = i.CollectionViewURL
		r.Price = formatPrice(i.CollectionPrice, i.Currency)
	default:
		return domain.SearchResult{}, false
	}
	return r, r.Title != ""
}

// largeArtwork rewrites the 100x100 artwork URL to a 600x600 rendition
func largeArtwork(u string) string {
	return strings.Replace(u, "100x100bb", "600x600bb", 1)
}

func releaseYear(date string) string {
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return strconv.Itoa(t.Year())
	}
	return date
}

func formatPrice(price float64, currency string) string {
	if price <= 0 {
		return ""
	}
	return fmt.Sprintf("%.2f %s", price, currency)
}
