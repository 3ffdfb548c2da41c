package domain

import "strings"

// SearchResult is a single hit returned by a search backend.
// Two results are the same item when their IDs are equal.
type SearchResult struct {
	ID       string
	Title    string
	Subtitle string
	ImageID  string // identifier handed to the image provider

	// Detail metadata, optional
	Kind        string
	Genre       string
	ReleaseDate string
	PreviewURL  string
	ViewURL     string
	Price       string
}

// SameItem reports whether r and other identify the same item
func (r SearchResult) SameItem(other SearchResult) bool {
	return r.ID == other.ID
}

// SearchQuery is a query as it was dispatched to the backend
type SearchQuery struct {
	Text string
	Seq  uint64 // strictly increasing per dispatch
}

// NewQuery trims text and stamps it with seq
func NewQuery(text string, seq uint64) SearchQuery {
	return SearchQuery{Text: strings.TrimSpace(text), Seq: seq}
}

// Blank reports whether the query has no text after trimming
func (q SearchQuery) Blank() bool {
	return q.Text == ""
}

// SearchResultSet is the ordered outcome of one successful search.
// Sets are replaced wholesale, never patched.
type SearchResultSet struct {
	Query   SearchQuery
	Results []SearchResult
}

// Len returns the number of results in the set
func (s SearchResultSet) Len() int {
	return len(s.Results)
}

// IndexOf returns the position of the item identified by id, or -1
func (s SearchResultSet) IndexOf(id string) int {
	for i, r := range s.Results {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// SelectionEvent is produced when the user activates a grid cell
type SelectionEvent struct {
	Result SearchResult
	Index  int
	// Rect is the image rect of the activated cell in grid coordinates.
	// It is empty when the cell was not laid out at selection time.
	Rect Rect
}
