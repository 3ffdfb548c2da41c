// Package search holds the search backends the pipeline dispatches queries to.
package search

import (
	"context"

	"github.com/cockroachdb/errors"

	"searchy/internal/domain"
)

// Backend runs one query and returns results in rank order.
// Implementations must be safe for concurrent use; the pipeline may have a
// superseded call still running when a new one starts.
type Backend interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// BackendFunc adapts a function to the Backend interface
type BackendFunc func(ctx context.Context, query string) ([]domain.SearchResult, error)

// Search implements Backend
func (f BackendFunc) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return f(ctx, query)
}

var (
	// ErrSearchFailed marks every failure reported by a backend
	ErrSearchFailed = errors.New("search: failed")

	// ErrBackendUnavailable is returned when the backend cannot be reached or configured
	ErrBackendUnavailable = errors.New("search: backend unavailable")

	// ErrCanceled is returned when the caller's context ended first
	ErrCanceled = errors.New("search: canceled")
)

// failure wraps cause with msg and marks it as ErrSearchFailed
func failure(cause error, msg string) error {
	return errors.Mark(errors.Wrap(cause, msg), ErrSearchFailed)
}

// unavailable marks cause as both ErrBackendUnavailable and ErrSearchFailed
func unavailable(cause error, msg string) error {
	return errors.Mark(errors.Mark(errors.Wrap(cause, msg), ErrBackendUnavailable), ErrSearchFailed)
}

// canceled maps a context error to ErrCanceled, still marked as a failure
func canceled(cause error) error {
	return errors.Mark(errors.Mark(cause, ErrCanceled), ErrSearchFailed)
}

// IsFailure reports whether err came out of a backend
func IsFailure(err error) bool {
	return errors.Is(err, ErrSearchFailed)
}
