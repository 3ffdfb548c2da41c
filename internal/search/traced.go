package search

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"searchy/internal/domain"
)

type traced struct {
	name   string
	next   Backend
	tracer trace.Tracer
}

// Traced wraps next so every query produces a span on the global tracer
// provider. The binary installs one with --trace; otherwise spans are no-ops.
func Traced(name string, next Backend) Backend {
	return &traced{
		name:   name,
		next:   next,
		tracer: otel.Tracer("searchy/search"),
	}
}

func (t *traced) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	ctx, span := t.tracer.Start(ctx, "search."+t.name,
		trace.WithAttributes(
			attribute.String("search.backend", t.name),
			attribute.String("search.query", query),
		),
	)
	defer span.End()

	start := time.Now()
	results, err := t.next.Search(ctx, query)
	span.SetAttributes(attribute.Int64("search.took_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.results", len(results)))
	return results, nil
}
