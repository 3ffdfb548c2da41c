// Package telemetry installs an OpenTelemetry tracer provider that writes
// finished spans to the standard logger, which the binary points at its log
// file.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogExporter is a span exporter that prints one line per span
type LogExporter struct {
	logger *log.Logger
}

// NewLogExporter creates an exporter writing to logger, or to the standard
// logger when logger is nil
func NewLogExporter(logger *log.Logger) *LogExporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogExporter{logger: logger}
}

func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.logger.Print(FormatSpan(s))
	}
	return nil
}

func (e *LogExporter) Shutdown(ctx context.Context) error {
	return nil
}

// FormatSpan renders a span as "Trace: name took status key=value ..."
func FormatSpan(s sdktrace.ReadOnlySpan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trace: %s took=%s", s.Name(), s.EndTime().Sub(s.StartTime()))
	if st := s.Status(); st.Code == codes.Error {
		fmt.Fprintf(&b, " status=error")
		if st.Description != "" {
			fmt.Fprintf(&b, " (%s)", st.Description)
		}
	}
	for _, kv := range s.Attributes() {
		fmt.Fprintf(&b, " %s=%s", kv.Key, kv.Value.Emit())
	}
	for _, ev := range s.Events() {
		for _, kv := range ev.Attributes {
			if kv.Key == "exception.message" {
				fmt.Fprintf(&b, " error=%q", kv.Value.AsString())
			}
		}
	}
	return b.String()
}

// Install makes a log-backed provider the global tracer provider. Spans are
// exported synchronously as they end. The returned func flushes and removes
// the provider.
func Install(logger *log.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewLogExporter(logger)))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		otel.SetTracerProvider(prev)
		return tp.Shutdown(ctx)
	}
}
