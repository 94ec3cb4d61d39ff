package otel

import (
	"context"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordLoad(ctx context.Context, rows int, err error) {}

func (e *NoOpExporter) RecordListing(ctx context.Context, rows int, status int) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
