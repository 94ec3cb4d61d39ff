package ports

import (
	"context"
)

// MetricsExporter exports dashboard and API metrics to an external observability system.
type MetricsExporter interface {
	// RecordLoad records the outcome of one dashboard load.
	RecordLoad(ctx context.Context, rows int, err error)
	// RecordListing records one experiments listing served by the API.
	RecordListing(ctx context.Context, rows int, status int)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
