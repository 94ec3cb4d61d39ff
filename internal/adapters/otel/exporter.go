package otel

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/rtgscope/internal/config"
)

const (
	serviceName    = "rtgscope"
	serviceVersion = "1.0.0"
)

// Exporter exports dashboard and API metrics to an OTEL Collector.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	loadsTotal   metric.Int64Counter
	loadedRows   metric.Int64Histogram
	listingTotal metric.Int64Counter
	listingRows  metric.Int64Histogram
}

// NewExporter creates an exporter pushing over OTLP/gRPC to cfg.Endpoint.
func NewExporter(ctx context.Context, cfg config.OTEL) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	loadsTotal, err := meter.Int64Counter(
		"rtgscope_dashboard_loads_total",
		metric.WithDescription("Dashboard loads of the experiments listing, by outcome"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating loads counter: %w", err)
	}

	loadedRows, err := meter.Int64Histogram(
		"rtgscope_dashboard_rows",
		metric.WithDescription("Rows received by successful dashboard loads"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rows histogram: %w", err)
	}

	listingTotal, err := meter.Int64Counter(
		"rtgscope_api_listings_total",
		metric.WithDescription("Experiments listings served by the API, by status code"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listings counter: %w", err)
	}

	listingRows, err := meter.Int64Histogram(
		"rtgscope_api_listing_rows",
		metric.WithDescription("Rows returned per successful listing"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating listing rows histogram: %w", err)
	}

	return &Exporter{
		provider:     provider,
		loadsTotal:   loadsTotal,
		loadedRows:   loadedRows,
		listingTotal: listingTotal,
		listingRows:  listingRows,
	}, nil
}

// RecordLoad counts one dashboard load; failed loads carry outcome="error".
func (e *Exporter) RecordLoad(ctx context.Context, rows int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.loadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if err == nil {
		e.loadedRows.Record(ctx, int64(rows))
	}
}

// RecordListing counts one API listing request.
func (e *Exporter) RecordListing(ctx context.Context, rows int, status int) {
	e.listingTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", strconv.Itoa(status))))
	if status == 200 {
		e.listingRows.Record(ctx, int64(rows))
	}
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
