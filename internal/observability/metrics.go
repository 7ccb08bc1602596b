package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brickwell/healthcore/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	entityWrites     metric.Int64Counter
	unitRetries      metric.Int64Counter
	exportEvents     metric.Int64Counter
	exportQuarantine metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.OtelEnabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}
	return provider, nil
}

// NewMetrics configures the domain metrics instruments.
func NewMetrics(cfg config.Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = "healthcore"
	}
	meter := provider.Meter(name)

	entityWrites, err := meter.Int64Counter("healthcore_entity_writes_total")
	if err != nil {
		return nil, err
	}
	unitRetries, err := meter.Int64Counter("healthcore_unit_retries_total")
	if err != nil {
		return nil, err
	}
	exportEvents, err := meter.Int64Counter("healthcore_export_events_total")
	if err != nil {
		return nil, err
	}
	exportQuarantine, err := meter.Int64Counter("healthcore_export_quarantined_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		entityWrites:     entityWrites,
		unitRetries:      unitRetries,
		exportEvents:     exportEvents,
		exportQuarantine: exportQuarantine,
	}, nil
}

// RecordEntityWrite increments committed write counts per table.
func (m *Metrics) RecordEntityWrite(ctx context.Context, table string) {
	if m == nil {
		return
	}
	m.entityWrites.Add(ctx, 1, metric.WithAttributes(attribute.String("table", table)))
}

// RecordUnitRetry increments atomic unit retry counts.
func (m *Metrics) RecordUnitRetry(ctx context.Context, unit string) {
	if m == nil {
		return
	}
	m.unitRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("unit", unit)))
}

// RecordExportEvent increments published export event counts.
func (m *Metrics) RecordExportEvent(ctx context.Context, table, eventType string) {
	if m == nil {
		return
	}
	m.exportEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("table", table),
		attribute.String("event_type", eventType),
	))
}

// RecordQuarantine increments quarantined export record counts.
func (m *Metrics) RecordQuarantine(ctx context.Context, table string) {
	if m == nil {
		return
	}
	m.exportQuarantine.Add(ctx, 1, metric.WithAttributes(attribute.String("table", table)))
}

func newExporter(endpoint string) (sdkmetric.Exporter, error) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case strings.HasPrefix(endpoint, "http://"), strings.HasPrefix(endpoint, "https://"):
		return otlpmetrichttp.New(context.Background(), otlpmetrichttp.WithEndpointURL(endpoint))
	case endpoint != "":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithInsecure(),
			otlpmetricgrpc.WithEndpoint(endpoint),
		)
	default:
		return nil, fmt.Errorf("OTLP endpoint is required when metrics are enabled")
	}
}
