package aptcfg

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metrics instruments for staging sessions.
type Metrics struct {
	configureDuration metric.Float64Histogram
}

// NewMetrics creates and registers all staging metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	configureDuration, err := meter.Float64Histogram(
		"aptstage_configure_duration_seconds",
		metric.WithDescription("Time to stage the media-only apt configuration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{configureDuration: configureDuration}, nil
}

var packageMetrics *Metrics

func SetMetrics(m *Metrics) {
	packageMetrics = m
}

func recordConfigureDuration(ctx context.Context, start time.Time, status string) {
	if packageMetrics == nil {
		return
	}
	packageMetrics.configureDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("status", status)))
}
