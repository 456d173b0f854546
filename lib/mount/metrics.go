package mount

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the metrics instruments for mount operations.
type Metrics struct {
	mountOps     metric.Int64Counter
	activeMounts metric.Int64UpDownCounter
}

// NewMetrics creates and registers all mount metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	mountOps, err := meter.Int64Counter(
		"aptstage_mount_operations_total",
		metric.WithDescription("Mount and unmount operations issued"),
	)
	if err != nil {
		return nil, err
	}

	activeMounts, err := meter.Int64UpDownCounter(
		"aptstage_mounts_active",
		metric.WithDescription("Mounts currently recorded in staging ledgers"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		mountOps:     mountOps,
		activeMounts: activeMounts,
	}, nil
}

// packageMetrics is set once at startup; nil means metrics are disabled.
var packageMetrics *Metrics

func SetMetrics(m *Metrics) {
	packageMetrics = m
}

func recordMountOp(ctx context.Context, op, status string, delta int64) {
	if packageMetrics == nil {
		return
	}
	packageMetrics.mountOps.Add(ctx, 1,
		metric.WithAttributes(attribute.String("op", op), attribute.String("status", status)))
	if delta != 0 {
		packageMetrics.activeMounts.Add(ctx, delta)
	}
}
