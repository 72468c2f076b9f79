package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/davidleathers/decision-risk-engine/internal/domain/financial"
	"github.com/davidleathers/decision-risk-engine/internal/metrics"
)

// TestContext creates a context with timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// FixedClock returns a clock frozen at the given RFC 3339 instant
func FixedClock(t *testing.T, at string) *financial.FixedClock {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, at)
	require.NoError(t, err, "failed to parse %s", at)
	return &financial.FixedClock{CurrentTime: ts.UTC()}
}

// MetricsRegistry builds a registry backed by a manual reader so tests can
// inspect what engines recorded
func MetricsRegistry(t *testing.T) (*metrics.Registry, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r, err := metrics.NewRegistryWithMeter(provider.Meter("test"))
	require.NoError(t, err)
	return r, reader
}

// CollectMetrics returns the collected instruments keyed by name
func CollectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}
