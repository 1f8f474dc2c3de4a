package telemetry_test

import (
	"context"
	"testing"

	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled: false,
	}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.False(t, tp.IsEnabled())

	// Lifecycle operations are no-ops when disabled.
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracerProvider_DisabledTracerStillUsable(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled: false,
	}, zap.NewNop())
	require.NoError(t, err)

	tracer := tp.Tracer("test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled: false,
	}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.False(t, mp.IsEnabled())

	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestStartSpan_WithOptions(t *testing.T) {
	ctx, span := telemetry.StartSpan(context.Background(), "scan.execute",
		telemetry.WithAttribute("window_days", 90),
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	telemetry.SetAttributes(span, "lease_count", 12, "high_risk", 3)
	telemetry.SetAttribute(span, "tier", "HIGH")
	telemetry.RecordError(span, assert.AnError)
	telemetry.SetOK(span)
	span.End()
}

func TestStartServiceSpan_NamingConvention(t *testing.T) {
	_, span := telemetry.StartServiceSpan(context.Background(), "workflow", "ensure")
	require.NotNil(t, span)
	span.End()
}
