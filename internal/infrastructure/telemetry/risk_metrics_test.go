package telemetry_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewRiskMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	rm, err := telemetry.NewRiskMetrics(telemetry.RiskMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, rm)
}

func TestNewRiskMetrics_NilMeter(t *testing.T) {
	rm, err := telemetry.NewRiskMetrics(telemetry.RiskMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, rm)
	assert.Equal(t, "NewRiskMetrics: meter cannot be nil", err.Error())
}

func TestRiskMetrics_RecordCounters(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	rm, err := telemetry.NewRiskMetrics(telemetry.RiskMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	rm.RecordPrediction(ctx, "HIGH", "v2.1.0")
	rm.RecordScan(ctx, 3*time.Second)
	rm.RecordScanError(ctx, "classifier_unavailable")
	rm.RecordWorkflowStarted(ctx, "HIGH")
	rm.RecordWorkflowCompleted(ctx, "renewed")
	rm.RecordAction(ctx, "send_retention_email", "completed")
}

type fakeSnapshotProvider struct {
	predictionCalls atomic.Int64
	runCalls        atomic.Int64
}

func (p *fakeSnapshotProvider) CountPredictionsByTier(ctx context.Context) (map[string]int64, error) {
	p.predictionCalls.Add(1)
	return map[string]int64{"HIGH": 3, "MEDIUM": 5}, nil
}

func (p *fakeSnapshotProvider) CountActiveRunsByTier(ctx context.Context) (map[string]int64, error) {
	p.runCalls.Add(1)
	return map[string]int64{"HIGH": 2}, nil
}

func TestRiskMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &fakeSnapshotProvider{}

	rm, err := telemetry.NewRiskMetrics(telemetry.RiskMetricsConfig{
		Meter:            meter,
		Logger:           zap.NewNop(),
		SnapshotProvider: provider,
	})
	require.NoError(t, err)

	ctx := context.Background()
	rm.StartPeriodicCollection(ctx, 10*time.Millisecond)
	defer rm.Stop()

	// The collector samples immediately on start and then on every tick.
	assert.Eventually(t, func() bool {
		return provider.predictionCalls.Load() >= 2 && provider.runCalls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRiskMetrics_StopIsIdempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	rm, err := telemetry.NewRiskMetrics(telemetry.RiskMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	rm.StartPeriodicCollection(context.Background(), time.Hour)
	rm.Stop()
	rm.Stop()
}
