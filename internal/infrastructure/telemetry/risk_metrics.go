// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RiskMetrics provides business metrics for the churn scoring pipeline.
// It tracks prediction volume, scan throughput, and retention workflow activity.
type RiskMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	predictionRecordedTotal *Counter
	scanTotal               *Counter
	scanErrorTotal          *Counter
	workflowStartedTotal    *Counter
	workflowCompletedTotal  *Counter
	actionExecutedTotal     *Counter

	// Histogram metrics
	scanDuration *Histogram

	// Gauge metrics (point-in-time values)
	predictionsByTier *Gauge
	activeRuns        *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	snapshotProvider RiskSnapshotProvider
}

// RiskSnapshotProvider supplies point-in-time counts for periodic gauge
// collection. The interface keeps the telemetry layer free of repository
// dependencies.
type RiskSnapshotProvider interface {
	// CountPredictionsByTier returns the number of current predictions per risk tier
	CountPredictionsByTier(ctx context.Context) (map[string]int64, error)

	// CountActiveRunsByTier returns the number of active workflow runs per risk tier
	CountActiveRunsByTier(ctx context.Context) (map[string]int64, error)
}

// RiskMetricsConfig holds configuration for risk metrics.
type RiskMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	CollectInterval  time.Duration // Default: 5 minutes
	SnapshotProvider RiskSnapshotProvider
}

// NewRiskMetrics creates a new RiskMetrics instance.
func NewRiskMetrics(cfg RiskMetricsConfig) (*RiskMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rm := &RiskMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		snapshotProvider: cfg.SnapshotProvider,
	}

	var err error

	rm.predictionRecordedTotal, err = NewCounter(
		cfg.Meter,
		"tp_prediction_recorded_total",
		"Total number of churn predictions recorded",
		"{predictions}",
	)
	if err != nil {
		return nil, err
	}

	rm.scanTotal, err = NewCounter(
		cfg.Meter,
		"tp_scan_total",
		"Total number of portfolio risk scans executed",
		"{scans}",
	)
	if err != nil {
		return nil, err
	}

	rm.scanErrorTotal, err = NewCounter(
		cfg.Meter,
		"tp_scan_error_total",
		"Total number of per-lease errors during risk scans",
		"{errors}",
	)
	if err != nil {
		return nil, err
	}

	rm.workflowStartedTotal, err = NewCounter(
		cfg.Meter,
		"tp_workflow_started_total",
		"Total number of retention workflow runs started",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	rm.workflowCompletedTotal, err = NewCounter(
		cfg.Meter,
		"tp_workflow_completed_total",
		"Total number of retention workflow runs completed",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	rm.actionExecutedTotal, err = NewCounter(
		cfg.Meter,
		"tp_action_executed_total",
		"Total number of retention actions executed",
		"{actions}",
	)
	if err != nil {
		return nil, err
	}

	rm.scanDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "tp_scan_duration_seconds",
		Description: "Duration of full portfolio risk scans",
		Unit:        "s",
		Boundaries:  ScanDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	rm.predictionsByTier, err = NewGauge(
		cfg.Meter,
		"tp_predictions_current",
		"Current predictions per risk tier",
		"{predictions}",
	)
	if err != nil {
		return nil, err
	}

	rm.activeRuns, err = NewGauge(
		cfg.Meter,
		"tp_active_workflow_runs",
		"Active retention workflow runs per risk tier",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	return rm, nil
}

// RecordPrediction records a scored and persisted prediction.
func (rm *RiskMetrics) RecordPrediction(ctx context.Context, tier, modelVersion string) {
	rm.predictionRecordedTotal.Inc(ctx,
		AttrRiskTier.String(tier),
		AttrModelVersion.String(modelVersion),
	)
}

// RecordScan records a completed portfolio scan with its duration.
func (rm *RiskMetrics) RecordScan(ctx context.Context, duration time.Duration) {
	rm.scanTotal.Inc(ctx)
	rm.scanDuration.RecordDuration(ctx, duration)
}

// RecordScanError records a per-lease scan failure by error kind.
func (rm *RiskMetrics) RecordScanError(ctx context.Context, kind string) {
	rm.scanErrorTotal.Inc(ctx, AttrScanErrorKind.String(kind))
}

// RecordWorkflowStarted records a workflow run entering the active state.
func (rm *RiskMetrics) RecordWorkflowStarted(ctx context.Context, tier string) {
	rm.workflowStartedTotal.Inc(ctx, AttrRiskTier.String(tier))
}

// RecordWorkflowCompleted records a workflow run reaching a terminal outcome.
func (rm *RiskMetrics) RecordWorkflowCompleted(ctx context.Context, outcome string) {
	rm.workflowCompletedTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordAction records an executed retention action.
func (rm *RiskMetrics) RecordAction(ctx context.Context, actionType, status string) {
	rm.actionExecutedTotal.Inc(ctx,
		AttrActionType.String(actionType),
		AttrActionStatus.String(status),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking. Use Stop() to stop collection.
func (rm *RiskMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	rm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go rm.runPeriodicCollection(ctx, interval)
	})
}

func (rm *RiskMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	rm.collectSnapshots(ctx)

	for {
		select {
		case <-rm.stopChan:
			rm.logger.Info("Stopping periodic risk metrics collection")
			return
		case <-ctx.Done():
			rm.logger.Info("Context cancelled, stopping periodic risk metrics collection")
			return
		case <-ticker.C:
			rm.collectSnapshots(ctx)
		}
	}
}

func (rm *RiskMetrics) collectSnapshots(ctx context.Context) {
	if rm.snapshotProvider == nil {
		rm.logger.Debug("No snapshot provider configured, skipping gauge collection")
		return
	}

	predictions, err := rm.snapshotProvider.CountPredictionsByTier(ctx)
	if err != nil {
		rm.logger.Warn("Failed to collect prediction counts", zap.Error(err))
	} else {
		for tier, count := range predictions {
			rm.predictionsByTier.Record(ctx, count, AttrRiskTier.String(tier))
		}
	}

	runs, err := rm.snapshotProvider.CountActiveRunsByTier(ctx)
	if err != nil {
		rm.logger.Warn("Failed to collect active run counts", zap.Error(err))
	} else {
		for tier, count := range runs {
			rm.activeRuns.Record(ctx, count, AttrRiskTier.String(tier))
		}
	}
}

// Stop stops the periodic collection.
func (rm *RiskMetrics) Stop() {
	rm.stopOnce.Do(func() {
		close(rm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewRiskMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
