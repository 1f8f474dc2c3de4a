package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/application/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/application/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/telemetry"
)

// ScanScheduler drives the periodic risk scan and the resume sweep for
// workflow runs parked on a monitoring window.
type ScanScheduler struct {
	scanService     *scoring.ScanService
	workflowService *retention.WorkflowService
	logger          *zap.Logger
	config          ScanSchedulerConfig
	metrics         *telemetry.RiskMetrics
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	mu              sync.Mutex
	isRunning       bool
	scanInFlight    bool
}

// ScanSchedulerConfig holds configuration for the scan scheduler
type ScanSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// ScanInterval is the period between full portfolio scans
	ScanInterval time.Duration

	// ResumeInterval is the period between sweeps for runs whose
	// monitoring window has elapsed
	ResumeInterval time.Duration

	// JobTimeout is the maximum time for a single scan or sweep
	JobTimeout time.Duration

	// ResumeBatchLimit caps how many waiting runs a single sweep picks up.
	// Zero means no limit.
	ResumeBatchLimit int
}

// DefaultScanSchedulerConfig returns default configuration
func DefaultScanSchedulerConfig() ScanSchedulerConfig {
	return ScanSchedulerConfig{
		Enabled:          true,
		ScanInterval:     24 * time.Hour,
		ResumeInterval:   time.Hour,
		JobTimeout:       30 * time.Minute,
		ResumeBatchLimit: 500,
	}
}

// Validate checks the configuration for consistency
func (c ScanSchedulerConfig) Validate() error {
	if c.ScanInterval <= 0 || c.ResumeInterval <= 0 || c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// NewScanScheduler creates a new scan scheduler
func NewScanScheduler(
	scanService *scoring.ScanService,
	workflowService *retention.WorkflowService,
	logger *zap.Logger,
	config ScanSchedulerConfig,
) (*ScanScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ScanScheduler{
		scanService:     scanService,
		workflowService: workflowService,
		logger:          logger,
		config:          config,
	}, nil
}

// SetMetrics attaches domain metrics. Call before Start; nil disables
// metric recording.
func (s *ScanScheduler) SetMetrics(metrics *telemetry.RiskMetrics) {
	s.metrics = metrics
}

// Start starts the scheduler loops
func (s *ScanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Scan scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runScanLoop(ctx)

	s.wg.Add(1)
	go s.runResumeLoop(ctx)

	s.logger.Info("Scan scheduler started",
		zap.Duration("scan_interval", s.config.ScanInterval),
		zap.Duration("resume_interval", s.config.ResumeInterval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *ScanScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	// Wait for loops to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scan scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scan scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is currently active
func (s *ScanScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// TriggerScan runs a portfolio scan immediately, outside the normal cadence.
// Only one scan may be in flight at a time.
func (s *ScanScheduler) TriggerScan(ctx context.Context) (*scoring.BatchSummary, error) {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil, ErrSchedulerNotRunning
	}
	if s.scanInFlight {
		s.mu.Unlock()
		return nil, ErrScanAlreadyInProgress
	}
	s.scanInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanInFlight = false
		s.mu.Unlock()
	}()

	scanCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	return s.scanService.ScanExpiring(scanCtx, time.Now(), 0)
}

// runScanLoop runs a portfolio scan on every tick
func (s *ScanScheduler) runScanLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.ScanInterval)
	defer ticker.Stop()

	// First scan happens shortly after startup rather than a full
	// interval later, so a restarted service catches up quickly.
	s.executeScan(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scan loop stopping")
			return
		case <-ticker.C:
			s.executeScan(ctx)
		}
	}
}

// runResumeLoop sweeps for resumable workflow runs on every tick
func (s *ScanScheduler) runResumeLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.ResumeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Resume loop stopping")
			return
		case <-ticker.C:
			s.executeResume(ctx)
		}
	}
}

// executeScan runs a single full portfolio scan
func (s *ScanScheduler) executeScan(ctx context.Context) {
	s.mu.Lock()
	if s.scanInFlight {
		s.mu.Unlock()
		s.logger.Warn("Skipping scheduled scan, previous scan still in flight")
		return
	}
	s.scanInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanInFlight = false
		s.mu.Unlock()
	}()

	scanCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	scanCtx, span := telemetry.StartSpan(scanCtx, "risk_scan.scheduled")
	defer span.End()

	startTime := time.Now()
	summary, err := s.scanService.ScanExpiring(scanCtx, startTime, 0)
	duration := time.Since(startTime)

	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Scheduled risk scan failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordScan(scanCtx, duration)
		for _, scanErr := range summary.Errors {
			s.metrics.RecordScanError(scanCtx, string(scanErr.Kind))
		}
	}

	telemetry.SetAttributes(span,
		"scanned", summary.ScannedCount,
		"predicted", summary.PredictedCount,
		"workflows_started", summary.WorkflowsStarted,
	)

	s.logger.Info("Scheduled risk scan completed",
		zap.Duration("duration", duration),
		zap.Int("scanned", summary.ScannedCount),
		zap.Int("predicted", summary.PredictedCount),
		zap.Int("high_risk", summary.HighRiskCount),
		zap.Int("workflows_started", summary.WorkflowsStarted),
		zap.Int("skipped", summary.SkippedCount),
	)
}

// executeResume runs a single sweep over runs whose monitoring window elapsed
func (s *ScanScheduler) executeResume(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	sweepCtx, span := telemetry.StartSpan(sweepCtx, "retention.resume_sweep")
	defer span.End()

	startTime := time.Now()
	resumed, err := s.workflowService.ResumeWaiting(sweepCtx, startTime, s.config.ResumeBatchLimit)
	duration := time.Since(startTime)

	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Workflow resume sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if resumed > 0 {
		s.logger.Info("Workflow resume sweep completed",
			zap.Duration("duration", duration),
			zap.Int("resumed", resumed),
		)
	}
}
