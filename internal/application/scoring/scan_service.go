package scoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	retentionapp "github.com/polarisaistudio/tenant-prediction/internal/application/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// ScanConfig tunes the batch scanner
type ScanConfig struct {
	// WindowDays selects active leases expiring within this many days
	WindowDays int
	// Concurrency bounds the worker pool
	Concurrency int
}

// DefaultScanConfig returns the standard scan settings
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		WindowDays:  90,
		Concurrency: 8,
	}
}

// ScanService runs the batch risk scan: select expiring leases, score each
// one through the pipeline, and hand MEDIUM/HIGH grades to the workflow
// engine. Lease failures are isolated; one bad record never stops the
// batch. Re-running a scan records fresh predictions but starts no
// duplicate workflows.
type ScanService struct {
	leaseRepo   leasing.LeaseRepository
	scoreSvc    *ScoreService
	workflowSvc *retentionapp.WorkflowService
	config      ScanConfig
	logger      *zap.Logger
}

// NewScanService creates a new ScanService
func NewScanService(
	leaseRepo leasing.LeaseRepository,
	scoreSvc *ScoreService,
	workflowSvc *retentionapp.WorkflowService,
	config ScanConfig,
	logger *zap.Logger,
) *ScanService {
	if config.WindowDays <= 0 {
		config.WindowDays = 90
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 8
	}
	return &ScanService{
		leaseRepo:   leaseRepo,
		scoreSvc:    scoreSvc,
		workflowSvc: workflowSvc,
		config:      config,
		logger:      logger,
	}
}

// ScanExpiring scores every active lease expiring within windowDays of
// asOf. windowDays <= 0 uses the configured window. Cancelling the context
// lets in-flight leases finish their current step and stops scheduling new
// ones.
func (s *ScanService) ScanExpiring(ctx context.Context, asOf time.Time, windowDays int) (*BatchSummary, error) {
	if windowDays <= 0 {
		windowDays = s.config.WindowDays
	}

	leases, err := s.leaseRepo.FindExpiringWithin(ctx, asOf, windowDays)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		ScannedCount: len(leases),
		StartedAt:    asOf,
		Errors:       []LeaseScanError{},
	}

	s.logger.Info("Risk scan started",
		zap.Time("as_of", asOf),
		zap.Int("window_days", windowDays),
		zap.Int("lease_count", len(leases)),
		zap.Int("workers", s.config.Concurrency))

	start := time.Now()
	jobs := make(chan *leasing.Lease)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < s.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lease := range jobs {
				s.processLease(ctx, lease, asOf, summary, &mu)
			}
		}()
	}

feed:
	for i := range leases {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- &leases[i]:
		}
	}
	close(jobs)
	wg.Wait()

	summary.Duration = time.Since(start)

	s.logger.Info("Risk scan finished",
		zap.Int("scanned", summary.ScannedCount),
		zap.Int("predicted", summary.PredictedCount),
		zap.Int("high_risk", summary.HighRiskCount),
		zap.Int("medium_risk", summary.MediumRiskCount),
		zap.Int("low_risk", summary.LowRiskCount),
		zap.Int("workflows_started", summary.WorkflowsStarted),
		zap.Int("skipped", summary.SkippedCount),
		zap.Int("errors", len(summary.Errors)),
		zap.Duration("duration", summary.Duration))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processLease runs one lease through Derive -> Score -> Grade -> Record ->
// Engine. Every failure is classified and appended to the summary.
func (s *ScanService) processLease(ctx context.Context, lease *leasing.Lease, asOf time.Time, summary *BatchSummary, mu *sync.Mutex) {
	prediction, err := s.scoreSvc.ScoreLease(ctx, lease, asOf)
	if err != nil {
		mu.Lock()
		defer mu.Unlock()
		summary.SkippedCount++
		summary.Errors = append(summary.Errors, classifyScanError(lease, err))
		return
	}

	workflowStarted := false
	if prediction.NeedsRetention() {
		result, err := s.workflowSvc.EnsureWorkflow(ctx, lease, prediction)
		if err != nil {
			mu.Lock()
			defer mu.Unlock()
			summary.PredictedCount++
			s.countTier(summary, prediction.RiskTier)
			summary.Errors = append(summary.Errors, LeaseScanError{
				LeaseID: lease.ID,
				Kind:    ScanErrorWorkflow,
				Message: err.Error(),
			})
			return
		}
		workflowStarted = result.Started
	}

	mu.Lock()
	defer mu.Unlock()
	summary.PredictedCount++
	s.countTier(summary, prediction.RiskTier)
	if workflowStarted {
		summary.WorkflowsStarted++
	}
}

func (s *ScanService) countTier(summary *BatchSummary, tier scoring.RiskTier) {
	switch tier {
	case scoring.RiskTierHigh:
		summary.HighRiskCount++
	case scoring.RiskTierMedium:
		summary.MediumRiskCount++
	case scoring.RiskTierLow:
		summary.LowRiskCount++
	}
}

func classifyScanError(lease *leasing.Lease, err error) LeaseScanError {
	kind := ScanErrorPersistence
	switch {
	case errors.Is(err, shared.ErrIncompleteEntity):
		kind = ScanErrorIncompleteEntity
	case errors.Is(err, shared.ErrClassifierUnavailable):
		kind = ScanErrorClassifierUnavailable
	}
	return LeaseScanError{
		LeaseID: lease.ID,
		Kind:    kind,
		Message: err.Error(),
	}
}
