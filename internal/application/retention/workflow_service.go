package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// WorkflowServiceConfig tunes the engine's locking and retry behavior
type WorkflowServiceConfig struct {
	LeaseLockTTL time.Duration
	Retry        shared.RetryPolicy
}

// DefaultWorkflowServiceConfig returns the standard engine settings
func DefaultWorkflowServiceConfig() WorkflowServiceConfig {
	return WorkflowServiceConfig{
		LeaseLockTTL: 5 * time.Minute,
		Retry:        shared.DefaultRetryPolicy(),
	}
}

// WorkflowService is the retention workflow engine. It decides when a run
// starts, executes plan steps through the collaborator interfaces, records
// every action, and resumes runs whose monitoring windows elapsed.
//
// The one-active-run-per-lease invariant is enforced twice: the per-lease
// lock serializes overlapping scan invocations, and the repository's atomic
// check-and-set catches anything the lock misses. A conflict from either
// layer is a benign no-op.
type WorkflowService struct {
	workflowRepo retention.WorkflowRepository
	actionRepo   retention.ActionRepository
	leaseRepo    leasing.LeaseRepository
	tenantRepo   leasing.TenantRepository
	notifier     retention.Notifier
	contacts     retention.ContactScheduler
	monitor      retention.ResponseMonitor
	leaseLock    retention.LeaseLock
	planCfg      retention.PlanConfig
	incentiveCfg retention.IncentiveConfig
	config       WorkflowServiceConfig
	logger       *zap.Logger

	// now is injectable for tests
	now func() time.Time
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	workflowRepo retention.WorkflowRepository,
	actionRepo retention.ActionRepository,
	leaseRepo leasing.LeaseRepository,
	tenantRepo leasing.TenantRepository,
	notifier retention.Notifier,
	contacts retention.ContactScheduler,
	monitor retention.ResponseMonitor,
	leaseLock retention.LeaseLock,
	planCfg retention.PlanConfig,
	incentiveCfg retention.IncentiveConfig,
	config WorkflowServiceConfig,
	logger *zap.Logger,
) *WorkflowService {
	if config.LeaseLockTTL <= 0 {
		config.LeaseLockTTL = 5 * time.Minute
	}
	if config.Retry.MaxAttempts <= 0 {
		config.Retry = shared.DefaultRetryPolicy()
	}
	return &WorkflowService{
		workflowRepo: workflowRepo,
		actionRepo:   actionRepo,
		leaseRepo:    leaseRepo,
		tenantRepo:   tenantRepo,
		notifier:     notifier,
		contacts:     contacts,
		monitor:      monitor,
		leaseLock:    leaseLock,
		planCfg:      planCfg,
		incentiveCfg: incentiveCfg,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// EnsureWorkflow evaluates the retention entry condition for a lease after
// scoring. LOW tier is a no-op. A fresh MEDIUM/HIGH prediction starts a run
// when none is active; a strictly higher tier supersedes the active run;
// same-or-lower tier over an active run is a no-op, which keeps repeated
// scans idempotent.
func (s *WorkflowService) EnsureWorkflow(ctx context.Context, lease *leasing.Lease, prediction *scoring.Prediction) (*EnsureResult, error) {
	if !prediction.NeedsRetention() {
		return &EnsureResult{Reason: "tier below retention threshold"}, nil
	}
	if lease.Status.IsTerminal() {
		return &EnsureResult{Reason: "lease already resolved"}, nil
	}

	acquired, err := s.leaseLock.Acquire(ctx, lease.ID, s.config.LeaseLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		s.logger.Debug("Lease lock held elsewhere, skipping workflow evaluation",
			zap.String("lease_id", lease.ID.String()))
		return &EnsureResult{Reason: "lease locked by another scan"}, nil
	}
	defer func() {
		if err := s.leaseLock.Release(ctx, lease.ID); err != nil {
			s.logger.Warn("Failed to release lease lock",
				zap.String("lease_id", lease.ID.String()), zap.Error(err))
		}
	}()

	active, err := s.workflowRepo.FindActiveByLease(ctx, lease.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return s.startRun(ctx, lease, prediction)
	case err != nil:
		return nil, err
	}

	if !active.ShouldSupersedeFor(prediction.RiskTier) {
		return &EnsureResult{
			Reason: fmt.Sprintf("active %s run not superseded by %s", active.TierAtStart, prediction.RiskTier),
			Run:    NewWorkflowRunResponse(active),
		}, nil
	}
	return s.supersedeRun(ctx, lease, prediction, active)
}

func (s *WorkflowService) startRun(ctx context.Context, lease *leasing.Lease, prediction *scoring.Prediction) (*EnsureResult, error) {
	run, err := retention.NewWorkflowRun(lease.ID, prediction.RiskTier, prediction.RiskScore, s.planCfg)
	if err != nil {
		return nil, err
	}
	if err := s.workflowRepo.CreateActive(ctx, run); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			// Another invocation won the race; its run covers the lease.
			return &EnsureResult{Reason: "concurrent run already active"}, nil
		}
		return nil, err
	}

	s.logger.Info("Retention workflow started",
		zap.String("run_id", run.ID.String()),
		zap.String("lease_id", lease.ID.String()),
		zap.String("tier", run.TierAtStart.String()),
		zap.Int("risk_score", run.RiskScoreAtStart))

	if err := s.executeRun(ctx, run, lease); err != nil {
		return nil, err
	}
	return &EnsureResult{Started: true, Run: NewWorkflowRunResponse(run)}, nil
}

func (s *WorkflowService) supersedeRun(ctx context.Context, lease *leasing.Lease, prediction *scoring.Prediction, old *retention.WorkflowRun) (*EnsureResult, error) {
	replacement, err := retention.NewWorkflowRun(lease.ID, prediction.RiskTier, prediction.RiskScore, s.planCfg)
	if err != nil {
		return nil, err
	}
	if err := old.Supersede(s.now()); err != nil {
		return nil, err
	}
	if err := s.workflowRepo.SupersedeAndCreate(ctx, old, replacement); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return &EnsureResult{Reason: "run superseded by concurrent invocation"}, nil
		}
		return nil, err
	}

	s.logger.Info("Retention workflow superseded",
		zap.String("old_run_id", old.ID.String()),
		zap.String("run_id", replacement.ID.String()),
		zap.String("lease_id", lease.ID.String()),
		zap.String("old_tier", old.TierAtStart.String()),
		zap.String("tier", replacement.TierAtStart.String()))

	if err := s.executeRun(ctx, replacement, lease); err != nil {
		return nil, err
	}
	return &EnsureResult{Started: true, Superseded: true, Run: NewWorkflowRunResponse(replacement)}, nil
}

// executeRun drives a run from its current cursor until it completes or
// pauses at a monitoring window.
func (s *WorkflowService) executeRun(ctx context.Context, run *retention.WorkflowRun, lease *leasing.Lease) error {
	if run.Status == retention.RunStatusPending {
		if err := run.Start(s.now()); err != nil {
			return err
		}
		if err := s.workflowRepo.Save(ctx, run); err != nil {
			return err
		}
	}
	return s.advance(ctx, run, lease)
}

func (s *WorkflowService) advance(ctx context.Context, run *retention.WorkflowRun, lease *leasing.Lease) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// The lease may resolve mid-run; remaining steps are pointless then.
		fresh, err := s.leaseRepo.FindByID(ctx, run.LeaseID)
		if err == nil {
			lease = fresh
		}
		if lease.Status.IsTerminal() {
			return s.forceComplete(ctx, run, lease)
		}

		step, ok := run.CurrentStep()
		if !ok {
			// Plan exhausted without a tenant response.
			if err := run.Complete(s.now(), retention.OutcomeNoResponse); err != nil {
				return err
			}
			if err := s.workflowRepo.Save(ctx, run); err != nil {
				return err
			}
			s.logger.Info("Retention workflow completed",
				zap.String("run_id", run.ID.String()),
				zap.String("outcome", string(run.Outcome)))
			return nil
		}

		if step.IsMonitor() {
			until := s.now().Add(step.Window)
			if err := run.BeginWait(until); err != nil {
				return err
			}
			if err := s.workflowRepo.Save(ctx, run); err != nil {
				return err
			}
			s.logger.Info("Retention workflow waiting on tenant response",
				zap.String("run_id", run.ID.String()),
				zap.Time("waiting_until", until))
			return nil
		}

		s.executeStep(ctx, run, lease, step)

		if err := run.AdvanceStep(); err != nil {
			return err
		}
		if err := s.workflowRepo.Save(ctx, run); err != nil {
			return err
		}
	}
}

// executeStep performs one plan step: the action row is recorded pending
// before the collaborator call, retried with backoff, and resolved to
// completed or failed. A failed step never aborts the run.
func (s *WorkflowService) executeStep(ctx context.Context, run *retention.WorkflowRun, lease *leasing.Lease, step retention.PlanStep) {
	cost := s.planCfg.CostFor(step.Action)
	estimatedValue := decimal.Zero
	if step.Action == retention.ActionGenerateOffer || step.Action == retention.ActionGenerateIncentive {
		incentive := s.incentiveCfg.ForScore(run.RiskScoreAtStart)
		cost = incentive.Cost(lease.MonthlyRent)
		estimatedValue = run.RiskMitigationValue
	}

	action := retention.NewRetentionAction(
		run.ID, run.LeaseID, step.Action, run.TierAtStart,
		cost, estimatedValue, s.now(),
	)
	if err := s.actionRepo.Save(ctx, action); err != nil {
		s.logger.Error("Failed to record retention action",
			zap.String("run_id", run.ID.String()),
			zap.String("action_type", string(step.Action)),
			zap.Error(err))
		return
	}

	err := s.config.Retry.Do(ctx, func(ctx context.Context) error {
		if err := action.MarkInProgress(); err != nil {
			return err
		}
		return s.performAction(ctx, run, lease, step.Action)
	})

	if err != nil {
		if failErr := action.Fail(s.now(), err.Error()); failErr != nil {
			s.logger.Error("Failed to mark action failed", zap.Error(failErr))
		}
		s.logger.Warn("Retention action failed after retries",
			zap.String("run_id", run.ID.String()),
			zap.String("lease_id", run.LeaseID.String()),
			zap.String("action_type", string(step.Action)),
			zap.Int("attempts", action.AttemptCount),
			zap.Error(err))
	} else {
		if completeErr := action.Complete(s.now()); completeErr != nil {
			s.logger.Error("Failed to mark action completed", zap.Error(completeErr))
		}
	}

	if err := s.actionRepo.Save(ctx, action); err != nil {
		s.logger.Error("Failed to persist retention action result",
			zap.String("action_id", action.ID.String()), zap.Error(err))
	}
}

// performAction makes exactly one collaborator call for the step
func (s *WorkflowService) performAction(ctx context.Context, run *retention.WorkflowRun, lease *leasing.Lease, actionType retention.ActionType) error {
	switch actionType {
	case retention.ActionAlertPropertyManager:
		_, err := s.notifier.Send(ctx, retention.Notification{
			Channel:   retention.ChannelInternal,
			Template:  "property-manager-alert",
			Recipient: "property-manager",
			Data: map[string]interface{}{
				"lease_id":   run.LeaseID.String(),
				"risk_score": run.RiskScoreAtStart,
				"risk_tier":  run.TierAtStart.String(),
				"end_date":   lease.EndDate,
			},
		})
		return err

	case retention.ActionScheduleConciergCall:
		_, err := s.contacts.ScheduleCall(ctx, retention.ContactRequest{
			LeaseID:     run.LeaseID,
			TenantPhone: s.tenantPhone(ctx, lease),
			CallScript:  "renewal-checkin",
			Urgency:     run.Priority,
			MaxAttempts: s.config.Retry.MaxAttempts,
		})
		return err

	case retention.ActionScheduleMeeting:
		_, err := s.contacts.ScheduleCall(ctx, retention.ContactRequest{
			LeaseID:     run.LeaseID,
			TenantPhone: s.tenantPhone(ctx, lease),
			CallScript:  "in-person-meeting",
			Urgency:     run.Priority,
			MaxAttempts: s.config.Retry.MaxAttempts,
		})
		return err

	case retention.ActionGenerateOffer, retention.ActionGenerateIncentive:
		// Offer generation is a pure function of the risk score; the action
		// row records the offer's cost, the send step delivers it.
		return nil

	case retention.ActionSendRetentionEmail:
		return s.sendTenantEmail(ctx, run, lease, "retention-email", nil)

	case retention.ActionSendIncentiveOffer:
		incentive := s.incentiveCfg.ForScore(run.RiskScoreAtStart)
		return s.sendTenantEmail(ctx, run, lease, "incentive-offer", map[string]interface{}{
			"incentive_type": string(incentive.Type),
			"description":    incentive.Description,
			"expires_days":   incentive.ExpirationDays,
		})

	case retention.ActionSendReminderEmail:
		return s.sendTenantEmail(ctx, run, lease, "retention-reminder", nil)

	case retention.ActionEscalateToRegional:
		_, err := s.notifier.Send(ctx, retention.Notification{
			Channel:   retention.ChannelInternal,
			Template:  "regional-escalation",
			Recipient: "regional-manager",
			Data: map[string]interface{}{
				"lease_id":   run.LeaseID.String(),
				"risk_score": run.RiskScoreAtStart,
			},
		})
		return err

	case retention.ActionFlagForFollowUp:
		_, err := s.notifier.Send(ctx, retention.Notification{
			Channel:   retention.ChannelInternal,
			Template:  "follow-up-flag",
			Recipient: "property-manager",
			Data:      map[string]interface{}{"lease_id": run.LeaseID.String()},
		})
		return err

	case retention.ActionProcessRenewal:
		_, err := s.notifier.Send(ctx, retention.Notification{
			Channel:   retention.ChannelInternal,
			Template:  "renewal-processing",
			Recipient: "leasing-office",
			Data:      map[string]interface{}{"lease_id": run.LeaseID.String()},
		})
		return err

	default:
		return shared.NewDomainError("UNKNOWN_ACTION", "No executor for action type "+string(actionType))
	}
}

func (s *WorkflowService) sendTenantEmail(ctx context.Context, run *retention.WorkflowRun, lease *leasing.Lease, template string, extra map[string]interface{}) error {
	data := map[string]interface{}{
		"lease_id": run.LeaseID.String(),
		"end_date": lease.EndDate,
	}
	for k, v := range extra {
		data[k] = v
	}
	_, err := s.notifier.Send(ctx, retention.Notification{
		Channel:   retention.ChannelEmail,
		Template:  template,
		Recipient: s.tenantEmail(ctx, lease),
		Data:      data,
	})
	return err
}

func (s *WorkflowService) tenantEmail(ctx context.Context, lease *leasing.Lease) string {
	tenant, err := s.tenantRepo.FindByID(ctx, lease.TenantID)
	if err != nil || tenant.Email == "" {
		return "tenant:" + lease.TenantID.String()
	}
	return tenant.Email
}

func (s *WorkflowService) tenantPhone(ctx context.Context, lease *leasing.Lease) string {
	tenant, err := s.tenantRepo.FindByID(ctx, lease.TenantID)
	if err != nil {
		return ""
	}
	return tenant.Phone
}

// forceComplete resolves a run whose lease reached a terminal status.
// Remaining steps are skipped; the outcome mirrors the lease resolution.
func (s *WorkflowService) forceComplete(ctx context.Context, run *retention.WorkflowRun, lease *leasing.Lease) error {
	outcome := retention.OutcomeNotRenewed
	if lease.Status == leasing.LeaseStatusRenewed {
		outcome = retention.OutcomeRenewed
	}
	if err := run.Complete(s.now(), outcome); err != nil {
		return err
	}
	if err := s.workflowRepo.Save(ctx, run); err != nil {
		return err
	}
	s.logger.Info("Retention workflow force-completed on lease resolution",
		zap.String("run_id", run.ID.String()),
		zap.String("lease_status", lease.Status.String()),
		zap.String("outcome", string(outcome)))
	return nil
}

// ResumeWaiting picks up runs whose monitoring window elapsed. A tenant
// response resolves the run immediately; silence advances past the monitor
// step so the remaining plan (escalation, reminder) executes.
func (s *WorkflowService) ResumeWaiting(ctx context.Context, asOf time.Time, limit int) (int, error) {
	runs, err := s.workflowRepo.FindResumable(ctx, asOf, limit)
	if err != nil {
		return 0, err
	}

	resumed := 0
	for i := range runs {
		run := &runs[i]
		if err := s.resumeRun(ctx, run); err != nil {
			s.logger.Error("Failed to resume workflow run",
				zap.String("run_id", run.ID.String()), zap.Error(err))
			continue
		}
		resumed++
	}
	return resumed, nil
}

func (s *WorkflowService) resumeRun(ctx context.Context, run *retention.WorkflowRun) error {
	acquired, err := s.leaseLock.Acquire(ctx, run.LeaseID, s.config.LeaseLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return nil
	}
	defer func() {
		if err := s.leaseLock.Release(ctx, run.LeaseID); err != nil {
			s.logger.Warn("Failed to release lease lock",
				zap.String("lease_id", run.LeaseID.String()), zap.Error(err))
		}
	}()

	lease, err := s.leaseRepo.FindByID(ctx, run.LeaseID)
	if err != nil {
		return err
	}
	if lease.Status.IsTerminal() {
		return s.forceComplete(ctx, run, lease)
	}

	step, ok := run.CurrentStep()
	if !ok || !step.IsMonitor() || run.WaitingUntil == nil {
		// Cursor drifted from the waiting state; let advance sort it out.
		return s.advance(ctx, run, lease)
	}

	since := run.WaitingUntil.Add(-step.Window)
	signal, err := s.monitor.CheckResponse(ctx, run.LeaseID, since)
	if err != nil {
		return err
	}

	if signal != nil && signal.Responded {
		return s.closeOnResponse(ctx, run, lease, signal)
	}

	// No response inside the window: move past the monitor step and run
	// the rest of the plan.
	if err := run.AdvanceStep(); err != nil {
		return err
	}
	if err := s.workflowRepo.Save(ctx, run); err != nil {
		return err
	}
	return s.advance(ctx, run, lease)
}

// closeOnResponse resolves a run after a tenant response. The closing steps
// for the response replace the remaining plan and execute, then the run
// completes with the matching outcome: a positive response books the renewal
// meeting and hands processing to the leasing office, a negative one flags
// the lease for manual follow-up.
func (s *WorkflowService) closeOnResponse(ctx context.Context, run *retention.WorkflowRun, lease *leasing.Lease, signal *retention.ResponseSignal) error {
	closing := retention.DeclineClosingSteps()
	outcome := retention.OutcomeNotRenewed
	if signal.Positive {
		closing = retention.RenewalClosingSteps()
		outcome = retention.OutcomeRenewed
	}

	if err := run.BeginClosing(closing); err != nil {
		return err
	}
	if err := s.workflowRepo.Save(ctx, run); err != nil {
		return err
	}
	for {
		step, ok := run.CurrentStep()
		if !ok {
			break
		}
		s.executeStep(ctx, run, lease, step)
		if err := run.AdvanceStep(); err != nil {
			return err
		}
		if err := s.workflowRepo.Save(ctx, run); err != nil {
			return err
		}
	}

	if err := run.Complete(s.now(), outcome); err != nil {
		return err
	}
	if err := s.workflowRepo.Save(ctx, run); err != nil {
		return err
	}
	s.logger.Info("Retention workflow completed on tenant response",
		zap.String("run_id", run.ID.String()),
		zap.String("outcome", string(outcome)),
		zap.String("channel", string(signal.Channel)))
	return nil
}

// StartWorkflow evaluates the workflow entry condition for a lease on
// demand, using its current prediction. DryRun previews the plan without
// persisting anything.
func (s *WorkflowService) StartWorkflow(ctx context.Context, leaseID uuid.UUID, prediction *scoring.Prediction, dryRun bool) (*EnsureResult, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	if dryRun {
		if !prediction.NeedsRetention() {
			return &EnsureResult{Reason: "tier below retention threshold"}, nil
		}
		preview, err := retention.NewWorkflowRun(lease.ID, prediction.RiskTier, prediction.RiskScore, s.planCfg)
		if err != nil {
			return nil, err
		}
		return &EnsureResult{Reason: "dry run", Run: NewWorkflowRunResponse(preview)}, nil
	}
	return s.EnsureWorkflow(ctx, lease, prediction)
}

// GetRun returns one workflow run with its recorded actions
func (s *WorkflowService) GetRun(ctx context.Context, id uuid.UUID) (*retention.WorkflowRun, []retention.RetentionAction, error) {
	run, err := s.workflowRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	actions, err := s.actionRepo.FindByRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, actions, nil
}

// Metrics aggregates run and action counts for the range
func (s *WorkflowService) Metrics(ctx context.Context, from, to time.Time) (*WorkflowMetrics, error) {
	byStatus, err := s.workflowRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byOutcome, err := s.workflowRepo.CountByOutcome(ctx, from, to)
	if err != nil {
		return nil, err
	}
	actions, err := s.actionRepo.TriggeredInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	metrics := &WorkflowMetrics{
		From:          from,
		To:            to,
		RunsByStatus:  byStatus,
		RunsByOutcome: byOutcome,
		ActionsByType: make(map[retention.ActionType]int64),
		ActionsByTier: make(map[scoring.RiskTier]int64),
	}
	for i := range actions {
		action := &actions[i]
		metrics.ActionsByType[action.ActionType]++
		metrics.ActionsByTier[action.RiskTier]++
		metrics.TotalActions++
		if action.Status == retention.ActionStatusFailed {
			metrics.FailedActions++
		}
	}
	return metrics, nil
}
