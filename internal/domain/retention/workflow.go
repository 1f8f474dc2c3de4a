package retention

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// RunStatus is the state of a workflow run
type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusRunning    RunStatus = "RUNNING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
	RunStatusSuperseded RunStatus = "SUPERSEDED"
)

// IsTerminal reports whether the run has resolved
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusSuperseded:
		return true
	}
	return false
}

// WorkflowRun is one execution instance of a retention plan for one lease.
// At most one run per lease is active at any time; that invariant is
// enforced by the repository's atomic check-and-set, the run itself only
// tracks its own cursor and lifecycle.
type WorkflowRun struct {
	shared.BaseAggregateRoot
	LeaseID          uuid.UUID
	TierAtStart      scoring.RiskTier
	RiskScoreAtStart int
	Priority         Priority
	Steps            []PlanStep
	CurrentStepIndex int
	Status           RunStatus
	IsActive         bool
	StartedAt        *time.Time
	CompletedAt      *time.Time
	// WaitingUntil is set while the run is paused at a monitoring step
	WaitingUntil *time.Time
	Outcome      Outcome
	// EstimatedTurnoverCost and RiskMitigationValue feed ROI reporting
	EstimatedTurnoverCost decimal.Decimal
	RiskMitigationValue   decimal.Decimal
}

// NewWorkflowRun builds a run for the tier's plan, starting at step zero.
// Only MEDIUM and HIGH tiers have plans.
func NewWorkflowRun(leaseID uuid.UUID, tier scoring.RiskTier, riskScore int, cfg PlanConfig) (*WorkflowRun, error) {
	if leaseID == uuid.Nil {
		return nil, shared.ErrIncompleteEntity
	}
	steps, err := cfg.PlanForTier(tier)
	if err != nil {
		return nil, err
	}
	return &WorkflowRun{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		LeaseID:               leaseID,
		TierAtStart:           tier,
		RiskScoreAtStart:      riskScore,
		Priority:              PriorityForTier(tier),
		Steps:                 steps,
		CurrentStepIndex:      0,
		Status:                RunStatusPending,
		IsActive:              true,
		Outcome:               OutcomeUnknown,
		EstimatedTurnoverCost: cfg.EstimatedTurnoverCost,
		RiskMitigationValue:   cfg.RiskMitigationPerPoint.Mul(decimal.NewFromInt(int64(riskScore))),
	}, nil
}

// CurrentStep returns the step at the cursor, or false when the plan is
// exhausted
func (r *WorkflowRun) CurrentStep() (PlanStep, bool) {
	if r.CurrentStepIndex < 0 || r.CurrentStepIndex >= len(r.Steps) {
		return PlanStep{}, false
	}
	return r.Steps[r.CurrentStepIndex], true
}

// Start moves the run from pending to running
func (r *WorkflowRun) Start(at time.Time) error {
	if r.Status != RunStatusPending {
		return shared.ErrInvalidState
	}
	r.Status = RunStatusRunning
	r.StartedAt = &at
	r.UpdatedAt = time.Now()
	return nil
}

// AdvanceStep moves the cursor to the next step after the current one
// resolved. Steps execute strictly in plan order.
func (r *WorkflowRun) AdvanceStep() error {
	if r.Status != RunStatusRunning {
		return shared.ErrInvalidState
	}
	if r.CurrentStepIndex >= len(r.Steps) {
		return shared.ErrInvalidState
	}
	r.CurrentStepIndex++
	r.WaitingUntil = nil
	r.UpdatedAt = time.Now()
	return nil
}

// BeginClosing swaps the unexecuted tail of the plan for the closing steps
// chosen by the tenant's response. Already-executed steps keep their place
// in the plan; the cursor stays where it is.
func (r *WorkflowRun) BeginClosing(steps []PlanStep) error {
	if r.Status != RunStatusRunning {
		return shared.ErrInvalidState
	}
	r.Steps = append(r.Steps[:r.CurrentStepIndex:r.CurrentStepIndex], steps...)
	r.WaitingUntil = nil
	r.UpdatedAt = time.Now()
	return nil
}

// BeginWait pauses the run at a monitoring step until the given deadline
func (r *WorkflowRun) BeginWait(until time.Time) error {
	if r.Status != RunStatusRunning {
		return shared.ErrInvalidState
	}
	step, ok := r.CurrentStep()
	if !ok || !step.IsMonitor() {
		return shared.ErrInvalidState
	}
	r.WaitingUntil = &until
	r.UpdatedAt = time.Now()
	return nil
}

// IsWaiting reports whether the run is paused at a response window that
// has not yet elapsed
func (r *WorkflowRun) IsWaiting(asOf time.Time) bool {
	return r.Status == RunStatusRunning && r.WaitingUntil != nil && asOf.Before(*r.WaitingUntil)
}

// Complete resolves the run with the tenant's outcome
func (r *WorkflowRun) Complete(at time.Time, outcome Outcome) error {
	if r.Status != RunStatusRunning && r.Status != RunStatusPending {
		return shared.ErrInvalidState
	}
	r.Status = RunStatusCompleted
	r.IsActive = false
	r.CompletedAt = &at
	r.WaitingUntil = nil
	r.Outcome = outcome
	r.UpdatedAt = time.Now()
	return nil
}

// Supersede terminates the run because a higher-tier run replaces it.
// Already-recorded actions are preserved; only the run's lifecycle ends.
func (r *WorkflowRun) Supersede(at time.Time) error {
	if r.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	r.Status = RunStatusSuperseded
	r.IsActive = false
	r.CompletedAt = &at
	r.WaitingUntil = nil
	r.UpdatedAt = time.Now()
	return nil
}

// ShouldSupersedeFor reports whether a re-grade to newTier replaces this
// run: only a strictly higher tier supersedes. Same-or-lower tiers are a
// no-op, which is what makes repeated scans idempotent.
func (r *WorkflowRun) ShouldSupersedeFor(newTier scoring.RiskTier) bool {
	return r.IsActive && newTier.Rank() > r.TierAtStart.Rank()
}

// StepsRemaining returns the count of unexecuted steps
func (r *WorkflowRun) StepsRemaining() int {
	remaining := len(r.Steps) - r.CurrentStepIndex
	if remaining < 0 {
		return 0
	}
	return remaining
}
