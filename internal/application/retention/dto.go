package retention

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
)

// StartWorkflowRequest triggers workflow evaluation for a lease
type StartWorkflowRequest struct {
	// DryRun previews the plan that would start without persisting a run
	DryRun bool `json:"dry_run"`
}

// PlanStepView is the outbound view of one plan step
type PlanStepView struct {
	Action retention.ActionType `json:"action"`
	Window string               `json:"window,omitempty"`
}

// WorkflowRunResponse is the outbound view of a workflow run
type WorkflowRunResponse struct {
	ID                    uuid.UUID           `json:"id"`
	LeaseID               uuid.UUID           `json:"lease_id"`
	TierAtStart           scoring.RiskTier    `json:"tier_at_start"`
	RiskScoreAtStart      int                 `json:"risk_score_at_start"`
	Priority              retention.Priority  `json:"priority"`
	Steps                 []PlanStepView      `json:"steps"`
	CurrentStepIndex      int                 `json:"current_step_index"`
	Status                retention.RunStatus `json:"status"`
	IsActive              bool                `json:"is_active"`
	StartedAt             *time.Time          `json:"started_at,omitempty"`
	CompletedAt           *time.Time          `json:"completed_at,omitempty"`
	WaitingUntil          *time.Time          `json:"waiting_until,omitempty"`
	Outcome               retention.Outcome   `json:"outcome"`
	EstimatedTurnoverCost decimal.Decimal     `json:"estimated_turnover_cost"`
	RiskMitigationValue   decimal.Decimal     `json:"risk_mitigation_value"`
}

// NewWorkflowRunResponse converts a domain run to its response view
func NewWorkflowRunResponse(run *retention.WorkflowRun) *WorkflowRunResponse {
	steps := make([]PlanStepView, len(run.Steps))
	for i, step := range run.Steps {
		view := PlanStepView{Action: step.Action}
		if step.Window > 0 {
			view.Window = step.Window.String()
		}
		steps[i] = view
	}
	return &WorkflowRunResponse{
		ID:                    run.ID,
		LeaseID:               run.LeaseID,
		TierAtStart:           run.TierAtStart,
		RiskScoreAtStart:      run.RiskScoreAtStart,
		Priority:              run.Priority,
		Steps:                 steps,
		CurrentStepIndex:      run.CurrentStepIndex,
		Status:                run.Status,
		IsActive:              run.IsActive,
		StartedAt:             run.StartedAt,
		CompletedAt:           run.CompletedAt,
		WaitingUntil:          run.WaitingUntil,
		Outcome:               run.Outcome,
		EstimatedTurnoverCost: run.EstimatedTurnoverCost,
		RiskMitigationValue:   run.RiskMitigationValue,
	}
}

// ActionResponse is the outbound view of one recorded retention action
type ActionResponse struct {
	ID             uuid.UUID              `json:"id"`
	RunID          uuid.UUID              `json:"run_id"`
	LeaseID        uuid.UUID              `json:"lease_id"`
	ActionType     retention.ActionType   `json:"action_type"`
	RiskTier       scoring.RiskTier       `json:"risk_tier"`
	TriggeredAt    time.Time              `json:"triggered_at"`
	Status         retention.ActionStatus `json:"status"`
	AttemptCount   int                    `json:"attempt_count"`
	LastError      string                 `json:"last_error,omitempty"`
	Outcome        retention.Outcome      `json:"outcome"`
	Cost           decimal.Decimal        `json:"cost"`
	EstimatedValue decimal.Decimal        `json:"estimated_value"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
}

// NewActionResponse converts a domain action to its response view
func NewActionResponse(action *retention.RetentionAction) *ActionResponse {
	return &ActionResponse{
		ID:             action.ID,
		RunID:          action.RunID,
		LeaseID:        action.LeaseID,
		ActionType:     action.ActionType,
		RiskTier:       action.RiskTier,
		TriggeredAt:    action.TriggeredAt,
		Status:         action.Status,
		AttemptCount:   action.AttemptCount,
		LastError:      action.LastError,
		Outcome:        action.Outcome,
		Cost:           action.Cost,
		EstimatedValue: action.EstimatedValue,
		CompletedAt:    action.CompletedAt,
	}
}

// EnsureResult reports what workflow evaluation did for a lease
type EnsureResult struct {
	// Started is true when a new run was created (fresh or superseding)
	Started bool `json:"started"`
	// Superseded is true when an active lower-tier run was replaced
	Superseded bool                 `json:"superseded"`
	Reason     string               `json:"reason,omitempty"`
	Run        *WorkflowRunResponse `json:"run,omitempty"`
}

// WorkflowMetrics aggregates run and action counts for a time range
type WorkflowMetrics struct {
	From           time.Time                      `json:"from"`
	To             time.Time                      `json:"to"`
	RunsByStatus   map[retention.RunStatus]int64  `json:"runs_by_status"`
	RunsByOutcome  map[retention.Outcome]int64    `json:"runs_by_outcome"`
	ActionsByType  map[retention.ActionType]int64 `json:"actions_by_type"`
	ActionsByTier  map[scoring.RiskTier]int64     `json:"actions_by_tier"`
	TotalActions   int64                          `json:"total_actions"`
	FailedActions  int64                          `json:"failed_actions"`
	ResumedWaiting int64                          `json:"-"`
}

// ROIReport is the retention program's cost/benefit summary for a range
type ROIReport struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	CompletedRuns    int64           `json:"completed_runs"`
	RenewedCount     int64           `json:"renewed_count"`
	NotRenewedCount  int64           `json:"not_renewed_count"`
	NoResponseCount  int64           `json:"no_response_count"`
	RenewalRate      float64         `json:"renewal_rate"`
	TurnoversAvoided float64         `json:"turnovers_avoided"`
	AvgTurnoverCost  decimal.Decimal `json:"avg_turnover_cost"`
	TotalActionCost  decimal.Decimal `json:"total_action_cost"`
	CostSavings      decimal.Decimal `json:"cost_savings"`
	NetSavings       decimal.Decimal `json:"net_savings"`
	ROIPercentage    decimal.Decimal `json:"roi_percentage"`
}
