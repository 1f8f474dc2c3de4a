package retention

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// ActionType identifies a retention plan step
type ActionType string

const (
	ActionAlertPropertyManager ActionType = "ALERT_PROPERTY_MANAGER"
	ActionScheduleConciergCall ActionType = "SCHEDULE_CONCIERGE_CALL"
	ActionGenerateOffer        ActionType = "GENERATE_RETENTION_OFFER"
	ActionSendRetentionEmail   ActionType = "SEND_RETENTION_EMAIL"
	ActionMonitorResponse      ActionType = "MONITOR_RESPONSE"
	ActionEscalateToRegional   ActionType = "ESCALATE_TO_REGIONAL_MANAGER"
	ActionProcessRenewal       ActionType = "PROCESS_RENEWAL"
	ActionScheduleMeeting      ActionType = "SCHEDULE_IN_PERSON_MEETING"
	ActionGenerateIncentive    ActionType = "GENERATE_INCENTIVE_OFFER"
	ActionSendIncentiveOffer   ActionType = "SEND_INCENTIVE_OFFER"
	ActionMonitorEngagement    ActionType = "MONITOR_ENGAGEMENT"
	ActionSendReminderEmail    ActionType = "SEND_REMINDER_EMAIL"
	ActionFlagForFollowUp      ActionType = "FLAG_FOR_FOLLOW_UP"
)

// ActionStatus is the lifecycle of one recorded retention action
type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "pending"
	ActionStatusInProgress ActionStatus = "in-progress"
	ActionStatusCompleted  ActionStatus = "completed"
	ActionStatusFailed     ActionStatus = "failed"
)

// IsTerminal reports whether the action has resolved
func (s ActionStatus) IsTerminal() bool {
	return s == ActionStatusCompleted || s == ActionStatusFailed
}

// Outcome records what the tenant ultimately did after an action
type Outcome string

const (
	OutcomeRenewed    Outcome = "renewed"
	OutcomeNotRenewed Outcome = "not-renewed"
	OutcomeNoResponse Outcome = "no-response"
	OutcomeUnknown    Outcome = "unknown"
)

// RetentionAction is one recorded, individually retryable side-effecting
// step of a workflow run. It is created pending before the collaborator is
// called, then resolved to completed or failed. Terminal actions are never
// mutated again.
type RetentionAction struct {
	shared.BaseEntity
	RunID          uuid.UUID
	LeaseID        uuid.UUID
	ActionType     ActionType
	RiskTier       scoring.RiskTier
	TriggeredAt    time.Time
	Status         ActionStatus
	AttemptCount   int
	LastError      string
	Outcome        Outcome
	Cost           decimal.Decimal
	EstimatedValue decimal.Decimal
	CompletedAt    *time.Time
}

// NewRetentionAction records a step about to execute
func NewRetentionAction(runID, leaseID uuid.UUID, actionType ActionType, tier scoring.RiskTier, cost, estimatedValue decimal.Decimal, triggeredAt time.Time) *RetentionAction {
	return &RetentionAction{
		BaseEntity:     shared.NewBaseEntity(),
		RunID:          runID,
		LeaseID:        leaseID,
		ActionType:     actionType,
		RiskTier:       tier,
		TriggeredAt:    triggeredAt,
		Status:         ActionStatusPending,
		Outcome:        OutcomeUnknown,
		Cost:           cost,
		EstimatedValue: estimatedValue,
	}
}

// MarkInProgress moves the action out of pending for a delivery attempt
func (a *RetentionAction) MarkInProgress() error {
	if a.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	a.Status = ActionStatusInProgress
	a.AttemptCount++
	a.UpdatedAt = time.Now()
	return nil
}

// Complete marks the action delivered
func (a *RetentionAction) Complete(at time.Time) error {
	if a.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	a.Status = ActionStatusCompleted
	a.LastError = ""
	a.CompletedAt = &at
	a.UpdatedAt = time.Now()
	return nil
}

// Fail marks the action failed after retries were exhausted
func (a *RetentionAction) Fail(at time.Time, cause string) error {
	if a.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	a.Status = ActionStatusFailed
	a.LastError = cause
	a.CompletedAt = &at
	a.UpdatedAt = time.Now()
	return nil
}

// RecordOutcome attaches the tenant's eventual response to a resolved action
func (a *RetentionAction) RecordOutcome(outcome Outcome) error {
	if !a.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	a.Outcome = outcome
	a.UpdatedAt = time.Now()
	return nil
}
