package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
)

// WorkflowRunModel is the persistence model for a retention workflow run.
// The plan steps are stored as JSON; the partial unique index on
// (lease_id) WHERE is_active backs the one-active-run-per-lease invariant
// in postgres (see migrations).
type WorkflowRunModel struct {
	AggregateModel
	LeaseID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	TierAtStart      scoring.RiskTier    `gorm:"type:varchar(10);not null"`
	RiskScoreAtStart int                 `gorm:"not null"`
	Priority         retention.Priority  `gorm:"type:varchar(10);not null"`
	Steps            string              `gorm:"type:jsonb;not null"`
	CurrentStepIndex int                 `gorm:"not null;default:0"`
	Status           retention.RunStatus `gorm:"type:varchar(20);not null;index"`
	IsActive         bool                `gorm:"not null;default:false;index"`
	StartedAt        *time.Time
	CompletedAt      *time.Time
	WaitingUntil     *time.Time        `gorm:"index"`
	Outcome          retention.Outcome `gorm:"type:varchar(20);not null;default:'unknown'"`
	EstimatedTurnoverCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RiskMitigationValue   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (WorkflowRunModel) TableName() string {
	return "retention_workflow_runs"
}

// ToDomain converts the persistence model to a domain WorkflowRun.
func (m *WorkflowRunModel) ToDomain() (*retention.WorkflowRun, error) {
	var steps []retention.PlanStep
	if err := json.Unmarshal([]byte(m.Steps), &steps); err != nil {
		return nil, fmt.Errorf("failed to decode workflow steps: %w", err)
	}
	return &retention.WorkflowRun{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		LeaseID:               m.LeaseID,
		TierAtStart:           m.TierAtStart,
		RiskScoreAtStart:      m.RiskScoreAtStart,
		Priority:              m.Priority,
		Steps:                 steps,
		CurrentStepIndex:      m.CurrentStepIndex,
		Status:                m.Status,
		IsActive:              m.IsActive,
		StartedAt:             m.StartedAt,
		CompletedAt:           m.CompletedAt,
		WaitingUntil:          m.WaitingUntil,
		Outcome:               m.Outcome,
		EstimatedTurnoverCost: m.EstimatedTurnoverCost,
		RiskMitigationValue:   m.RiskMitigationValue,
	}, nil
}

// FromDomain populates the persistence model from a domain WorkflowRun.
func (m *WorkflowRunModel) FromDomain(r *retention.WorkflowRun) error {
	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode workflow steps: %w", err)
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.LeaseID = r.LeaseID
	m.TierAtStart = r.TierAtStart
	m.RiskScoreAtStart = r.RiskScoreAtStart
	m.Priority = r.Priority
	m.Steps = string(steps)
	m.CurrentStepIndex = r.CurrentStepIndex
	m.Status = r.Status
	m.IsActive = r.IsActive
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt
	m.WaitingUntil = r.WaitingUntil
	m.Outcome = r.Outcome
	m.EstimatedTurnoverCost = r.EstimatedTurnoverCost
	m.RiskMitigationValue = r.RiskMitigationValue
	return nil
}

// WorkflowRunModelFromDomain creates a new persistence model from a domain run.
func WorkflowRunModelFromDomain(r *retention.WorkflowRun) (*WorkflowRunModel, error) {
	m := &WorkflowRunModel{}
	if err := m.FromDomain(r); err != nil {
		return nil, err
	}
	return m, nil
}

// RetentionActionModel is the persistence model for one recorded action.
type RetentionActionModel struct {
	BaseModel
	RunID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	LeaseID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	ActionType     retention.ActionType   `gorm:"type:varchar(40);not null"`
	RiskTier       scoring.RiskTier       `gorm:"type:varchar(10);not null"`
	TriggeredAt    time.Time              `gorm:"not null;index"`
	Status         retention.ActionStatus `gorm:"type:varchar(20);not null;index"`
	AttemptCount   int                    `gorm:"not null;default:0"`
	LastError      string                 `gorm:"type:text"`
	Outcome        retention.Outcome      `gorm:"type:varchar(20);not null;default:'unknown'"`
	Cost           decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	EstimatedValue decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	CompletedAt    *time.Time
}

// TableName returns the table name for GORM
func (RetentionActionModel) TableName() string {
	return "retention_actions"
}

// ToDomain converts the persistence model to a domain RetentionAction.
func (m *RetentionActionModel) ToDomain() *retention.RetentionAction {
	return &retention.RetentionAction{
		BaseEntity:     m.BaseModel.ToDomain(),
		RunID:          m.RunID,
		LeaseID:        m.LeaseID,
		ActionType:     m.ActionType,
		RiskTier:       m.RiskTier,
		TriggeredAt:    m.TriggeredAt,
		Status:         m.Status,
		AttemptCount:   m.AttemptCount,
		LastError:      m.LastError,
		Outcome:        m.Outcome,
		Cost:           m.Cost,
		EstimatedValue: m.EstimatedValue,
		CompletedAt:    m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain RetentionAction.
func (m *RetentionActionModel) FromDomain(a *retention.RetentionAction) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.RunID = a.RunID
	m.LeaseID = a.LeaseID
	m.ActionType = a.ActionType
	m.RiskTier = a.RiskTier
	m.TriggeredAt = a.TriggeredAt
	m.Status = a.Status
	m.AttemptCount = a.AttemptCount
	m.LastError = a.LastError
	m.Outcome = a.Outcome
	m.Cost = a.Cost
	m.EstimatedValue = a.EstimatedValue
	m.CompletedAt = a.CompletedAt
}

// RetentionActionModelFromDomain creates a new persistence model from a domain action.
func RetentionActionModelFromDomain(a *retention.RetentionAction) *RetentionActionModel {
	m := &RetentionActionModel{}
	m.FromDomain(a)
	return m
}
