package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
)

// PredictionModel is the current prediction per lease. The unique index on
// lease_id makes "one current prediction" a database invariant; Record
// upserts this row and appends to prediction_history in one transaction.
type PredictionModel struct {
	BaseModel
	LeaseID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	ChurnProbability float64          `gorm:"not null"`
	RiskScore        int              `gorm:"not null;index"`
	RiskTier         scoring.RiskTier `gorm:"type:varchar(10);not null;index"`
	Confidence       float64          `gorm:"not null;default:0"`
	ModelVersion     string           `gorm:"type:varchar(50);not null"`
	ComputedAt       time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PredictionModel) TableName() string {
	return "lease_predictions"
}

// ToDomain converts the persistence model to a domain Prediction.
func (m *PredictionModel) ToDomain() *scoring.Prediction {
	return &scoring.Prediction{
		BaseEntity:       m.BaseModel.ToDomain(),
		LeaseID:          m.LeaseID,
		ChurnProbability: m.ChurnProbability,
		RiskScore:        m.RiskScore,
		RiskTier:         m.RiskTier,
		Confidence:       m.Confidence,
		ModelVersion:     m.ModelVersion,
		ComputedAt:       m.ComputedAt,
	}
}

// FromDomain populates the persistence model from a domain Prediction.
func (m *PredictionModel) FromDomain(p *scoring.Prediction) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.LeaseID = p.LeaseID
	m.ChurnProbability = p.ChurnProbability
	m.RiskScore = p.RiskScore
	m.RiskTier = p.RiskTier
	m.Confidence = p.Confidence
	m.ModelVersion = p.ModelVersion
	m.ComputedAt = p.ComputedAt
}

// PredictionModelFromDomain creates a new persistence model from a domain Prediction.
func PredictionModelFromDomain(p *scoring.Prediction) *PredictionModel {
	m := &PredictionModel{}
	m.FromDomain(p)
	return m
}

// PredictionHistoryModel is the append-only scoring audit trail. Rows are
// never updated or deleted.
type PredictionHistoryModel struct {
	BaseModel
	LeaseID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_prediction_history_lease_computed,priority:1"`
	ChurnProbability float64          `gorm:"not null"`
	RiskScore        int              `gorm:"not null"`
	RiskTier         scoring.RiskTier `gorm:"type:varchar(10);not null"`
	Confidence       float64          `gorm:"not null;default:0"`
	ModelVersion     string           `gorm:"type:varchar(50);not null"`
	ComputedAt       time.Time        `gorm:"not null;index:idx_prediction_history_lease_computed,priority:2"`
}

// TableName returns the table name for GORM
func (PredictionHistoryModel) TableName() string {
	return "prediction_history"
}

// ToDomain converts the history row to a domain Prediction.
func (m *PredictionHistoryModel) ToDomain() *scoring.Prediction {
	return &scoring.Prediction{
		BaseEntity:       m.BaseModel.ToDomain(),
		LeaseID:          m.LeaseID,
		ChurnProbability: m.ChurnProbability,
		RiskScore:        m.RiskScore,
		RiskTier:         m.RiskTier,
		Confidence:       m.Confidence,
		ModelVersion:     m.ModelVersion,
		ComputedAt:       m.ComputedAt,
	}
}

// PredictionHistoryFromDomain creates a history row from a domain Prediction.
// The row gets its own identity so the current row's ID can be reused freely.
func PredictionHistoryFromDomain(p *scoring.Prediction) *PredictionHistoryModel {
	m := &PredictionHistoryModel{}
	now := time.Now()
	m.ID = uuid.New()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.LeaseID = p.LeaseID
	m.ChurnProbability = p.ChurnProbability
	m.RiskScore = p.RiskScore
	m.RiskTier = p.RiskTier
	m.Confidence = p.Confidence
	m.ModelVersion = p.ModelVersion
	m.ComputedAt = p.ComputedAt
	return m
}
