package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
)

// PredictionResponse is the outbound view of a prediction
type PredictionResponse struct {
	LeaseID          uuid.UUID        `json:"lease_id"`
	ChurnProbability float64          `json:"churn_probability"`
	RiskScore        int              `json:"risk_score"`
	RiskTier         scoring.RiskTier `json:"risk_tier"`
	Confidence       float64          `json:"confidence"`
	ModelVersion     string           `json:"model_version"`
	ComputedAt       time.Time        `json:"computed_at"`
}

// NewPredictionResponse converts a domain prediction to its response view
func NewPredictionResponse(p *scoring.Prediction) *PredictionResponse {
	return &PredictionResponse{
		LeaseID:          p.LeaseID,
		ChurnProbability: p.ChurnProbability,
		RiskScore:        p.RiskScore,
		RiskTier:         p.RiskTier,
		Confidence:       p.Confidence,
		ModelVersion:     p.ModelVersion,
		ComputedAt:       p.ComputedAt,
	}
}

// ScanRequest triggers a batch risk scan
type ScanRequest struct {
	WindowDays int `json:"window_days" binding:"omitempty,min=1,max=365"`
}

// ScanErrorKind classifies a per-lease scan failure
type ScanErrorKind string

const (
	ScanErrorIncompleteEntity      ScanErrorKind = "incomplete_entity"
	ScanErrorClassifierUnavailable ScanErrorKind = "classifier_unavailable"
	ScanErrorPersistence           ScanErrorKind = "persistence"
	ScanErrorWorkflow              ScanErrorKind = "workflow"
)

// LeaseScanError records why one lease could not be processed. The batch
// carries on; the error is reported, never swallowed.
type LeaseScanError struct {
	LeaseID uuid.UUID     `json:"lease_id"`
	Kind    ScanErrorKind `json:"kind"`
	Message string        `json:"message"`
}

// BatchSummary reports one scan invocation end to end
type BatchSummary struct {
	ScannedCount     int              `json:"scanned_count"`
	PredictedCount   int              `json:"predicted_count"`
	HighRiskCount    int              `json:"high_risk_count"`
	MediumRiskCount  int              `json:"medium_risk_count"`
	LowRiskCount     int              `json:"low_risk_count"`
	WorkflowsStarted int              `json:"workflows_started"`
	SkippedCount     int              `json:"skipped_count"`
	Errors           []LeaseScanError `json:"errors"`
	StartedAt        time.Time        `json:"started_at"`
	Duration         time.Duration    `json:"duration"`
}
