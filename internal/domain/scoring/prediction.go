package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// Prediction is the single source of truth for a lease's churn risk. One
// current prediction per lease, plus an append-only history for audit and
// drift analysis. RiskScore and RiskTier are always derived from the
// probability through the grader, never set independently, so the cached
// fields cannot drift from the source value.
type Prediction struct {
	shared.BaseEntity
	LeaseID          uuid.UUID
	ChurnProbability float64
	RiskScore        int
	RiskTier         RiskTier
	Confidence       float64
	ModelVersion     string
	ComputedAt       time.Time
}

// NewPrediction grades the probability and builds a prediction record.
// computedAt is the scoring timestamp the feature vector was frozen at.
func NewPrediction(leaseID uuid.UUID, probability, confidence float64, modelVersion string, computedAt time.Time, grader GraderConfig) (*Prediction, error) {
	if leaseID == uuid.Nil {
		return nil, shared.ErrIncompleteEntity
	}
	if modelVersion == "" {
		return nil, shared.NewDomainError("INVALID_MODEL_VERSION", "Model version cannot be empty")
	}
	score, tier, err := grader.Grade(probability)
	if err != nil {
		return nil, err
	}
	return &Prediction{
		BaseEntity:       shared.NewBaseEntity(),
		LeaseID:          leaseID,
		ChurnProbability: probability,
		RiskScore:        score,
		RiskTier:         tier,
		Confidence:       confidence,
		ModelVersion:     modelVersion,
		ComputedAt:       computedAt,
	}, nil
}

// NeedsRetention reports whether this prediction's tier triggers a
// retention workflow
func (p *Prediction) NeedsRetention() bool {
	return p.RiskTier == RiskTierMedium || p.RiskTier == RiskTierHigh
}
