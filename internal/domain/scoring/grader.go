package scoring

import (
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// RiskTier discretizes churn probability into the band that selects a
// retention plan
type RiskTier string

const (
	RiskTierLow    RiskTier = "LOW"
	RiskTierMedium RiskTier = "MEDIUM"
	RiskTierHigh   RiskTier = "HIGH"
)

// IsValid checks if the tier is a known RiskTier
func (t RiskTier) IsValid() bool {
	switch t {
	case RiskTierLow, RiskTierMedium, RiskTierHigh:
		return true
	}
	return false
}

// String returns the string representation of RiskTier
func (t RiskTier) String() string {
	return string(t)
}

// Rank orders tiers for supersession checks: HIGH > MEDIUM > LOW
func (t RiskTier) Rank() int {
	switch t {
	case RiskTierHigh:
		return 3
	case RiskTierMedium:
		return 2
	case RiskTierLow:
		return 1
	}
	return 0
}

// GraderConfig holds the score thresholds. They are configuration, not
// code: tuning the bands must not require a deploy.
type GraderConfig struct {
	HighThreshold   int
	MediumThreshold int
}

// DefaultGraderConfig returns the standard thresholds: HIGH >= 80,
// MEDIUM >= 50, else LOW.
func DefaultGraderConfig() GraderConfig {
	return GraderConfig{
		HighThreshold:   80,
		MediumThreshold: 50,
	}
}

// Validate checks threshold ordering
func (c GraderConfig) Validate() error {
	if c.MediumThreshold <= 0 || c.HighThreshold > 100 {
		return shared.NewDomainError("INVALID_THRESHOLDS", "Thresholds must be within (0, 100]")
	}
	if c.MediumThreshold >= c.HighThreshold {
		return shared.NewDomainError("INVALID_THRESHOLDS", "Medium threshold must be below high threshold")
	}
	return nil
}

// ScoreFromProbability converts a churn probability to the 0-100 risk score.
// The fraction is truncated, not rounded, matching the classifier's integer
// scoring: 0.4999 scores 49.
func ScoreFromProbability(probability float64) int {
	return int(probability * 100)
}

// Grade maps a churn probability to a risk score and tier. Bands are
// half-open with inclusive lower bounds: a score exactly at a threshold
// lands in the higher tier.
func (c GraderConfig) Grade(probability float64) (int, RiskTier, error) {
	if probability < 0 || probability > 1 {
		return 0, "", shared.NewDomainError("INVALID_PROBABILITY", "Churn probability must be within [0, 1]")
	}
	score := ScoreFromProbability(probability)
	return score, c.TierForScore(score), nil
}

// TierForScore maps a 0-100 score to its tier
func (c GraderConfig) TierForScore(score int) RiskTier {
	switch {
	case score >= c.HighThreshold:
		return RiskTierHigh
	case score >= c.MediumThreshold:
		return RiskTierMedium
	default:
		return RiskTierLow
	}
}
