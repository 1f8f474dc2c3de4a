package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraderConfig_Grade_Thresholds(t *testing.T) {
	cfg := DefaultGraderConfig()

	tests := []struct {
		probability float64
		wantScore   int
		wantTier    RiskTier
	}{
		{0.0, 0, RiskTierLow},
		{0.4999, 49, RiskTierLow}, // truncates, never rounds up into MEDIUM
		{0.4949, 49, RiskTierLow},
		{0.50, 50, RiskTierMedium},
		{0.7999, 79, RiskTierMedium},
		{0.79, 79, RiskTierMedium},
		{0.80, 80, RiskTierHigh},
		{0.85, 85, RiskTierHigh},
		{1.0, 100, RiskTierHigh},
	}

	for _, tt := range tests {
		score, tier, err := cfg.Grade(tt.probability)
		require.NoError(t, err, "p=%v", tt.probability)
		assert.Equal(t, tt.wantScore, score, "p=%v", tt.probability)
		assert.Equal(t, tt.wantTier, tier, "p=%v", tt.probability)
	}
}

func TestGraderConfig_Grade_Monotonic(t *testing.T) {
	cfg := DefaultGraderConfig()

	prevRank := 0
	for p := 0.0; p <= 1.0; p += 0.001 {
		_, tier, err := cfg.Grade(p)
		require.NoError(t, err)
		require.GreaterOrEqual(t, tier.Rank(), prevRank, "tier regressed at p=%v", p)
		prevRank = tier.Rank()
	}
}

func TestGraderConfig_Grade_RejectsOutOfRange(t *testing.T) {
	cfg := DefaultGraderConfig()

	_, _, err := cfg.Grade(-0.01)
	assert.Error(t, err)
	_, _, err = cfg.Grade(1.01)
	assert.Error(t, err)
}

func TestGraderConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultGraderConfig().Validate())
	assert.Error(t, GraderConfig{HighThreshold: 50, MediumThreshold: 80}.Validate())
	assert.Error(t, GraderConfig{HighThreshold: 120, MediumThreshold: 50}.Validate())
	assert.Error(t, GraderConfig{HighThreshold: 80, MediumThreshold: 0}.Validate())
}

func TestGraderConfig_TunedThresholds(t *testing.T) {
	cfg := GraderConfig{HighThreshold: 70, MediumThreshold: 40}

	_, tier, err := cfg.Grade(0.75)
	require.NoError(t, err)
	assert.Equal(t, RiskTierHigh, tier)

	_, tier, err = cfg.Grade(0.45)
	require.NoError(t, err)
	assert.Equal(t, RiskTierMedium, tier)
}

func TestRiskTier_Rank(t *testing.T) {
	assert.Greater(t, RiskTierHigh.Rank(), RiskTierMedium.Rank())
	assert.Greater(t, RiskTierMedium.Rank(), RiskTierLow.Rank())
	assert.Equal(t, 0, RiskTier("BOGUS").Rank())
}
