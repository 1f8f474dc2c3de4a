package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
)

func TestRiskSnapshotAdapter_CountPredictionsByTier(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPredictionRepository(db)
	adapter := NewRiskSnapshotAdapter(db)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.Record(ctx, newTestPrediction(t, uuid.New(), 0.92, now)))
	require.NoError(t, repo.Record(ctx, newTestPrediction(t, uuid.New(), 0.85, now)))
	require.NoError(t, repo.Record(ctx, newTestPrediction(t, uuid.New(), 0.60, now)))

	counts, err := adapter.CountPredictionsByTier(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts[string(scoring.RiskTierHigh)])
	assert.Equal(t, int64(1), counts[string(scoring.RiskTierMedium)])
	assert.NotContains(t, counts, string(scoring.RiskTierLow))
}

func TestRiskSnapshotAdapter_CountActiveRunsByTier(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkflowRepository(db)
	adapter := NewRiskSnapshotAdapter(db)
	ctx := context.Background()

	high := newTestRun(t, uuid.New(), scoring.RiskTierHigh, 85)
	medium := newTestRun(t, uuid.New(), scoring.RiskTierMedium, 62)
	require.NoError(t, repo.CreateActive(ctx, high))
	require.NoError(t, repo.CreateActive(ctx, medium))

	counts, err := adapter.CountActiveRunsByTier(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), counts[string(scoring.RiskTierHigh)])
	assert.Equal(t, int64(1), counts[string(scoring.RiskTierMedium)])
}

func TestRiskSnapshotAdapter_Empty(t *testing.T) {
	adapter := NewRiskSnapshotAdapter(setupTestDB(t))

	counts, err := adapter.CountPredictionsByTier(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)

	counts, err = adapter.CountActiveRunsByTier(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}
