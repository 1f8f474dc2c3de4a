package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

func TestGormActionRepository_SaveAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	action := retention.NewRetentionAction(
		uuid.New(), uuid.New(),
		retention.ActionAlertPropertyManager, scoring.RiskTierHigh,
		decimal.NewFromInt(10), decimal.NewFromInt(3400), now,
	)
	require.NoError(t, repo.Save(ctx, action))

	found, err := repo.FindByID(ctx, action.ID)
	require.NoError(t, err)
	assert.Equal(t, action.RunID, found.RunID)
	assert.Equal(t, retention.ActionAlertPropertyManager, found.ActionType)
	assert.Equal(t, retention.ActionStatusPending, found.Status)
	assert.Equal(t, retention.OutcomeUnknown, found.Outcome)
	assert.True(t, found.Cost.Equal(decimal.NewFromInt(10)))
	assert.True(t, found.EstimatedValue.Equal(decimal.NewFromInt(3400)))
}

func TestGormActionRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActionRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormActionRepository_SaveUpdatesLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	action := retention.NewRetentionAction(
		uuid.New(), uuid.New(),
		retention.ActionSendRetentionEmail, scoring.RiskTierMedium,
		decimal.NewFromInt(5), decimal.NewFromInt(2400), now,
	)
	require.NoError(t, repo.Save(ctx, action))

	require.NoError(t, action.MarkInProgress())
	require.NoError(t, action.Complete(now.Add(time.Minute)))
	require.NoError(t, action.RecordOutcome(retention.OutcomeRenewed))
	require.NoError(t, repo.Save(ctx, action))

	found, err := repo.FindByID(ctx, action.ID)
	require.NoError(t, err)
	assert.Equal(t, retention.ActionStatusCompleted, found.Status)
	assert.Equal(t, retention.OutcomeRenewed, found.Outcome)
	assert.Equal(t, 1, found.AttemptCount)
	require.NotNil(t, found.CompletedAt)
}

func TestGormActionRepository_FindByRun_TriggerOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActionRepository(db)
	ctx := context.Background()
	runID := uuid.New()
	leaseID := uuid.New()
	base := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	second := retention.NewRetentionAction(runID, leaseID, retention.ActionScheduleConciergCall, scoring.RiskTierHigh, decimal.NewFromInt(50), decimal.Zero, base.Add(time.Minute))
	first := retention.NewRetentionAction(runID, leaseID, retention.ActionAlertPropertyManager, scoring.RiskTierHigh, decimal.NewFromInt(10), decimal.Zero, base)
	other := retention.NewRetentionAction(uuid.New(), uuid.New(), retention.ActionSendRetentionEmail, scoring.RiskTierMedium, decimal.NewFromInt(5), decimal.Zero, base)

	for _, a := range []*retention.RetentionAction{second, first, other} {
		require.NoError(t, repo.Save(ctx, a))
	}

	actions, err := repo.FindByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, retention.ActionAlertPropertyManager, actions[0].ActionType)
	assert.Equal(t, retention.ActionScheduleConciergCall, actions[1].ActionType)

	byLease, err := repo.FindByLease(ctx, leaseID)
	require.NoError(t, err)
	assert.Len(t, byLease, 2)
}

func TestGormActionRepository_TriggeredInRange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActionRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	inside := retention.NewRetentionAction(uuid.New(), uuid.New(), retention.ActionSendIncentiveOffer, scoring.RiskTierMedium, decimal.NewFromInt(5), decimal.Zero, base.Add(12*time.Hour))
	after := retention.NewRetentionAction(uuid.New(), uuid.New(), retention.ActionSendReminderEmail, scoring.RiskTierMedium, decimal.NewFromInt(5), decimal.Zero, base.Add(48*time.Hour))

	require.NoError(t, repo.Save(ctx, inside))
	require.NoError(t, repo.Save(ctx, after))

	actions, err := repo.TriggeredInRange(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, inside.ID, actions[0].ID)
}
