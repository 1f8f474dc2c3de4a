package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

func newTestRun(t *testing.T, leaseID uuid.UUID, tier scoring.RiskTier, score int) *retention.WorkflowRun {
	t.Helper()

	run, err := retention.NewWorkflowRun(leaseID, tier, score, retention.DefaultPlanConfig())
	require.NoError(t, err)
	return run
}

func TestGormWorkflowRepository_CreateActiveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkflowRepository(db)
	ctx := context.Background()
	leaseID := uuid.New()

	run := newTestRun(t, leaseID, scoring.RiskTierHigh, 85)
	require.NoError(t, repo.CreateActive(ctx, run))

	found, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, leaseID, found.LeaseID)
	assert.Equal(t, scoring.RiskTierHigh, found.TierAtStart)
	assert.Equal(t, 85, found.RiskScoreAtStart)
	assert.Equal(t, retention.PriorityUrgent, found.Priority)
	assert.Equal(t, retention.RunStatusPending, found.Status)
	assert.True(t, found.IsActive)
	require.Len(t, found.Steps, 6)
	assert.Equal(t, retention.ActionAlertPropertyManager, found.Steps[0].Action)
	assert.Equal(t, 48*time.Hour, found.Steps[4].Window)
	assert.True(t, found.RiskMitigationValue.Equal(run.RiskMitigationValue))

	active, err := repo.FindActiveByLease(ctx, leaseID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, active.ID)
}

func TestGormWorkflowRepository_CreateActive_RejectsSecondActiveRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkflowRepository(db)
	ctx := context.Background()
	leaseID := uuid.New()

	require.NoError(t, repo.CreateActive(ctx, newTestRun(t, leaseID, scoring.RiskTierMedium, 60)))

	err := repo.CreateActive(ctx, newTestRun(t, leaseID, scoring.RiskTierMedium, 65))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// A different lease is unaffected.
	require.NoError(t, repo.CreateActive(ctx, newTestRun(t, uuid.New(), scoring.RiskTierMedium, 60)))
}

func TestGormWorkflowRepository_SupersedeAndCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkflowRepository(db)
	ctx := context.Background()
	leaseID := uuid.New()
	now := time.Now().UTC()

	old := newTestRun(t, leaseID, scoring.RiskTierMedium, 60)
	require.NoError(t, repo.CreateActive(ctx, old))

	require.NoError(t, old.Supersede(now))
	replacement := newTestRun(t, leaseID, scoring.RiskTierHigh, 88)
	require.NoError(t, repo.SupersedeAndCreate(ctx, old, replacement))

	active, err := repo.FindActiveByLease(ctx, leaseID)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, active.ID)
	assert.Equal(t, scoring.RiskTierHigh, active.TierAtStart)

	superseded, err := repo.FindByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, retention.RunStatusSuperseded, superseded.Status)
	assert.False(t, superseded.IsActive)
	require.NotNil(t, superseded.CompletedAt)

	var activeRows int64
	require.NoError(t, db.Model(&models.WorkflowRunModel{}).
		Where("lease_id = ? AND is_active = ?", leaseID, true).
		Count(&activeRows).Error)
	assert.Equal(t, int64(1), activeRows)
}

func TestGormWorkflowRepository_SupersedeAndCreate_AlreadyInactive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkflowRepository(db)
	ctx := context.Background()
	leaseID := uuid.New()
	now := time.Now().UTC()

	old := newTestRun(t, leaseID, scoring.RiskTierMedium, 55)
	require.NoError(t, repo.CreateActive(ctx, old))

	require.NoError(t, old.Supersede(now))
	require.NoError(t, repo.SupersedeAndCreate(ctx, old, newTestRun(t, leaseID, scoring.RiskTierHigh, 82)))

	// The old run is no longer active, so a second supersession loses the race.
	err := repo.SupersedeAndCreate(ctx, old, newTestRun(t, leaseID, scoring.RiskTierHigh, 90))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormWorkflowRepository_FindResumable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkflowRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	waiting := newTestRun(t, uuid.New(), scoring.RiskTierHigh, 85)
	require.NoError(t, repo.CreateActive(ctx, waiting))
	require.NoError(t, waiting.Start(now))
	for i := 0; i < 4; i++ {
		require.NoError(t, waiting.AdvanceStep())
	}
	require.NoError(t, waiting.BeginWait(now.Add(48*time.Hour)))
	require.NoError(t, repo.Save(ctx, waiting))

	stillWaiting := newTestRun(t, uuid.New(), scoring.RiskTierHigh, 90)
	require.NoError(t, repo.CreateActive(ctx, stillWaiting))
	require.NoError(t, stillWaiting.Start(now))
	for i := 0; i < 4; i++ {
		require.NoError(t, stillWaiting.AdvanceStep())
	}
	require.NoError(t, stillWaiting.BeginWait(now.Add(96*time.Hour)))
	require.NoError(t, repo.Save(ctx, stillWaiting))

	pending := newTestRun(t, uuid.New(), scoring.RiskTierMedium, 60)
	require.NoError(t, repo.CreateActive(ctx, pending))

	// Before either window elapses nothing is resumable.
	runs, err := repo.FindResumable(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	runs, err = repo.FindResumable(ctx, now.Add(72*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, waiting.ID, runs[0].ID)

	runs, err = repo.FindResumable(ctx, now.Add(120*time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestGormWorkflowRepository_CompletedInRangeAndCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWorkflowRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	renewed := newTestRun(t, uuid.New(), scoring.RiskTierHigh, 85)
	require.NoError(t, repo.CreateActive(ctx, renewed))
	require.NoError(t, renewed.Start(now))
	require.NoError(t, renewed.Complete(now.Add(24*time.Hour), retention.OutcomeRenewed))
	require.NoError(t, repo.Save(ctx, renewed))

	lost := newTestRun(t, uuid.New(), scoring.RiskTierMedium, 62)
	require.NoError(t, repo.CreateActive(ctx, lost))
	require.NoError(t, lost.Start(now))
	require.NoError(t, lost.Complete(now.Add(48*time.Hour), retention.OutcomeNotRenewed))
	require.NoError(t, repo.Save(ctx, lost))

	open := newTestRun(t, uuid.New(), scoring.RiskTierMedium, 58)
	require.NoError(t, repo.CreateActive(ctx, open))

	completed, err := repo.CompletedInRange(ctx, now, now.Add(30*time.Hour))
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, renewed.ID, completed[0].ID)

	byStatus, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[retention.RunStatusCompleted])
	assert.Equal(t, int64(1), byStatus[retention.RunStatusPending])

	byOutcome, err := repo.CountByOutcome(ctx, now, now.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), byOutcome[retention.OutcomeRenewed])
	assert.Equal(t, int64(1), byOutcome[retention.OutcomeNotRenewed])
}
