package retention

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

type roiFixture struct {
	runRepo    *persistence.GormWorkflowRepository
	actionRepo *persistence.GormActionRepository
	svc        *ROIService
	now        time.Time
}

func setupROIFixture(t *testing.T, avgTurnoverCost decimal.Decimal) *roiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WorkflowRunModel{}, &models.RetentionActionModel{}))

	runRepo := persistence.NewGormWorkflowRepository(db)
	actionRepo := persistence.NewGormActionRepository(db)
	return &roiFixture{
		runRepo:    runRepo,
		actionRepo: actionRepo,
		svc:        NewROIService(runRepo, actionRepo, avgTurnoverCost, zap.NewNop()),
		now:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *roiFixture) completedRun(t *testing.T, outcome retention.Outcome) *retention.WorkflowRun {
	t.Helper()
	ctx := context.Background()

	run, err := retention.NewWorkflowRun(uuid.New(), scoring.RiskTierHigh, 85, retention.DefaultPlanConfig())
	require.NoError(t, err)
	require.NoError(t, f.runRepo.CreateActive(ctx, run))
	require.NoError(t, run.Start(f.now))
	require.NoError(t, run.Complete(f.now.Add(time.Hour), outcome))
	require.NoError(t, f.runRepo.Save(ctx, run))
	return run
}

func (f *roiFixture) completedAction(t *testing.T, run *retention.WorkflowRun, cost int64) {
	t.Helper()
	ctx := context.Background()

	action := retention.NewRetentionAction(
		run.ID, run.LeaseID, retention.ActionSendRetentionEmail, run.TierAtStart,
		decimal.NewFromInt(cost), decimal.Zero, f.now.Add(time.Minute),
	)
	require.NoError(t, action.MarkInProgress())
	require.NoError(t, action.Complete(f.now.Add(2*time.Minute)))
	require.NoError(t, f.actionRepo.Save(ctx, action))
}

func TestROIService_Report(t *testing.T) {
	f := setupROIFixture(t, decimal.NewFromInt(1400))
	ctx := context.Background()

	run := f.completedRun(t, retention.OutcomeRenewed)
	f.completedAction(t, run, 100)

	report, err := f.svc.Report(ctx, f.now, f.now.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.CompletedRuns)
	assert.Equal(t, int64(1), report.RenewedCount)
	assert.InDelta(t, 1.0, report.RenewalRate, 1e-9)
	assert.InDelta(t, 1.0, report.TurnoversAvoided, 1e-9)
	assert.True(t, report.TotalActionCost.Equal(decimal.NewFromInt(100)))
	assert.True(t, report.CostSavings.Equal(decimal.NewFromInt(1400)))
	assert.True(t, report.NetSavings.Equal(decimal.NewFromInt(1300)))
	assert.True(t, report.ROIPercentage.Equal(decimal.NewFromInt(1300)), "roi was %s", report.ROIPercentage)
}

func TestROIService_Report_MixedOutcomes(t *testing.T) {
	f := setupROIFixture(t, decimal.NewFromInt(4000))
	ctx := context.Background()

	renewed := f.completedRun(t, retention.OutcomeRenewed)
	lost := f.completedRun(t, retention.OutcomeNotRenewed)
	f.completedAction(t, renewed, 60)
	f.completedAction(t, lost, 40)

	// A failed action costs nothing.
	failed := retention.NewRetentionAction(
		lost.ID, lost.LeaseID, retention.ActionScheduleConciergCall, lost.TierAtStart,
		decimal.NewFromInt(50), decimal.Zero, f.now.Add(time.Minute),
	)
	require.NoError(t, failed.MarkInProgress())
	require.NoError(t, failed.Fail(f.now.Add(2*time.Minute), "line busy"))
	require.NoError(t, f.actionRepo.Save(ctx, failed))

	report, err := f.svc.Report(ctx, f.now, f.now.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.CompletedRuns)
	assert.Equal(t, int64(1), report.RenewedCount)
	assert.Equal(t, int64(1), report.NotRenewedCount)
	assert.InDelta(t, 0.5, report.RenewalRate, 1e-9)
	assert.InDelta(t, 1.0, report.TurnoversAvoided, 1e-9)
	assert.True(t, report.TotalActionCost.Equal(decimal.NewFromInt(100)))
	assert.True(t, report.CostSavings.Equal(decimal.NewFromInt(4000)))
	assert.True(t, report.NetSavings.Equal(decimal.NewFromInt(3900)))
	assert.True(t, report.ROIPercentage.Equal(decimal.NewFromInt(3900)))
}

func TestROIService_Report_ZeroCostReportsZeroROI(t *testing.T) {
	f := setupROIFixture(t, decimal.NewFromInt(4000))

	f.completedRun(t, retention.OutcomeRenewed)

	report, err := f.svc.Report(context.Background(), f.now, f.now.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.True(t, report.TotalActionCost.IsZero())
	assert.True(t, report.ROIPercentage.IsZero())
	assert.True(t, report.NetSavings.Equal(decimal.NewFromInt(4000)))
}

func TestROIService_Report_EmptyRange(t *testing.T) {
	f := setupROIFixture(t, decimal.NewFromInt(4000))

	report, err := f.svc.Report(context.Background(), f.now, f.now.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Zero(t, report.CompletedRuns)
	assert.Zero(t, report.RenewalRate)
	assert.True(t, report.CostSavings.IsZero())
	assert.True(t, report.NetSavings.IsZero())
	assert.True(t, report.ROIPercentage.IsZero())
}
