package scoring

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence"
)

func TestScoreService_ScoreLease_RecordsGradedPrediction(t *testing.T) {
	f := setupScanFixture(t)
	ctx := context.Background()
	lease := f.seedLease(t, 8500, 30)

	scoreSvc := NewScoreService(
		f.leaseRepo,
		persistence.NewGormTenantRepository(f.db),
		persistence.NewGormPropertyRepository(f.db),
		persistence.NewGormActivityRepository(f.db),
		persistence.NewGormMarketRepository(f.db),
		f.predRepo, f.classifier, scoring.DefaultGraderConfig(), zapNop(),
	)

	prediction, err := scoreSvc.ScoreLease(ctx, lease, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, 85, prediction.RiskScore)
	assert.Equal(t, scoring.RiskTierHigh, prediction.RiskTier)
	assert.Equal(t, "v1.0.0", prediction.ModelVersion)
	assert.True(t, prediction.ComputedAt.Equal(f.asOf))

	current, err := f.predRepo.GetCurrent(ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, prediction.RiskScore, current.RiskScore)
}

func TestScoreService_ScoreLease_SoftSourcesDegradeToDefaults(t *testing.T) {
	f := setupScanFixture(t)
	ctx := context.Background()

	// Tenant, property, payments and market data are all absent; only the
	// lease itself is hard-required.
	lease := f.seedLease(t, 600, 30)

	scoreSvc := NewScoreService(
		f.leaseRepo,
		persistence.NewGormTenantRepository(f.db),
		persistence.NewGormPropertyRepository(f.db),
		persistence.NewGormActivityRepository(f.db),
		persistence.NewGormMarketRepository(f.db),
		f.predRepo, f.classifier, scoring.DefaultGraderConfig(), zapNop(),
	)

	prediction, err := scoreSvc.ScoreLease(ctx, lease, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, scoring.RiskTierLow, prediction.RiskTier)
}

func TestScoreService_ScoreLeaseByID_NotFound(t *testing.T) {
	f := setupScanFixture(t)

	scoreSvc := NewScoreService(
		f.leaseRepo,
		persistence.NewGormTenantRepository(f.db),
		persistence.NewGormPropertyRepository(f.db),
		persistence.NewGormActivityRepository(f.db),
		persistence.NewGormMarketRepository(f.db),
		f.predRepo, f.classifier, scoring.DefaultGraderConfig(), zapNop(),
	)

	_, err := scoreSvc.ScoreLeaseByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestScoreService_MarketSnapshotFeedsDerivation(t *testing.T) {
	f := setupScanFixture(t)
	ctx := context.Background()
	marketRepo := persistence.NewGormMarketRepository(f.db)
	propertyRepo := persistence.NewGormPropertyRepository(f.db)

	property := &leasing.Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Address:           "1200 Market St",
		City:              "Denver",
		ZipCode:           "80202",
		Bedrooms:          2,
		Bathrooms:         1.5,
		SquareFeet:        950,
		YearBuilt:         2010,
	}
	require.NoError(t, propertyRepo.Save(ctx, property))
	require.NoError(t, marketRepo.Save(ctx, &leasing.MarketSnapshot{
		ZipCode:    "80202",
		MedianRent: decimal.NewFromInt(2100),
		CapturedAt: f.asOf.AddDate(0, 0, -7),
	}))

	end := f.asOf.AddDate(0, 0, 30)
	lease, err := leasing.NewLease(uuid.New(), property.ID, end.AddDate(-1, 0, 0), end, decimal.NewFromInt(2000), 12)
	require.NoError(t, err)
	require.NoError(t, f.leaseRepo.Save(ctx, lease))

	scoreSvc := NewScoreService(
		f.leaseRepo,
		persistence.NewGormTenantRepository(f.db),
		propertyRepo,
		persistence.NewGormActivityRepository(f.db),
		marketRepo,
		f.predRepo, f.classifier, scoring.DefaultGraderConfig(), zapNop(),
	)

	prediction, err := scoreSvc.ScoreLease(ctx, lease, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, scoring.RiskTierLow, prediction.RiskTier)

	history, err := f.predRepo.History(ctx, lease.ID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].ComputedAt.Equal(f.asOf))
}

func zapNop() *zap.Logger { return zap.NewNop() }
