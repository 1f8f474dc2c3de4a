package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

func TestGormMarketRepository_LatestForZip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMarketRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	older := &leasing.MarketSnapshot{
		ZipCode:     "94105",
		MedianRent:  decimal.NewFromInt(3200),
		VacancyRate: 0.05,
		CapturedAt:  base,
	}
	newer := &leasing.MarketSnapshot{
		ZipCode:       "94105",
		MedianRent:    decimal.NewFromInt(3350),
		VacancyRate:   0.04,
		RentGrowth1Yr: 0.047,
		CapturedAt:    base.AddDate(0, 1, 0),
	}
	otherZip := &leasing.MarketSnapshot{
		ZipCode:    "10001",
		MedianRent: decimal.NewFromInt(4100),
		CapturedAt: base.AddDate(0, 2, 0),
	}

	for _, s := range []*leasing.MarketSnapshot{older, newer, otherZip} {
		require.NoError(t, repo.Save(ctx, s))
	}

	latest, err := repo.LatestForZip(ctx, "94105")
	require.NoError(t, err)
	assert.True(t, latest.MedianRent.Equal(decimal.NewFromInt(3350)))
	assert.InDelta(t, 0.04, latest.VacancyRate, 1e-9)
	assert.InDelta(t, 0.047, latest.RentGrowth1Yr, 1e-9)
	assert.WithinDuration(t, base.AddDate(0, 1, 0), latest.CapturedAt, time.Second)
}

func TestGormMarketRepository_LatestForZip_NeverCaptured(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormMarketRepository(db)

	_, err := repo.LatestForZip(context.Background(), "00000")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
