package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

func newPaymentRow(leaseID uuid.UUID, amount int64, dueDate time.Time, daysLate int, lateFee int64) *models.PaymentRecordModel {
	paid := dueDate.AddDate(0, 0, daysLate)
	return &models.PaymentRecordModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		LeaseID:   leaseID,
		Amount:    decimal.NewFromInt(amount),
		DueDate:   dueDate,
		PaidDate:  &paid,
		DaysLate:  daysLate,
		LateFee:   decimal.NewFromInt(lateFee),
	}
}

func TestGormActivityRepository_PaymentAggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActivityRepository(db)
	ctx := context.Background()
	leaseID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordPayment(ctx, newPaymentRow(leaseID, 1000, base, 0, 0)))
	require.NoError(t, repo.RecordPayment(ctx, newPaymentRow(leaseID, 1200, base.AddDate(0, 1, 0), 5, 25)))
	require.NoError(t, repo.RecordPayment(ctx, newPaymentRow(leaseID, 1400, base.AddDate(0, 2, 0), 10, 50)))

	// A row for another lease must not leak into the aggregate.
	require.NoError(t, repo.RecordPayment(ctx, newPaymentRow(uuid.New(), 9999, base, 30, 500)))

	agg, err := repo.PaymentAggregates(ctx, leaseID)
	require.NoError(t, err)

	assert.Equal(t, 3, agg.PaymentCount)
	assert.True(t, agg.TotalPaid.Equal(decimal.NewFromInt(3600)))
	assert.True(t, agg.AvgPayment.Equal(decimal.NewFromInt(1200)))
	assert.True(t, agg.TotalLateFees.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, 15, agg.TotalDaysLate)
	assert.InDelta(t, 5.0, agg.AvgDaysLate, 1e-9)
	assert.Equal(t, 10, agg.MaxDaysLate)
	// Population stddev of {1000, 1200, 1400}.
	assert.InDelta(t, 163.299, agg.PaymentStdDev, 0.001)
	require.NotNil(t, agg.LastPaymentDate)
	assert.WithinDuration(t, base.AddDate(0, 2, 10), *agg.LastPaymentDate, time.Second)
}

func TestGormActivityRepository_PaymentAggregates_NoRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActivityRepository(db)

	agg, err := repo.PaymentAggregates(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 0, agg.PaymentCount)
	assert.True(t, agg.TotalPaid.IsZero())
	assert.True(t, agg.AvgPayment.IsZero())
	assert.Zero(t, agg.PaymentStdDev)
	assert.Nil(t, agg.LastPaymentDate)
}

func TestGormActivityRepository_MaintenanceAggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActivityRepository(db)
	ctx := context.Background()
	propertyID := uuid.New()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	resolvedHigh := base.AddDate(0, 0, 2)
	resolvedNormal := base.AddDate(0, 0, 4)

	rows := []*models.MaintenanceRequestModel{
		{
			BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
			PropertyID: propertyID,
			Priority:   "high",
			OpenedAt:   base,
			ResolvedAt: &resolvedHigh,
		},
		{
			BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
			PropertyID: propertyID,
			Priority:   "emergency",
			OpenedAt:   base,
		},
		{
			BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
			PropertyID: propertyID,
			Priority:   "normal",
			OpenedAt:   base,
			ResolvedAt: &resolvedNormal,
		},
	}
	for _, row := range rows {
		require.NoError(t, repo.RecordMaintenanceRequest(ctx, row))
	}

	agg, err := repo.MaintenanceAggregates(ctx, propertyID)
	require.NoError(t, err)

	assert.Equal(t, 3, agg.RequestCount)
	assert.Equal(t, 2, agg.HighPriorityCount)
	// Resolution average covers resolved tickets only: (2 + 4) / 2.
	assert.InDelta(t, 3.0, agg.AvgResolutionDays, 1e-9)
}

func TestGormActivityRepository_MaintenanceAggregates_NoRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormActivityRepository(db)

	agg, err := repo.MaintenanceAggregates(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Zero(t, agg.RequestCount)
	assert.Zero(t, agg.HighPriorityCount)
	assert.Zero(t, agg.AvgResolutionDays)
}
