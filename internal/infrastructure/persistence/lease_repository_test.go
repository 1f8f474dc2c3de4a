package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

func newTestLease(t *testing.T, endDate time.Time) *leasing.Lease {
	t.Helper()

	lease, err := leasing.NewLease(
		uuid.New(),
		uuid.New(),
		endDate.AddDate(-1, 0, 0),
		endDate,
		decimal.NewFromInt(1800),
		12,
	)
	require.NoError(t, err)
	return lease
}

func TestGormLeaseRepository_SaveAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeaseRepository(db)
	ctx := context.Background()

	lease := newTestLease(t, time.Now().UTC().AddDate(0, 6, 0))
	lease.SecurityDeposit = decimal.NewFromInt(1800)

	require.NoError(t, repo.Save(ctx, lease))

	found, err := repo.FindByID(ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, lease.ID, found.ID)
	assert.Equal(t, lease.TenantID, found.TenantID)
	assert.Equal(t, lease.PropertyID, found.PropertyID)
	assert.True(t, found.MonthlyRent.Equal(decimal.NewFromInt(1800)))
	assert.True(t, found.SecurityDeposit.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, 12, found.TermMonths)
	assert.Equal(t, leasing.LeaseStatusActive, found.Status)
	assert.Equal(t, 1, found.Version)
}

func TestGormLeaseRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeaseRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLeaseRepository_FindExpiringWithin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeaseRepository(db)
	ctx := context.Background()
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	inWindow := newTestLease(t, asOf.AddDate(0, 0, 30))
	atBoundary := newTestLease(t, asOf.AddDate(0, 0, 90))
	beyondWindow := newTestLease(t, asOf.AddDate(0, 0, 91))
	alreadyEnded := newTestLease(t, asOf.AddDate(0, 0, -1))
	renewed := newTestLease(t, asOf.AddDate(0, 0, 45))
	renewed.Status = leasing.LeaseStatusRenewed

	for _, l := range []*leasing.Lease{inWindow, atBoundary, beyondWindow, alreadyEnded, renewed} {
		require.NoError(t, repo.Save(ctx, l))
	}

	leases, err := repo.FindExpiringWithin(ctx, asOf, 90)
	require.NoError(t, err)
	require.Len(t, leases, 2)

	// Ordered soonest expiration first.
	assert.Equal(t, inWindow.ID, leases[0].ID)
	assert.Equal(t, atBoundary.ID, leases[1].ID)
}

func TestGormLeaseRepository_FindAll_FiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeaseRepository(db)
	ctx := context.Background()

	active := newTestLease(t, time.Now().UTC().AddDate(0, 3, 0))
	terminated := newTestLease(t, time.Now().UTC().AddDate(0, 4, 0))
	terminated.Status = leasing.LeaseStatusTerminated

	require.NoError(t, repo.Save(ctx, active))
	require.NoError(t, repo.Save(ctx, terminated))

	filter := shared.DefaultFilter()
	filter.Filters["status"] = leasing.LeaseStatusTerminated

	leases, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, leases, 1)
	assert.Equal(t, terminated.ID, leases[0].ID)
}

func TestGormLeaseRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeaseRepository(db)
	ctx := context.Background()

	lease := newTestLease(t, time.Now().UTC().AddDate(0, 2, 0))
	require.NoError(t, repo.Save(ctx, lease))

	stale, err := repo.FindByID(ctx, lease.ID)
	require.NoError(t, err)

	require.NoError(t, lease.Renew(lease.EndDate.AddDate(1, 0, 0), decimal.NewFromInt(1900)))
	lease.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, lease))

	// The stale copy still carries the old version; its update must lose.
	require.NoError(t, stale.Terminate())
	stale.IncrementVersion()
	err = repo.SaveWithLock(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, leasing.LeaseStatusRenewed, found.Status)
	assert.Equal(t, 2, found.Version)
	assert.Equal(t, 1, found.RenewalCount)
}

func TestGormLeaseRepository_CountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeaseRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, newTestLease(t, time.Now().UTC().AddDate(0, i+1, 0))))
	}
	expired := newTestLease(t, time.Now().UTC().AddDate(0, 1, 0))
	expired.Status = leasing.LeaseStatusExpired
	require.NoError(t, repo.Save(ctx, expired))

	count, err := repo.CountByStatus(ctx, leasing.LeaseStatusActive)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountByStatus(ctx, leasing.LeaseStatusExpired)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
