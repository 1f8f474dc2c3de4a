package leasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLease(t *testing.T) *Lease {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	lease, err := NewLease(uuid.New(), uuid.New(), start, end, decimal.NewFromInt(2000), 12)
	require.NoError(t, err)
	return lease
}

func TestNewLease_Validation(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	rent := decimal.NewFromInt(2000)

	tests := []struct {
		name       string
		tenantID   uuid.UUID
		propertyID uuid.UUID
		start, end time.Time
		rent       decimal.Decimal
		term       int
		wantErr    bool
	}{
		{"valid", uuid.New(), uuid.New(), start, end, rent, 12, false},
		{"missing tenant", uuid.Nil, uuid.New(), start, end, rent, 12, true},
		{"missing property", uuid.New(), uuid.Nil, start, end, rent, 12, true},
		{"end before start", uuid.New(), uuid.New(), end, start, rent, 12, true},
		{"end equals start", uuid.New(), uuid.New(), start, start, rent, 12, true},
		{"zero rent", uuid.New(), uuid.New(), start, end, decimal.Zero, 12, true},
		{"zero term", uuid.New(), uuid.New(), start, end, rent, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lease, err := NewLease(tt.tenantID, tt.propertyID, tt.start, tt.end, tt.rent, tt.term)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, LeaseStatusActive, lease.Status)
			assert.Equal(t, 1, lease.Version)
		})
	}
}

func TestLeaseStatus_IsTerminal(t *testing.T) {
	assert.False(t, LeaseStatusActive.IsTerminal())
	assert.True(t, LeaseStatusRenewed.IsTerminal())
	assert.True(t, LeaseStatusTerminated.IsTerminal())
	assert.True(t, LeaseStatusExpired.IsTerminal())
}

func TestLease_DaysToExpiration(t *testing.T) {
	lease := createTestLease(t)

	asOf := lease.EndDate.AddDate(0, 0, -45)
	assert.Equal(t, 45, lease.DaysToExpiration(asOf))

	asOf = lease.EndDate.AddDate(0, 0, 1)
	assert.Equal(t, -1, lease.DaysToExpiration(asOf))
}

func TestLease_InRenewalWindow(t *testing.T) {
	lease := createTestLease(t)

	assert.True(t, lease.InRenewalWindow(lease.EndDate.AddDate(0, 0, -45), 90))
	assert.True(t, lease.InRenewalWindow(lease.EndDate.AddDate(0, 0, -90), 90))
	assert.False(t, lease.InRenewalWindow(lease.EndDate.AddDate(0, 0, -91), 90))
	assert.False(t, lease.InRenewalWindow(lease.EndDate, 90), "already expired")

	require.NoError(t, lease.Terminate())
	assert.False(t, lease.InRenewalWindow(lease.EndDate.AddDate(0, 0, -45), 90))
}

func TestLease_TenureMonths_FrozenAsOf(t *testing.T) {
	lease := createTestLease(t)

	asOf := lease.StartDate.AddDate(0, 0, 240)
	first := lease.TenureMonths(asOf)
	second := lease.TenureMonths(asOf)
	assert.Equal(t, first, second, "same asOf must yield same tenure")
	assert.Equal(t, 8, first)

	assert.Equal(t, 0, lease.TenureMonths(lease.StartDate.AddDate(0, 0, -1)))
}

func TestLease_Renew(t *testing.T) {
	lease := createTestLease(t)

	newEnd := lease.EndDate.AddDate(1, 0, 0)
	err := lease.Renew(newEnd, decimal.NewFromInt(2100))
	require.NoError(t, err)

	assert.Equal(t, LeaseStatusRenewed, lease.Status)
	assert.Equal(t, 1, lease.RenewalCount)
	assert.Equal(t, 1, lease.RentIncreaseCount)
	assert.InDelta(t, 0.05, lease.LastRentIncreasePct, 0.0001)
	assert.True(t, lease.EndDate.Equal(newEnd))

	// A resolved lease cannot be renewed again
	assert.Error(t, lease.Renew(newEnd.AddDate(1, 0, 0), decimal.NewFromInt(2200)))
}

func TestLease_Renew_RejectsShorterEnd(t *testing.T) {
	lease := createTestLease(t)
	assert.Error(t, lease.Renew(lease.EndDate.AddDate(0, 0, -1), decimal.NewFromInt(2000)))
}

func TestLease_Terminate(t *testing.T) {
	lease := createTestLease(t)
	require.NoError(t, lease.Terminate())
	assert.Equal(t, LeaseStatusTerminated, lease.Status)
	assert.Error(t, lease.Terminate())
}

func TestLease_MarkExpired(t *testing.T) {
	lease := createTestLease(t)

	assert.Error(t, lease.MarkExpired(lease.EndDate.AddDate(0, 0, -1)), "not yet ended")
	require.NoError(t, lease.MarkExpired(lease.EndDate))
	assert.Equal(t, LeaseStatusExpired, lease.Status)
}
