package leasing

import (
	"time"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
)

// RenewLeaseRequest carries the renewal terms.
type RenewLeaseRequest struct {
	NewEndDate     time.Time `json:"new_end_date" binding:"required"`
	NewMonthlyRent float64   `json:"new_monthly_rent" binding:"required,gt=0"`
}

// LeaseResponse is the outward representation of a lease.
type LeaseResponse struct {
	ID                  string    `json:"id"`
	TenantID            string    `json:"tenant_id"`
	PropertyID          string    `json:"property_id"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	MonthlyRent         string    `json:"monthly_rent"`
	TermMonths          int       `json:"term_months"`
	RenewalCount        int       `json:"renewal_count"`
	LastRentIncreasePct float64   `json:"last_rent_increase_pct"`
	Status              string    `json:"status"`
	Version             int       `json:"version"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewLeaseResponse converts a domain lease to its response form.
func NewLeaseResponse(lease *leasing.Lease) *LeaseResponse {
	return &LeaseResponse{
		ID:                  lease.ID.String(),
		TenantID:            lease.TenantID.String(),
		PropertyID:          lease.PropertyID.String(),
		StartDate:           lease.StartDate,
		EndDate:             lease.EndDate,
		MonthlyRent:         lease.MonthlyRent.String(),
		TermMonths:          lease.TermMonths,
		RenewalCount:        lease.RenewalCount,
		LastRentIncreasePct: lease.LastRentIncreasePct,
		Status:              lease.Status.String(),
		Version:             lease.Version,
		CreatedAt:           lease.CreatedAt,
		UpdatedAt:           lease.UpdatedAt,
	}
}
