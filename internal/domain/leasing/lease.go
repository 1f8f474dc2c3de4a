package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// LeaseStatus represents the status of a lease contract
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusRenewed    LeaseStatus = "renewed"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusExpired    LeaseStatus = "expired"
)

// IsValid checks if the status is a valid LeaseStatus
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusActive, LeaseStatusRenewed, LeaseStatusTerminated, LeaseStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of LeaseStatus
func (s LeaseStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the lease has been resolved one way or the
// other. A terminal lease never re-enters the scoring window.
func (s LeaseStatus) IsTerminal() bool {
	switch s {
	case LeaseStatusRenewed, LeaseStatusTerminated, LeaseStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s LeaseStatus) CanTransitionTo(target LeaseStatus) bool {
	if s != LeaseStatusActive {
		return false
	}
	return target == LeaseStatusRenewed || target == LeaseStatusTerminated || target == LeaseStatusExpired
}

// Lease represents a lease contract aggregate root. It is owned by the
// operational store and mutated on renewal/termination events.
type Lease struct {
	shared.BaseAggregateRoot
	TenantID            uuid.UUID
	PropertyID          uuid.UUID
	StartDate           time.Time
	EndDate             time.Time
	MonthlyRent         decimal.Decimal
	SecurityDeposit     decimal.Decimal
	TermMonths          int
	RenewalCount        int
	LastRentIncreasePct float64
	RentIncreaseCount   int
	Status              LeaseStatus
}

// NewLease creates a new active lease
func NewLease(tenantID, propertyID uuid.UUID, startDate, endDate time.Time, monthlyRent decimal.Decimal, termMonths int) (*Lease, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Lease end date must be after start date")
	}
	if monthlyRent.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RENT", "Monthly rent must be positive")
	}
	if termMonths <= 0 {
		return nil, shared.NewDomainError("INVALID_TERM", "Lease term must be positive")
	}

	return &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		PropertyID:        propertyID,
		StartDate:         startDate,
		EndDate:           endDate,
		MonthlyRent:       monthlyRent,
		TermMonths:        termMonths,
		Status:            LeaseStatusActive,
	}, nil
}

// DaysToExpiration returns the number of whole days between asOf and the
// lease end date. Negative once the end date has passed.
func (l *Lease) DaysToExpiration(asOf time.Time) int {
	return int(l.EndDate.Sub(asOf).Hours() / 24)
}

// TenureMonths returns the tenant's tenure in whole months as of the given
// time. Tenure is always computed against an explicit timestamp so that a
// prediction's features are frozen at scoring time.
func (l *Lease) TenureMonths(asOf time.Time) int {
	if asOf.Before(l.StartDate) {
		return 0
	}
	months := int(asOf.Sub(l.StartDate).Hours() / 24 / 30)
	return months
}

// InRenewalWindow reports whether the lease is active and expires within the
// given window of days.
func (l *Lease) InRenewalWindow(asOf time.Time, windowDays int) bool {
	if l.Status != LeaseStatusActive {
		return false
	}
	days := l.DaysToExpiration(asOf)
	return days > 0 && days <= windowDays
}

// Renew marks the lease renewed and rolls the contract forward
func (l *Lease) Renew(newEndDate time.Time, newRent decimal.Decimal) error {
	if !l.Status.CanTransitionTo(LeaseStatusRenewed) {
		return shared.ErrInvalidState
	}
	if !newEndDate.After(l.EndDate) {
		return shared.NewDomainError("INVALID_DATES", "Renewal end date must extend the lease")
	}
	if newRent.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_RENT", "Monthly rent must be positive")
	}
	if newRent.GreaterThan(l.MonthlyRent) {
		increase, _ := newRent.Sub(l.MonthlyRent).Div(l.MonthlyRent).Float64()
		l.LastRentIncreasePct = increase
		l.RentIncreaseCount++
	}
	l.Status = LeaseStatusRenewed
	l.EndDate = newEndDate
	l.MonthlyRent = newRent
	l.RenewalCount++
	l.UpdatedAt = time.Now()
	return nil
}

// Terminate marks the lease terminated
func (l *Lease) Terminate() error {
	if !l.Status.CanTransitionTo(LeaseStatusTerminated) {
		return shared.ErrInvalidState
	}
	l.Status = LeaseStatusTerminated
	l.UpdatedAt = time.Now()
	return nil
}

// MarkExpired marks a lease that ran past its end date without renewal
func (l *Lease) MarkExpired(asOf time.Time) error {
	if !l.Status.CanTransitionTo(LeaseStatusExpired) {
		return shared.ErrInvalidState
	}
	if asOf.Before(l.EndDate) {
		return shared.NewDomainError("INVALID_STATE", "Lease has not reached its end date")
	}
	l.Status = LeaseStatusExpired
	l.UpdatedAt = time.Now()
	return nil
}
