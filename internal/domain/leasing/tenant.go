package leasing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// PaymentMethod is the tenant's primary rent payment method
type PaymentMethod string

const (
	PaymentMethodACH        PaymentMethod = "ach"
	PaymentMethodCreditCard PaymentMethod = "credit-card"
	PaymentMethodDebitCard  PaymentMethod = "debit-card"
	PaymentMethodCheck      PaymentMethod = "check"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodACH, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodCheck:
		return true
	}
	return false
}

// Tenant represents a renter. Behavioral counters (portal logins, complaints,
// communication stats) are maintained by the operational system and read here
// for feature derivation.
type Tenant struct {
	shared.BaseAggregateRoot
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	EmploymentStatus string
	// AnnualIncome is nil when the applicant declined to disclose income.
	// The deriver flags it rather than guessing a number.
	AnnualIncome             *decimal.Decimal
	AutopayEnabled           bool
	PrimaryPaymentMethod     PaymentMethod
	PortalLoginCount         int
	ComplaintCount           int
	EscalationCount          int
	AvgResponseTimeHours     float64
	MissedCommunicationCount int
	MoveInDate               time.Time
}

// FullName returns the tenant's display name
func (t *Tenant) FullName() string {
	if t.FirstName == "" {
		return t.LastName
	}
	return t.FirstName + " " + t.LastName
}
