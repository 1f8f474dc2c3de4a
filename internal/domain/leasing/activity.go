package leasing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentAggregates summarizes a lease's payment history. Computed by the
// operational store, consumed read-only by feature derivation.
type PaymentAggregates struct {
	TotalPaid       decimal.Decimal
	AvgPayment      decimal.Decimal
	PaymentStdDev   float64
	PaymentCount    int
	AvgDaysLate     float64
	MaxDaysLate     int
	TotalDaysLate   int
	TotalLateFees   decimal.Decimal
	LastPaymentDate *time.Time
}

// MaintenanceAggregates summarizes maintenance activity for a property
type MaintenanceAggregates struct {
	RequestCount      int
	HighPriorityCount int
	AvgResolutionDays float64
}

// MarketSnapshot captures neighborhood market conditions for a zip-code zone
// at a point in time.
type MarketSnapshot struct {
	ZipCode               string
	MedianRent            decimal.Decimal
	VacancyRate           float64
	RentGrowth1Yr         float64
	RentGrowth3Yr         float64
	NewListings30d        int
	AvgDaysOnMarket       int
	MedianHouseholdIncome decimal.Decimal
	PopulationGrowthRate  float64
	CompetitorCount1Mi    int
	CapturedAt            time.Time
}
