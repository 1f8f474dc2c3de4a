package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// Defaults applied when a soft source field is absent. These mirror the
// training pipeline's fill values so serving-time vectors stay in
// distribution. Missing income is flagged, not guessed.
const (
	defaultSquareFeet            = 1500
	defaultBedrooms              = 3
	defaultBathrooms             = 2.0
	defaultYearBuilt             = 2000
	defaultLocationScore         = 5
	defaultSchoolRating          = 5
	defaultConditionRating       = 3
	defaultYearsSinceRenovation  = 10
	defaultNeighborhoodType      = string(leasing.NeighborhoodSuburban)
	defaultRentToIncomeRatio     = 0.30
	defaultPaymentMethod         = string(leasing.PaymentMethodACH)
	defaultAvgResponseTimeHours  = 24.0
	defaultMarketRentMedian      = 2000.0
	defaultVacancyRate           = 0.05
	defaultRentGrowth1Yr         = 0.03
	defaultRentGrowth3Yr         = 0.10
	defaultNewListings30d        = 10
	defaultAvgDaysOnMarket       = 30
	defaultMedianHouseholdIncome = 75000.0
	defaultPopulationGrowthRate  = 0.01
	defaultCompetitorCount1Mi    = 50
)

// FeatureCount is the fixed width of the feature vector
const FeatureCount = 50

// RawBundle carries the raw records for one lease. Lease is hard-required;
// every other member may be nil and degrades to documented defaults. AsOf
// freezes "now" so tenure and days-to-expiration are computed once, at
// scoring time, and identical bundles always derive identical vectors.
type RawBundle struct {
	Lease       *leasing.Lease
	Tenant      *leasing.Tenant
	Property    *leasing.Property
	Payments    *leasing.PaymentAggregates
	Maintenance *leasing.MaintenanceAggregates
	Market      *leasing.MarketSnapshot
	AsOf        time.Time
}

// FeatureVector is the fixed, ordered set of features fed to the classifier.
// Field names match the model's training columns.
type FeatureVector struct {
	// Tenant behavior (15)
	AvgDaysLate                float64 `json:"avg_days_late"`
	MaxDaysLate                float64 `json:"max_days_late"`
	LatePaymentRate            float64 `json:"late_payment_rate"`
	PaymentConsistency         float64 `json:"payment_consistency"`
	DaysSinceLastPayment       float64 `json:"days_since_last_payment"`
	HasAutopay                 bool    `json:"has_autopay"`
	PortalLoginsPerMonth       float64 `json:"portal_logins_per_month"`
	MaintenanceRequestsPerYear float64 `json:"maintenance_requests_per_year"`
	HighPriorityRequests       float64 `json:"high_priority_requests"`
	AvgResponseTimeHours       float64 `json:"avg_response_time_hours"`
	MissedCommunicationCount   float64 `json:"missed_communication_count"`
	ComplaintCount             float64 `json:"complaint_count"`
	EscalationCount            float64 `json:"escalation_count"`
	PreviousRenewals           float64 `json:"previous_renewals"`
	TenureMonths               float64 `json:"tenure_months"`

	// Property characteristics (12)
	SquareFeet           float64 `json:"square_feet"`
	Bedrooms             float64 `json:"bedrooms"`
	Bathrooms            float64 `json:"bathrooms"`
	PropertyAge          float64 `json:"property_age"`
	LocationScore        float64 `json:"location_score"`
	SchoolRating         float64 `json:"school_rating"`
	HasGarage            bool    `json:"has_garage"`
	HasYard              bool    `json:"has_yard"`
	HasAirConditioning   bool    `json:"has_ac"`
	PropertyCondition    float64 `json:"property_condition"`
	YearsSinceRenovation float64 `json:"years_since_renovation"`
	NeighborhoodType     string  `json:"neighborhood_type"`

	// Financial (9)
	MonthlyRent           float64 `json:"monthly_rent"`
	RentPerSqft           float64 `json:"rent_per_sqft"`
	RentToIncomeRatio     float64 `json:"rent_to_income_ratio"`
	IncomeKnown           bool    `json:"income_known"`
	RentIncreasePct       float64 `json:"rent_increase_pct"`
	TotalRentIncreases    float64 `json:"total_rent_increases"`
	PaymentMethod         string  `json:"payment_method"`
	SecurityDepositMonths float64 `json:"security_deposit_months"`
	TotalLateFees         float64 `json:"total_late_fees"`

	// Market conditions (10)
	MarketRentMedian        float64 `json:"market_rent_median"`
	RentVsMarket            float64 `json:"rent_vs_market"`
	NeighborhoodVacancyRate float64 `json:"neighborhood_vacancy_rate"`
	MarketRentGrowth1Yr     float64 `json:"market_rent_growth_1yr"`
	MarketRentGrowth3Yr     float64 `json:"market_rent_growth_3yr"`
	NewListingsCount        float64 `json:"new_listings_count"`
	AvgDaysOnMarket         float64 `json:"avg_days_on_market"`
	MedianHouseholdIncome   float64 `json:"median_household_income"`
	PopulationGrowthRate    float64 `json:"population_growth_rate"`
	CompetitorProperties1Mi float64 `json:"competitor_properties_1mi"`

	// Temporal (4)
	DaysToExpiration   float64 `json:"days_to_expiration"`
	LeaseTermMonths    float64 `json:"lease_term_months"`
	LeaseEndMonth      float64 `json:"lease_end_month"`
	IsSummerExpiration bool    `json:"is_summer_expiration"`
}

// FeatureNames returns the ordered feature column names
func FeatureNames() []string {
	return []string{
		"avg_days_late", "max_days_late", "late_payment_rate", "payment_consistency",
		"days_since_last_payment", "has_autopay", "portal_logins_per_month",
		"maintenance_requests_per_year", "high_priority_requests", "avg_response_time_hours",
		"missed_communication_count", "complaint_count", "escalation_count",
		"previous_renewals", "tenure_months",
		"square_feet", "bedrooms", "bathrooms", "property_age", "location_score",
		"school_rating", "has_garage", "has_yard", "has_ac", "property_condition",
		"years_since_renovation", "neighborhood_type",
		"monthly_rent", "rent_per_sqft", "rent_to_income_ratio", "income_known",
		"rent_increase_pct", "total_rent_increases", "payment_method",
		"security_deposit_months", "total_late_fees",
		"market_rent_median", "rent_vs_market", "neighborhood_vacancy_rate",
		"market_rent_growth_1yr", "market_rent_growth_3yr", "new_listings_count",
		"avg_days_on_market", "median_household_income", "population_growth_rate",
		"competitor_properties_1mi",
		"days_to_expiration", "lease_term_months", "lease_end_month", "is_summer_expiration",
	}
}

// DeriveFeatures turns a raw bundle into the fixed feature vector. It is a
// pure function: no I/O, no clock reads, identical bundles yield identical
// vectors. Returns shared.ErrIncompleteEntity when a hard-required id is
// missing.
func DeriveFeatures(bundle RawBundle) (*FeatureVector, error) {
	if bundle.Lease == nil || bundle.Lease.ID == uuid.Nil {
		return nil, shared.ErrIncompleteEntity
	}
	if bundle.Lease.TenantID == uuid.Nil || bundle.Lease.PropertyID == uuid.Nil {
		return nil, shared.ErrIncompleteEntity
	}

	v := &FeatureVector{}
	deriveTenantBehavior(v, bundle)
	deriveProperty(v, bundle)
	deriveFinancial(v, bundle)
	deriveMarket(v, bundle)
	deriveTemporal(v, bundle)
	return v, nil
}

func deriveTenantBehavior(v *FeatureVector, b RawBundle) {
	lease := b.Lease
	tenureMonths := lease.TenureMonths(b.AsOf)
	v.TenureMonths = float64(tenureMonths)
	v.PreviousRenewals = float64(lease.RenewalCount)

	if p := b.Payments; p != nil {
		v.AvgDaysLate = p.AvgDaysLate
		v.MaxDaysLate = float64(p.MaxDaysLate)
		if p.PaymentCount > 0 {
			v.LatePaymentRate = float64(p.TotalDaysLate) / float64(p.PaymentCount)
		}
		v.PaymentConsistency = 1 / (1 + p.PaymentStdDev)
		if p.LastPaymentDate != nil {
			v.DaysSinceLastPayment = b.AsOf.Sub(*p.LastPaymentDate).Hours() / 24
		}
	} else {
		v.PaymentConsistency = 1
	}

	if m := b.Maintenance; m != nil {
		tenureYears := float64(tenureMonths) / 12
		if tenureYears < 1 {
			tenureYears = 1
		}
		v.MaintenanceRequestsPerYear = float64(m.RequestCount) / tenureYears
		v.HighPriorityRequests = float64(m.HighPriorityCount)
	}

	v.AvgResponseTimeHours = defaultAvgResponseTimeHours
	if t := b.Tenant; t != nil {
		v.HasAutopay = t.AutopayEnabled
		if tenureMonths > 0 {
			v.PortalLoginsPerMonth = float64(t.PortalLoginCount) / float64(tenureMonths)
		} else {
			v.PortalLoginsPerMonth = float64(t.PortalLoginCount)
		}
		if t.AvgResponseTimeHours > 0 {
			v.AvgResponseTimeHours = t.AvgResponseTimeHours
		}
		v.MissedCommunicationCount = float64(t.MissedCommunicationCount)
		v.ComplaintCount = float64(t.ComplaintCount)
		v.EscalationCount = float64(t.EscalationCount)
	}
}

func deriveProperty(v *FeatureVector, b RawBundle) {
	v.SquareFeet = defaultSquareFeet
	v.Bedrooms = defaultBedrooms
	v.Bathrooms = defaultBathrooms
	v.PropertyAge = float64(b.AsOf.Year() - defaultYearBuilt)
	v.LocationScore = defaultLocationScore
	v.SchoolRating = defaultSchoolRating
	v.PropertyCondition = defaultConditionRating
	v.YearsSinceRenovation = defaultYearsSinceRenovation
	v.NeighborhoodType = defaultNeighborhoodType

	p := b.Property
	if p == nil {
		return
	}
	if p.SquareFeet > 0 {
		v.SquareFeet = float64(p.SquareFeet)
	}
	if p.Bedrooms > 0 {
		v.Bedrooms = float64(p.Bedrooms)
	}
	if p.Bathrooms > 0 {
		v.Bathrooms = p.Bathrooms
	}
	if p.YearBuilt > 0 {
		v.PropertyAge = float64(p.Age(b.AsOf.Year()))
	}
	if p.LocationScore > 0 {
		v.LocationScore = float64(p.LocationScore)
	}
	if p.SchoolRating > 0 {
		v.SchoolRating = float64(p.SchoolRating)
	}
	v.HasGarage = p.HasGarage
	v.HasYard = p.HasYard
	v.HasAirConditioning = p.HasAirConditioning
	if p.ConditionRating > 0 {
		v.PropertyCondition = float64(p.ConditionRating)
	}
	if p.YearsSinceRenovation > 0 {
		v.YearsSinceRenovation = float64(p.YearsSinceRenovation)
	}
	if p.NeighborhoodType != "" {
		v.NeighborhoodType = string(p.NeighborhoodType)
	}
}

func deriveFinancial(v *FeatureVector, b RawBundle) {
	lease := b.Lease
	rent, _ := lease.MonthlyRent.Float64()
	v.MonthlyRent = rent
	v.RentPerSqft = rent / v.SquareFeet

	// Missing income is flagged rather than imputed with a guessed salary;
	// the ratio falls back to the market-typical 30%.
	v.RentToIncomeRatio = defaultRentToIncomeRatio
	if b.Tenant != nil && b.Tenant.AnnualIncome != nil && b.Tenant.AnnualIncome.IsPositive() {
		income, _ := b.Tenant.AnnualIncome.Float64()
		ratio := rent * 12 / income
		if ratio > 1 {
			ratio = 1
		}
		v.RentToIncomeRatio = ratio
		v.IncomeKnown = true
	}

	v.RentIncreasePct = lease.LastRentIncreasePct
	v.TotalRentIncreases = float64(lease.RentIncreaseCount)

	v.PaymentMethod = defaultPaymentMethod
	if b.Tenant != nil && b.Tenant.PrimaryPaymentMethod.IsValid() {
		v.PaymentMethod = string(b.Tenant.PrimaryPaymentMethod)
	}

	if lease.SecurityDeposit.IsPositive() && rent > 0 {
		deposit, _ := lease.SecurityDeposit.Float64()
		v.SecurityDepositMonths = deposit / rent
	} else {
		v.SecurityDepositMonths = 1
	}

	if b.Payments != nil {
		fees, _ := b.Payments.TotalLateFees.Float64()
		v.TotalLateFees = fees
	}
}

func deriveMarket(v *FeatureVector, b RawBundle) {
	v.MarketRentMedian = defaultMarketRentMedian
	v.NeighborhoodVacancyRate = defaultVacancyRate
	v.MarketRentGrowth1Yr = defaultRentGrowth1Yr
	v.MarketRentGrowth3Yr = defaultRentGrowth3Yr
	v.NewListingsCount = defaultNewListings30d
	v.AvgDaysOnMarket = defaultAvgDaysOnMarket
	v.MedianHouseholdIncome = defaultMedianHouseholdIncome
	v.PopulationGrowthRate = defaultPopulationGrowthRate
	v.CompetitorProperties1Mi = defaultCompetitorCount1Mi

	if m := b.Market; m != nil {
		if m.MedianRent.IsPositive() {
			median, _ := m.MedianRent.Float64()
			v.MarketRentMedian = median
		}
		if m.VacancyRate > 0 {
			v.NeighborhoodVacancyRate = m.VacancyRate
		}
		if m.RentGrowth1Yr != 0 {
			v.MarketRentGrowth1Yr = m.RentGrowth1Yr
		}
		if m.RentGrowth3Yr != 0 {
			v.MarketRentGrowth3Yr = m.RentGrowth3Yr
		}
		if m.NewListings30d > 0 {
			v.NewListingsCount = float64(m.NewListings30d)
		}
		if m.AvgDaysOnMarket > 0 {
			v.AvgDaysOnMarket = float64(m.AvgDaysOnMarket)
		}
		if m.MedianHouseholdIncome.IsPositive() {
			income, _ := m.MedianHouseholdIncome.Float64()
			v.MedianHouseholdIncome = income
		}
		if m.PopulationGrowthRate != 0 {
			v.PopulationGrowthRate = m.PopulationGrowthRate
		}
		if m.CompetitorCount1Mi > 0 {
			v.CompetitorProperties1Mi = float64(m.CompetitorCount1Mi)
		}
	}
	v.RentVsMarket = v.MonthlyRent / v.MarketRentMedian
}

func deriveTemporal(v *FeatureVector, b RawBundle) {
	lease := b.Lease
	v.DaysToExpiration = float64(lease.DaysToExpiration(b.AsOf))
	v.LeaseTermMonths = float64(lease.TermMonths)
	endMonth := int(lease.EndDate.Month())
	v.LeaseEndMonth = float64(endMonth)
	v.IsSummerExpiration = endMonth >= 6 && endMonth <= 8
}
