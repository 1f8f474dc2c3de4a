package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
)

// LeaseModel is the persistence model for the Lease aggregate.
type LeaseModel struct {
	AggregateModel
	TenantID            uuid.UUID           `gorm:"type:uuid;not null;index"`
	PropertyID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	StartDate           time.Time           `gorm:"not null"`
	EndDate             time.Time           `gorm:"not null;index"`
	MonthlyRent         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	SecurityDeposit     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TermMonths          int                 `gorm:"not null"`
	RenewalCount        int                 `gorm:"not null;default:0"`
	LastRentIncreasePct float64             `gorm:"not null;default:0"`
	RentIncreaseCount   int                 `gorm:"not null;default:0"`
	Status              leasing.LeaseStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (LeaseModel) TableName() string {
	return "leases"
}

// ToDomain converts the persistence model to a domain Lease entity.
func (m *LeaseModel) ToDomain() *leasing.Lease {
	return &leasing.Lease{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		TenantID:            m.TenantID,
		PropertyID:          m.PropertyID,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		MonthlyRent:         m.MonthlyRent,
		SecurityDeposit:     m.SecurityDeposit,
		TermMonths:          m.TermMonths,
		RenewalCount:        m.RenewalCount,
		LastRentIncreasePct: m.LastRentIncreasePct,
		RentIncreaseCount:   m.RentIncreaseCount,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain Lease entity.
func (m *LeaseModel) FromDomain(l *leasing.Lease) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.TenantID = l.TenantID
	m.PropertyID = l.PropertyID
	m.StartDate = l.StartDate
	m.EndDate = l.EndDate
	m.MonthlyRent = l.MonthlyRent
	m.SecurityDeposit = l.SecurityDeposit
	m.TermMonths = l.TermMonths
	m.RenewalCount = l.RenewalCount
	m.LastRentIncreasePct = l.LastRentIncreasePct
	m.RentIncreaseCount = l.RentIncreaseCount
	m.Status = l.Status
}

// LeaseModelFromDomain creates a new persistence model from a domain Lease entity.
func LeaseModelFromDomain(l *leasing.Lease) *LeaseModel {
	m := &LeaseModel{}
	m.FromDomain(l)
	return m
}

// TenantModel is the persistence model for the Tenant aggregate.
type TenantModel struct {
	AggregateModel
	FirstName                string                `gorm:"type:varchar(100);not null"`
	LastName                 string                `gorm:"type:varchar(100);not null"`
	Email                    string                `gorm:"type:varchar(255);not null;index"`
	Phone                    string                `gorm:"type:varchar(30)"`
	EmploymentStatus         string                `gorm:"type:varchar(50)"`
	AnnualIncome             *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	AutopayEnabled           bool                  `gorm:"not null;default:false"`
	PrimaryPaymentMethod     leasing.PaymentMethod `gorm:"type:varchar(20)"`
	PortalLoginCount         int                   `gorm:"not null;default:0"`
	ComplaintCount           int                   `gorm:"not null;default:0"`
	EscalationCount          int                   `gorm:"not null;default:0"`
	AvgResponseTimeHours     float64               `gorm:"not null;default:0"`
	MissedCommunicationCount int                   `gorm:"not null;default:0"`
	MoveInDate               time.Time
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *leasing.Tenant {
	return &leasing.Tenant{
		BaseAggregateRoot:        m.ToDomainAggregateRoot(),
		FirstName:                m.FirstName,
		LastName:                 m.LastName,
		Email:                    m.Email,
		Phone:                    m.Phone,
		EmploymentStatus:         m.EmploymentStatus,
		AnnualIncome:             m.AnnualIncome,
		AutopayEnabled:           m.AutopayEnabled,
		PrimaryPaymentMethod:     m.PrimaryPaymentMethod,
		PortalLoginCount:         m.PortalLoginCount,
		ComplaintCount:           m.ComplaintCount,
		EscalationCount:          m.EscalationCount,
		AvgResponseTimeHours:     m.AvgResponseTimeHours,
		MissedCommunicationCount: m.MissedCommunicationCount,
		MoveInDate:               m.MoveInDate,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *leasing.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.FirstName = t.FirstName
	m.LastName = t.LastName
	m.Email = t.Email
	m.Phone = t.Phone
	m.EmploymentStatus = t.EmploymentStatus
	m.AnnualIncome = t.AnnualIncome
	m.AutopayEnabled = t.AutopayEnabled
	m.PrimaryPaymentMethod = t.PrimaryPaymentMethod
	m.PortalLoginCount = t.PortalLoginCount
	m.ComplaintCount = t.ComplaintCount
	m.EscalationCount = t.EscalationCount
	m.AvgResponseTimeHours = t.AvgResponseTimeHours
	m.MissedCommunicationCount = t.MissedCommunicationCount
	m.MoveInDate = t.MoveInDate
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *leasing.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// PropertyModel is the persistence model for the Property aggregate.
type PropertyModel struct {
	AggregateModel
	Address              string                   `gorm:"type:varchar(255);not null"`
	City                 string                   `gorm:"type:varchar(100);not null"`
	State                string                   `gorm:"type:varchar(50)"`
	ZipCode              string                   `gorm:"type:varchar(10);not null;index"`
	Neighborhood         string                   `gorm:"type:varchar(100)"`
	NeighborhoodType     leasing.NeighborhoodType `gorm:"type:varchar(20)"`
	Bedrooms             int                      `gorm:"not null;default:0"`
	Bathrooms            float64                  `gorm:"not null;default:0"`
	SquareFeet           int                      `gorm:"not null;default:0"`
	YearBuilt            int                      `gorm:"not null;default:0"`
	LocationScore        int                      `gorm:"not null;default:0"`
	SchoolRating         int                      `gorm:"not null;default:0"`
	ConditionRating      int                      `gorm:"not null;default:0"`
	HasGarage            bool                     `gorm:"not null;default:false"`
	HasYard              bool                     `gorm:"not null;default:false"`
	HasAirConditioning   bool                     `gorm:"not null;default:false"`
	YearsSinceRenovation int                      `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property entity.
func (m *PropertyModel) ToDomain() *leasing.Property {
	return &leasing.Property{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		Address:              m.Address,
		City:                 m.City,
		State:                m.State,
		ZipCode:              m.ZipCode,
		Neighborhood:         m.Neighborhood,
		NeighborhoodType:     m.NeighborhoodType,
		Bedrooms:             m.Bedrooms,
		Bathrooms:            m.Bathrooms,
		SquareFeet:           m.SquareFeet,
		YearBuilt:            m.YearBuilt,
		LocationScore:        m.LocationScore,
		SchoolRating:         m.SchoolRating,
		ConditionRating:      m.ConditionRating,
		HasGarage:            m.HasGarage,
		HasYard:              m.HasYard,
		HasAirConditioning:   m.HasAirConditioning,
		YearsSinceRenovation: m.YearsSinceRenovation,
	}
}

// FromDomain populates the persistence model from a domain Property entity.
func (m *PropertyModel) FromDomain(p *leasing.Property) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Address = p.Address
	m.City = p.City
	m.State = p.State
	m.ZipCode = p.ZipCode
	m.Neighborhood = p.Neighborhood
	m.NeighborhoodType = p.NeighborhoodType
	m.Bedrooms = p.Bedrooms
	m.Bathrooms = p.Bathrooms
	m.SquareFeet = p.SquareFeet
	m.YearBuilt = p.YearBuilt
	m.LocationScore = p.LocationScore
	m.SchoolRating = p.SchoolRating
	m.ConditionRating = p.ConditionRating
	m.HasGarage = p.HasGarage
	m.HasYard = p.HasYard
	m.HasAirConditioning = p.HasAirConditioning
	m.YearsSinceRenovation = p.YearsSinceRenovation
}

// PropertyModelFromDomain creates a new persistence model from a domain Property entity.
func PropertyModelFromDomain(p *leasing.Property) *PropertyModel {
	m := &PropertyModel{}
	m.FromDomain(p)
	return m
}

// PaymentRecordModel is one rent payment in the operational ledger. The
// feature deriver never reads rows directly; the activity repository
// aggregates them per lease.
type PaymentRecordModel struct {
	BaseModel
	LeaseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DueDate  time.Time       `gorm:"not null"`
	PaidDate *time.Time
	DaysLate int             `gorm:"not null;default:0"`
	LateFee  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "lease_payments"
}

// MaintenanceRequestModel is one maintenance ticket against a property
type MaintenanceRequestModel struct {
	BaseModel
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index"`
	LeaseID    uuid.UUID `gorm:"type:uuid;index"`
	Priority   string    `gorm:"type:varchar(20);not null;default:'normal'"`
	OpenedAt   time.Time `gorm:"not null"`
	ResolvedAt *time.Time
}

// TableName returns the table name for GORM
func (MaintenanceRequestModel) TableName() string {
	return "maintenance_requests"
}

// MarketSnapshotModel is a captured view of zip-zone market conditions
type MarketSnapshotModel struct {
	BaseModel
	ZipCode               string          `gorm:"type:varchar(10);not null;index:idx_market_zip_captured,priority:1"`
	MedianRent            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VacancyRate           float64         `gorm:"not null;default:0"`
	RentGrowth1Yr         float64         `gorm:"not null;default:0"`
	RentGrowth3Yr         float64         `gorm:"not null;default:0"`
	NewListings30d        int             `gorm:"not null;default:0"`
	AvgDaysOnMarket       int             `gorm:"not null;default:0"`
	MedianHouseholdIncome decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PopulationGrowthRate  float64         `gorm:"not null;default:0"`
	CompetitorCount1Mi    int             `gorm:"not null;default:0"`
	CapturedAt            time.Time       `gorm:"not null;index:idx_market_zip_captured,priority:2"`
}

// TableName returns the table name for GORM
func (MarketSnapshotModel) TableName() string {
	return "market_snapshots"
}

// ToDomain converts the persistence model to a domain MarketSnapshot.
func (m *MarketSnapshotModel) ToDomain() *leasing.MarketSnapshot {
	return &leasing.MarketSnapshot{
		ZipCode:               m.ZipCode,
		MedianRent:            m.MedianRent,
		VacancyRate:           m.VacancyRate,
		RentGrowth1Yr:         m.RentGrowth1Yr,
		RentGrowth3Yr:         m.RentGrowth3Yr,
		NewListings30d:        m.NewListings30d,
		AvgDaysOnMarket:       m.AvgDaysOnMarket,
		MedianHouseholdIncome: m.MedianHouseholdIncome,
		PopulationGrowthRate:  m.PopulationGrowthRate,
		CompetitorCount1Mi:    m.CompetitorCount1Mi,
		CapturedAt:            m.CapturedAt,
	}
}

// MarketSnapshotModelFromDomain creates a persistence model from a domain snapshot.
func MarketSnapshotModelFromDomain(s *leasing.MarketSnapshot) *MarketSnapshotModel {
	m := &MarketSnapshotModel{}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	m.ZipCode = s.ZipCode
	m.MedianRent = s.MedianRent
	m.VacancyRate = s.VacancyRate
	m.RentGrowth1Yr = s.RentGrowth1Yr
	m.RentGrowth3Yr = s.RentGrowth3Yr
	m.NewListings30d = s.NewListings30d
	m.AvgDaysOnMarket = s.AvgDaysOnMarket
	m.MedianHouseholdIncome = s.MedianHouseholdIncome
	m.PopulationGrowthRate = s.PopulationGrowthRate
	m.CompetitorCount1Mi = s.CompetitorCount1Mi
	m.CapturedAt = s.CapturedAt
	return m
}
