package leasing

import (
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// NeighborhoodType classifies the property's surroundings
type NeighborhoodType string

const (
	NeighborhoodUrban    NeighborhoodType = "urban"
	NeighborhoodSuburban NeighborhoodType = "suburban"
	NeighborhoodRural    NeighborhoodType = "rural"
)

// Property represents a rental property
type Property struct {
	shared.BaseAggregateRoot
	Address          string
	City             string
	State            string
	ZipCode          string
	Neighborhood     string
	NeighborhoodType NeighborhoodType
	Bedrooms         int
	Bathrooms        float64
	SquareFeet       int
	YearBuilt        int
	// LocationScore and SchoolRating are 1-10; ConditionRating is 1-5.
	LocationScore        int
	SchoolRating         int
	ConditionRating      int
	HasGarage            bool
	HasYard              bool
	HasAirConditioning   bool
	YearsSinceRenovation int
}

// Age returns the property age in years relative to the given year
func (p *Property) Age(asOfYear int) int {
	if p.YearBuilt <= 0 || asOfYear < p.YearBuilt {
		return 0
	}
	return asOfYear - p.YearBuilt
}
