package retention

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// IncentiveType classifies the offer made to a tenant
type IncentiveType string

const (
	IncentiveRentDiscount  IncentiveType = "rent-discount"
	IncentiveUpgradeCredit IncentiveType = "upgrade-credit"
	IncentiveGiftCard      IncentiveType = "gift-card"
)

// Incentive is a concrete offer. Magnitude is a pure function of the risk
// score, so the same score always generates the same offer.
type Incentive struct {
	Type           IncentiveType
	Description    string
	DiscountPct    float64
	DurationMonths int
	Amount         decimal.Decimal
	ExpirationDays int
}

// IncentiveConfig holds the tiered offer table. Values are configuration:
// adjusting an offer amount must not require a code change.
type IncentiveConfig struct {
	DiscountScoreFloor int
	CreditScoreFloor   int
	DiscountPct        float64
	DiscountMonths     int
	CreditAmount       decimal.Decimal
	GiftCardAmount     decimal.Decimal
	ExpirationDays     int
}

// DefaultIncentiveConfig returns the standard offer tiers:
// score >= 70 -> 5% rent discount for 3 months,
// 60 <= score < 70 -> $500 property-upgrade credit,
// otherwise -> $250 gift card.
func DefaultIncentiveConfig() IncentiveConfig {
	return IncentiveConfig{
		DiscountScoreFloor: 70,
		CreditScoreFloor:   60,
		DiscountPct:        0.05,
		DiscountMonths:     3,
		CreditAmount:       decimal.NewFromInt(500),
		GiftCardAmount:     decimal.NewFromInt(250),
		ExpirationDays:     30,
	}
}

// ForScore returns the incentive tier for a risk score
func (c IncentiveConfig) ForScore(score int) Incentive {
	switch {
	case score >= c.DiscountScoreFloor:
		return Incentive{
			Type:           IncentiveRentDiscount,
			Description:    fmt.Sprintf("%.0f%% rent discount for %d months", c.DiscountPct*100, c.DiscountMonths),
			DiscountPct:    c.DiscountPct,
			DurationMonths: c.DiscountMonths,
			ExpirationDays: c.ExpirationDays,
		}
	case score >= c.CreditScoreFloor:
		return Incentive{
			Type:           IncentiveUpgradeCredit,
			Description:    fmt.Sprintf("$%s property-upgrade credit", c.CreditAmount.StringFixed(0)),
			Amount:         c.CreditAmount,
			ExpirationDays: c.ExpirationDays,
		}
	default:
		return Incentive{
			Type:           IncentiveGiftCard,
			Description:    fmt.Sprintf("$%s gift card", c.GiftCardAmount.StringFixed(0)),
			Amount:         c.GiftCardAmount,
			ExpirationDays: c.ExpirationDays,
		}
	}
}

// Cost returns the dollar cost of the incentive for ROI bookkeeping. Rent
// discounts cost a share of the monthly rent over the discount period.
func (i Incentive) Cost(monthlyRent decimal.Decimal) decimal.Decimal {
	if i.Type == IncentiveRentDiscount {
		return monthlyRent.
			Mul(decimal.NewFromFloat(i.DiscountPct)).
			Mul(decimal.NewFromInt(int64(i.DurationMonths))).
			Round(2)
	}
	return i.Amount
}
