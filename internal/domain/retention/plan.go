package retention

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// Priority drives operational urgency downstream (SLAs, alert routing)
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityNormal Priority = "NORMAL"
)

// PlanStep is one ordered step of a retention plan. Window is non-zero for
// monitoring steps: the run pauses there until the window elapses or the
// tenant responds.
type PlanStep struct {
	Action ActionType    `json:"action"`
	Window time.Duration `json:"window,omitempty"`
}

// IsMonitor reports whether the step waits on a tenant response window
func (s PlanStep) IsMonitor() bool {
	return s.Action == ActionMonitorResponse || s.Action == ActionMonitorEngagement
}

// PlanConfig parameterizes the fixed plan topology per tier. The step
// order is fixed; windows, costs and the turnover estimate are tunable.
type PlanConfig struct {
	HighResponseWindow     time.Duration
	MediumEngagementWindow time.Duration
	EstimatedTurnoverCost  decimal.Decimal
	// RiskMitigationPerPoint scales the risk score into the estimated
	// value of retaining the tenant.
	RiskMitigationPerPoint decimal.Decimal
	ActionCosts            map[ActionType]decimal.Decimal
}

// DefaultPlanConfig returns the standard plan parameters
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		HighResponseWindow:     48 * time.Hour,
		MediumEngagementWindow: 7 * 24 * time.Hour,
		EstimatedTurnoverCost:  decimal.NewFromInt(4000),
		RiskMitigationPerPoint: decimal.NewFromInt(40),
		ActionCosts: map[ActionType]decimal.Decimal{
			ActionAlertPropertyManager: decimal.NewFromInt(10),
			ActionScheduleConciergCall: decimal.NewFromInt(50),
			ActionGenerateOffer:        decimal.Zero,
			ActionSendRetentionEmail:   decimal.NewFromInt(5),
			ActionMonitorResponse:      decimal.Zero,
			ActionEscalateToRegional:   decimal.NewFromInt(25),
			ActionGenerateIncentive:    decimal.Zero,
			ActionSendIncentiveOffer:   decimal.NewFromInt(5),
			ActionMonitorEngagement:    decimal.Zero,
			ActionSendReminderEmail:    decimal.NewFromInt(5),
			ActionFlagForFollowUp:      decimal.NewFromInt(10),
			ActionScheduleMeeting:      decimal.NewFromInt(75),
			ActionProcessRenewal:       decimal.Zero,
		},
	}
}

// CostFor returns the bookkeeping cost of an action type
func (c PlanConfig) CostFor(action ActionType) decimal.Decimal {
	if cost, ok := c.ActionCosts[action]; ok {
		return cost
	}
	return decimal.Zero
}

// PlanForTier returns the ordered steps for a tier. Only MEDIUM and HIGH
// have plans; LOW leases are scored but not worked.
//
// HIGH: alert manager -> concierge call -> personalized offer -> retention
// email -> 48h response window -> escalate when no response arrives.
// MEDIUM: email campaign -> tiered incentive -> incentive offer -> 7d
// engagement window -> reminder.
func (c PlanConfig) PlanForTier(tier scoring.RiskTier) ([]PlanStep, error) {
	switch tier {
	case scoring.RiskTierHigh:
		return []PlanStep{
			{Action: ActionAlertPropertyManager},
			{Action: ActionScheduleConciergCall},
			{Action: ActionGenerateOffer},
			{Action: ActionSendRetentionEmail},
			{Action: ActionMonitorResponse, Window: c.HighResponseWindow},
			{Action: ActionEscalateToRegional},
		}, nil
	case scoring.RiskTierMedium:
		return []PlanStep{
			{Action: ActionSendRetentionEmail},
			{Action: ActionGenerateIncentive},
			{Action: ActionSendIncentiveOffer},
			{Action: ActionMonitorEngagement, Window: c.MediumEngagementWindow},
			{Action: ActionSendReminderEmail},
		}, nil
	default:
		return nil, shared.NewDomainError("NO_PLAN_FOR_TIER", "No retention plan is defined for tier "+tier.String())
	}
}

// RenewalClosingSteps are the steps run when a tenant responds positively
// during a monitoring window: book the in-person renewal meeting, then hand
// processing to the leasing office.
func RenewalClosingSteps() []PlanStep {
	return []PlanStep{
		{Action: ActionScheduleMeeting},
		{Action: ActionProcessRenewal},
	}
}

// DeclineClosingSteps are the steps run when a tenant responds negatively:
// the lease is flagged for manual follow-up before the run closes.
func DeclineClosingSteps() []PlanStep {
	return []PlanStep{
		{Action: ActionFlagForFollowUp},
	}
}

// PriorityForTier maps a tier to its operational priority
func PriorityForTier(tier scoring.RiskTier) Priority {
	if tier == scoring.RiskTierHigh {
		return PriorityUrgent
	}
	return PriorityNormal
}
