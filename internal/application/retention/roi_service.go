package retention

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
)

// ROIService reduces completed runs and recorded actions over a time range
// into the retention program's cost/benefit report. It is a pure reduction:
// no state is mutated, the same range always yields the same report.
type ROIService struct {
	workflowRepo    retention.WorkflowRepository
	actionRepo      retention.ActionRepository
	avgTurnoverCost decimal.Decimal
	logger          *zap.Logger
}

// NewROIService creates a new ROIService
func NewROIService(
	workflowRepo retention.WorkflowRepository,
	actionRepo retention.ActionRepository,
	avgTurnoverCost decimal.Decimal,
	logger *zap.Logger,
) *ROIService {
	if avgTurnoverCost.LessThanOrEqual(decimal.Zero) {
		avgTurnoverCost = retention.DefaultPlanConfig().EstimatedTurnoverCost
	}
	return &ROIService{
		workflowRepo:    workflowRepo,
		actionRepo:      actionRepo,
		avgTurnoverCost: avgTurnoverCost,
		logger:          logger,
	}
}

// Report computes the ROI summary for runs completed in [from, to).
// turnoversAvoided = completedRuns x renewalRate, costSavings =
// turnoversAvoided x avgTurnoverCost, netSavings = costSavings - action
// cost, roiPercentage = netSavings / actionCost x 100. A range with zero
// action cost reports 0% rather than dividing by zero.
func (s *ROIService) Report(ctx context.Context, from, to time.Time) (*ROIReport, error) {
	byOutcome, err := s.workflowRepo.CountByOutcome(ctx, from, to)
	if err != nil {
		return nil, err
	}
	actions, err := s.actionRepo.TriggeredInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &ROIReport{
		From:            from,
		To:              to,
		RenewedCount:    byOutcome[retention.OutcomeRenewed],
		NotRenewedCount: byOutcome[retention.OutcomeNotRenewed],
		NoResponseCount: byOutcome[retention.OutcomeNoResponse],
		AvgTurnoverCost: s.avgTurnoverCost,
		TotalActionCost: decimal.Zero,
		CostSavings:     decimal.Zero,
		NetSavings:      decimal.Zero,
		ROIPercentage:   decimal.Zero,
	}
	for _, count := range byOutcome {
		report.CompletedRuns += count
	}

	// Only delivered actions cost money; failed sends are not billed.
	for i := range actions {
		if actions[i].Status == retention.ActionStatusCompleted {
			report.TotalActionCost = report.TotalActionCost.Add(actions[i].Cost)
		}
	}

	if report.CompletedRuns > 0 {
		report.RenewalRate = float64(report.RenewedCount) / float64(report.CompletedRuns)
	}
	report.TurnoversAvoided = float64(report.CompletedRuns) * report.RenewalRate

	report.CostSavings = s.avgTurnoverCost.
		Mul(decimal.NewFromFloat(report.TurnoversAvoided)).
		Round(2)
	report.NetSavings = report.CostSavings.Sub(report.TotalActionCost)

	if report.TotalActionCost.IsPositive() {
		report.ROIPercentage = report.NetSavings.
			Div(report.TotalActionCost).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	s.logger.Debug("ROI report computed",
		zap.Time("from", from), zap.Time("to", to),
		zap.Int64("completed_runs", report.CompletedRuns),
		zap.String("net_savings", report.NetSavings.String()))

	return report, nil
}
