package retention

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
)

func newHighRun(t *testing.T) *WorkflowRun {
	t.Helper()
	run, err := NewWorkflowRun(uuid.New(), scoring.RiskTierHigh, 85, DefaultPlanConfig())
	require.NoError(t, err)
	return run
}

func newMediumRun(t *testing.T) *WorkflowRun {
	t.Helper()
	run, err := NewWorkflowRun(uuid.New(), scoring.RiskTierMedium, 65, DefaultPlanConfig())
	require.NoError(t, err)
	return run
}

func TestNewWorkflowRun(t *testing.T) {
	run := newHighRun(t)

	assert.Equal(t, RunStatusPending, run.Status)
	assert.True(t, run.IsActive)
	assert.Equal(t, PriorityUrgent, run.Priority)
	assert.Equal(t, 0, run.CurrentStepIndex)
	assert.True(t, run.RiskMitigationValue.Equal(decimal.NewFromInt(3400))) // 85 * 40

	step, ok := run.CurrentStep()
	require.True(t, ok)
	assert.Equal(t, ActionAlertPropertyManager, step.Action)
}

func TestNewWorkflowRun_NoPlanForLow(t *testing.T) {
	_, err := NewWorkflowRun(uuid.New(), scoring.RiskTierLow, 30, DefaultPlanConfig())
	assert.Error(t, err)
}

func TestNewWorkflowRun_RequiresLeaseID(t *testing.T) {
	_, err := NewWorkflowRun(uuid.Nil, scoring.RiskTierHigh, 85, DefaultPlanConfig())
	assert.Error(t, err)
}

func TestWorkflowRun_PlanOrder(t *testing.T) {
	high := newHighRun(t)
	wantHigh := []ActionType{
		ActionAlertPropertyManager,
		ActionScheduleConciergCall,
		ActionGenerateOffer,
		ActionSendRetentionEmail,
		ActionMonitorResponse,
		ActionEscalateToRegional,
	}
	for i, step := range high.Steps {
		assert.Equal(t, wantHigh[i], step.Action, "high step %d", i)
	}

	medium := newMediumRun(t)
	wantMedium := []ActionType{
		ActionSendRetentionEmail,
		ActionGenerateIncentive,
		ActionSendIncentiveOffer,
		ActionMonitorEngagement,
		ActionSendReminderEmail,
	}
	for i, step := range medium.Steps {
		assert.Equal(t, wantMedium[i], step.Action, "medium step %d", i)
	}
}

func TestWorkflowRun_Lifecycle(t *testing.T) {
	run := newMediumRun(t)
	now := time.Now()

	require.NoError(t, run.Start(now))
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Error(t, run.Start(now), "double start")

	for i := 0; i < len(run.Steps); i++ {
		require.NoError(t, run.AdvanceStep())
	}
	_, ok := run.CurrentStep()
	assert.False(t, ok, "plan exhausted")
	assert.Error(t, run.AdvanceStep())

	require.NoError(t, run.Complete(now, OutcomeRenewed))
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.False(t, run.IsActive)
	assert.Equal(t, OutcomeRenewed, run.Outcome)
	assert.Error(t, run.AdvanceStep(), "terminal run is frozen")
}

func TestWorkflowRun_Wait(t *testing.T) {
	run := newHighRun(t)
	now := time.Now()
	require.NoError(t, run.Start(now))

	// Waiting is only legal when the cursor is on a monitor step
	assert.Error(t, run.BeginWait(now.Add(48*time.Hour)))

	for i := 0; i < 4; i++ {
		require.NoError(t, run.AdvanceStep())
	}
	step, ok := run.CurrentStep()
	require.True(t, ok)
	require.Equal(t, ActionMonitorResponse, step.Action)
	require.True(t, step.IsMonitor())

	deadline := now.Add(step.Window)
	require.NoError(t, run.BeginWait(deadline))
	assert.True(t, run.IsWaiting(now.Add(time.Hour)))
	assert.False(t, run.IsWaiting(deadline))

	// Advancing past the monitor step clears the wait
	require.NoError(t, run.AdvanceStep())
	assert.Nil(t, run.WaitingUntil)
}

func TestWorkflowRun_BeginClosing(t *testing.T) {
	run := newHighRun(t)
	now := time.Now()

	// Only a running run can branch into closing steps
	assert.Error(t, run.BeginClosing(RenewalClosingSteps()))
	require.NoError(t, run.Start(now))

	for i := 0; i < 4; i++ {
		require.NoError(t, run.AdvanceStep())
	}
	require.NoError(t, run.BeginWait(now.Add(48*time.Hour)))

	require.NoError(t, run.BeginClosing(RenewalClosingSteps()))
	assert.Nil(t, run.WaitingUntil)
	assert.Equal(t, 6, len(run.Steps), "executed steps keep their place")

	step, ok := run.CurrentStep()
	require.True(t, ok)
	assert.Equal(t, ActionScheduleMeeting, step.Action)

	require.NoError(t, run.AdvanceStep())
	step, ok = run.CurrentStep()
	require.True(t, ok)
	assert.Equal(t, ActionProcessRenewal, step.Action)

	require.NoError(t, run.AdvanceStep())
	_, ok = run.CurrentStep()
	assert.False(t, ok, "closing steps end the plan")
}

func TestWorkflowRun_Supersede(t *testing.T) {
	run := newMediumRun(t)
	now := time.Now()
	require.NoError(t, run.Start(now))

	assert.True(t, run.ShouldSupersedeFor(scoring.RiskTierHigh))
	assert.False(t, run.ShouldSupersedeFor(scoring.RiskTierMedium), "same tier is a no-op")
	assert.False(t, run.ShouldSupersedeFor(scoring.RiskTierLow), "lower tier is a no-op")

	require.NoError(t, run.Supersede(now))
	assert.Equal(t, RunStatusSuperseded, run.Status)
	assert.False(t, run.IsActive)
	assert.False(t, run.ShouldSupersedeFor(scoring.RiskTierHigh), "terminal run cannot be superseded")
	assert.Error(t, run.Supersede(now))
}

func TestWorkflowRun_HighNeverSupersededByHigh(t *testing.T) {
	run := newHighRun(t)
	require.NoError(t, run.Start(time.Now()))
	assert.False(t, run.ShouldSupersedeFor(scoring.RiskTierHigh))
}

func TestWorkflowRun_ForceCompleteFromPending(t *testing.T) {
	// A lease resolving before the run ever starts still closes the run
	run := newMediumRun(t)
	require.NoError(t, run.Complete(time.Now(), OutcomeRenewed))
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.False(t, run.IsActive)
}

func TestWorkflowRun_StepsRemaining(t *testing.T) {
	run := newMediumRun(t)
	require.NoError(t, run.Start(time.Now()))
	assert.Equal(t, 5, run.StepsRemaining())
	require.NoError(t, run.AdvanceStep())
	assert.Equal(t, 4, run.StepsRemaining())
}

func TestRetentionAction_Lifecycle(t *testing.T) {
	cfg := DefaultPlanConfig()
	now := time.Now()
	action := NewRetentionAction(uuid.New(), uuid.New(), ActionSendRetentionEmail, scoring.RiskTierHigh, cfg.CostFor(ActionSendRetentionEmail), decimal.NewFromInt(400), now)

	assert.Equal(t, ActionStatusPending, action.Status)
	assert.Equal(t, OutcomeUnknown, action.Outcome)

	require.NoError(t, action.MarkInProgress())
	assert.Equal(t, 1, action.AttemptCount)
	require.NoError(t, action.MarkInProgress())
	assert.Equal(t, 2, action.AttemptCount)

	require.NoError(t, action.Complete(now))
	assert.Equal(t, ActionStatusCompleted, action.Status)
	assert.Empty(t, action.LastError)

	assert.Error(t, action.MarkInProgress(), "terminal action is frozen")
	assert.Error(t, action.Fail(now, "late failure"))

	require.NoError(t, action.RecordOutcome(OutcomeRenewed))
	assert.Equal(t, OutcomeRenewed, action.Outcome)
}

func TestRetentionAction_FailKeepsLastError(t *testing.T) {
	now := time.Now()
	action := NewRetentionAction(uuid.New(), uuid.New(), ActionScheduleConciergCall, scoring.RiskTierHigh, decimal.NewFromInt(400), decimal.NewFromInt(400), now)

	require.NoError(t, action.MarkInProgress())
	require.NoError(t, action.Fail(now, "provider timeout"))
	assert.Equal(t, ActionStatusFailed, action.Status)
	assert.Equal(t, "provider timeout", action.LastError)

	require.NoError(t, action.RecordOutcome(OutcomeNoResponse))
	assert.Equal(t, OutcomeNoResponse, action.Outcome)
}
