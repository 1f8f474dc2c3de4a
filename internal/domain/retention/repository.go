package retention

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WorkflowRepository persists workflow runs. The one-active-run-per-lease
// invariant is enforced here: CreateActive and SupersedeAndCreate are the
// only ways a run becomes active, and both are atomic check-and-set
// operations that return shared.ErrConcurrencyConflict when another active
// run already exists for the lease.
type WorkflowRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WorkflowRun, error)
	// FindActiveByLease returns shared.ErrNotFound when no run is active
	FindActiveByLease(ctx context.Context, leaseID uuid.UUID) (*WorkflowRun, error)
	// CreateActive inserts a new active run, failing with
	// shared.ErrConcurrencyConflict when the lease already has one.
	CreateActive(ctx context.Context, run *WorkflowRun) error
	// SupersedeAndCreate marks old superseded and inserts the replacement
	// in one transaction, so no observer sees zero or two active runs.
	SupersedeAndCreate(ctx context.Context, old, replacement *WorkflowRun) error
	Save(ctx context.Context, run *WorkflowRun) error
	// FindResumable returns running runs whose wait window has elapsed
	FindResumable(ctx context.Context, asOf time.Time, limit int) ([]WorkflowRun, error)
	CompletedInRange(ctx context.Context, from, to time.Time) ([]WorkflowRun, error)
	CountByStatus(ctx context.Context) (map[RunStatus]int64, error)
	CountByOutcome(ctx context.Context, from, to time.Time) (map[Outcome]int64, error)
}

// ActionRepository persists retention actions. Actions are created and
// mutated only by the workflow engine; once terminal with an outcome they
// are immutable history.
type ActionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RetentionAction, error)
	FindByRun(ctx context.Context, runID uuid.UUID) ([]RetentionAction, error)
	FindByLease(ctx context.Context, leaseID uuid.UUID) ([]RetentionAction, error)
	TriggeredInRange(ctx context.Context, from, to time.Time) ([]RetentionAction, error)
	Save(ctx context.Context, action *RetentionAction) error
}
