package scoring

import (
	"context"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// PredictionRepository persists predictions. Record upserts the lease's
// current prediction and appends to history in one logically atomic
// operation: no observer ever sees a current pointer without its history
// row. There is no delete; history is retained for drift analysis.
type PredictionRepository interface {
	Record(ctx context.Context, prediction *Prediction) error
	GetCurrent(ctx context.Context, leaseID uuid.UUID) (*Prediction, error)
	History(ctx context.Context, leaseID uuid.UUID, filter shared.Filter) ([]Prediction, error)
	CountByTier(ctx context.Context, tier RiskTier) (int64, error)
}
