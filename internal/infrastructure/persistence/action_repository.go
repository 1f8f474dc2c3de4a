package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

// GormActionRepository implements retention.ActionRepository using GORM
type GormActionRepository struct {
	db *gorm.DB
}

// NewGormActionRepository creates a new GormActionRepository
func NewGormActionRepository(db *gorm.DB) *GormActionRepository {
	return &GormActionRepository{db: db}
}

// FindByID finds an action by ID
func (r *GormActionRepository) FindByID(ctx context.Context, id uuid.UUID) (*retention.RetentionAction, error) {
	var model models.RetentionActionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRun returns a run's actions in trigger order
func (r *GormActionRepository) FindByRun(ctx context.Context, runID uuid.UUID) ([]retention.RetentionAction, error) {
	var actionModels []models.RetentionActionModel
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("triggered_at ASC, created_at ASC").
		Find(&actionModels).Error; err != nil {
		return nil, err
	}
	return toDomainActions(actionModels), nil
}

// FindByLease returns all actions ever recorded for a lease
func (r *GormActionRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) ([]retention.RetentionAction, error) {
	var actionModels []models.RetentionActionModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("triggered_at ASC, created_at ASC").
		Find(&actionModels).Error; err != nil {
		return nil, err
	}
	return toDomainActions(actionModels), nil
}

// TriggeredInRange returns actions triggered in [from, to)
func (r *GormActionRepository) TriggeredInRange(ctx context.Context, from, to time.Time) ([]retention.RetentionAction, error) {
	var actionModels []models.RetentionActionModel
	if err := r.db.WithContext(ctx).
		Where("triggered_at >= ? AND triggered_at < ?", from, to).
		Order("triggered_at ASC").
		Find(&actionModels).Error; err != nil {
		return nil, err
	}
	return toDomainActions(actionModels), nil
}

// Save creates or updates an action
func (r *GormActionRepository) Save(ctx context.Context, action *retention.RetentionAction) error {
	model := models.RetentionActionModelFromDomain(action)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainActions(actionModels []models.RetentionActionModel) []retention.RetentionAction {
	actions := make([]retention.RetentionAction, len(actionModels))
	for i := range actionModels {
		actions[i] = *actionModels[i].ToDomain()
	}
	return actions
}

var _ retention.ActionRepository = (*GormActionRepository)(nil)
