package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/scoring"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

// GormPredictionRepository implements scoring.PredictionRepository using GORM
type GormPredictionRepository struct {
	db *gorm.DB
}

// NewGormPredictionRepository creates a new GormPredictionRepository
func NewGormPredictionRepository(db *gorm.DB) *GormPredictionRepository {
	return &GormPredictionRepository{db: db}
}

// Record upserts the lease's current prediction and appends the history row
// in one transaction. The unique index on lease_id turns the upsert into an
// atomic on-conflict update; no observer sees a current pointer without its
// history entry.
func (r *GormPredictionRepository) Record(ctx context.Context, prediction *scoring.Prediction) error {
	current := models.PredictionModelFromDomain(prediction)
	history := models.PredictionHistoryFromDomain(prediction)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lease_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"churn_probability", "risk_score", "risk_tier",
				"confidence", "model_version", "computed_at", "updated_at",
			}),
		}).Create(current).Error; err != nil {
			return err
		}
		return tx.Create(history).Error
	})
}

// GetCurrent returns the lease's current prediction
func (r *GormPredictionRepository) GetCurrent(ctx context.Context, leaseID uuid.UUID) (*scoring.Prediction, error) {
	var model models.PredictionModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// History returns the lease's scoring history, newest first by default
func (r *GormPredictionRepository) History(ctx context.Context, leaseID uuid.UUID, filter shared.Filter) ([]scoring.Prediction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PredictionHistoryModel{}).
		Where("lease_id = ?", leaseID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("computed_at DESC")
	}

	var historyModels []models.PredictionHistoryModel
	if err := query.Find(&historyModels).Error; err != nil {
		return nil, err
	}

	predictions := make([]scoring.Prediction, len(historyModels))
	for i, model := range historyModels {
		predictions[i] = *model.ToDomain()
	}
	return predictions, nil
}

// CountByTier counts current predictions in the given tier
func (r *GormPredictionRepository) CountByTier(ctx context.Context, tier scoring.RiskTier) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PredictionModel{}).
		Where("risk_tier = ?", tier).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ scoring.PredictionRepository = (*GormPredictionRepository)(nil)
