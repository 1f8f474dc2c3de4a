package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

// GormMarketRepository implements leasing.MarketRepository using GORM.
// Snapshots are append-only; readers always take the latest per zip zone.
type GormMarketRepository struct {
	db *gorm.DB
}

// NewGormMarketRepository creates a new GormMarketRepository
func NewGormMarketRepository(db *gorm.DB) *GormMarketRepository {
	return &GormMarketRepository{db: db}
}

// LatestForZip returns the most recent snapshot for the zone
func (r *GormMarketRepository) LatestForZip(ctx context.Context, zipCode string) (*leasing.MarketSnapshot, error) {
	var model models.MarketSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("zip_code = ?", zipCode).
		Order("captured_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save appends a snapshot
func (r *GormMarketRepository) Save(ctx context.Context, snapshot *leasing.MarketSnapshot) error {
	model := models.MarketSnapshotModelFromDomain(snapshot)
	return r.db.WithContext(ctx).Create(model).Error
}

var _ leasing.MarketRepository = (*GormMarketRepository)(nil)
