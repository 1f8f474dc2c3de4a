package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

// RiskSnapshotAdapter serves point-in-time gauge counts for telemetry.
// It queries the models directly instead of going through the repositories
// so a single grouped query covers all tiers.
type RiskSnapshotAdapter struct {
	db *gorm.DB
}

// NewRiskSnapshotAdapter creates a new snapshot adapter.
func NewRiskSnapshotAdapter(db *gorm.DB) *RiskSnapshotAdapter {
	return &RiskSnapshotAdapter{db: db}
}

type tierCount struct {
	Tier  string
	Count int64
}

// CountPredictionsByTier returns the number of current predictions per risk tier.
func (a *RiskSnapshotAdapter) CountPredictionsByTier(ctx context.Context) (map[string]int64, error) {
	var rows []tierCount
	if err := a.db.WithContext(ctx).
		Model(&models.PredictionModel{}).
		Select("risk_tier AS tier, COUNT(*) AS count").
		Group("risk_tier").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return tierCountMap(rows), nil
}

// CountActiveRunsByTier returns the number of active workflow runs per risk tier.
func (a *RiskSnapshotAdapter) CountActiveRunsByTier(ctx context.Context) (map[string]int64, error) {
	var rows []tierCount
	if err := a.db.WithContext(ctx).
		Model(&models.WorkflowRunModel{}).
		Select("tier_at_start AS tier, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("tier_at_start").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return tierCountMap(rows), nil
}

func tierCountMap(rows []tierCount) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Tier] = row.Count
	}
	return counts
}
