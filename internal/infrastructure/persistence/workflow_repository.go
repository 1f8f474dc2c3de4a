package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

// GormWorkflowRepository implements retention.WorkflowRepository using GORM.
// The one-active-run-per-lease invariant has two layers: a transactional
// check-and-insert here, and a partial unique index on (lease_id) WHERE
// is_active in postgres that catches races the check cannot see.
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewGormWorkflowRepository creates a new GormWorkflowRepository
func NewGormWorkflowRepository(db *gorm.DB) *GormWorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// FindByID finds a run by ID
func (r *GormWorkflowRepository) FindByID(ctx context.Context, id uuid.UUID) (*retention.WorkflowRun, error) {
	var model models.WorkflowRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindActiveByLease returns the lease's active run or shared.ErrNotFound
func (r *GormWorkflowRepository) FindActiveByLease(ctx context.Context, leaseID uuid.UUID) (*retention.WorkflowRun, error) {
	var model models.WorkflowRunModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ? AND is_active = ?", leaseID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// CreateActive inserts a new active run, failing with
// shared.ErrConcurrencyConflict when the lease already has one.
func (r *GormWorkflowRepository) CreateActive(ctx context.Context, run *retention.WorkflowRun) error {
	model, err := models.WorkflowRunModelFromDomain(run)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WorkflowRunModel{}).
			Where("lease_id = ? AND is_active = ?", run.LeaseID, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrConcurrencyConflict
		}
		if err := tx.Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrConcurrencyConflict
			}
			return err
		}
		return nil
	})
}

// SupersedeAndCreate marks old superseded and inserts the replacement in
// one transaction, so no observer sees zero or two active runs.
func (r *GormWorkflowRepository) SupersedeAndCreate(ctx context.Context, old, replacement *retention.WorkflowRun) error {
	oldModel, err := models.WorkflowRunModelFromDomain(old)
	if err != nil {
		return err
	}
	newModel, err := models.WorkflowRunModelFromDomain(replacement)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.WorkflowRunModel{}).
			Where("id = ? AND is_active = ?", old.ID, true).
			Select("status", "is_active", "completed_at", "waiting_until", "updated_at", "version").
			Updates(oldModel)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		if err := tx.Create(newModel).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrConcurrencyConflict
			}
			return err
		}
		return nil
	})
}

// Save updates a run's cursor and lifecycle state
func (r *GormWorkflowRepository) Save(ctx context.Context, run *retention.WorkflowRun) error {
	model, err := models.WorkflowRunModelFromDomain(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// FindResumable returns running runs whose wait window has elapsed
func (r *GormWorkflowRepository) FindResumable(ctx context.Context, asOf time.Time, limit int) ([]retention.WorkflowRun, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND waiting_until IS NOT NULL AND waiting_until <= ?", retention.RunStatusRunning, asOf).
		Order("waiting_until ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var runModels []models.WorkflowRunModel
	if err := query.Find(&runModels).Error; err != nil {
		return nil, err
	}
	return toDomainRuns(runModels)
}

// CompletedInRange returns runs completed in [from, to)
func (r *GormWorkflowRepository) CompletedInRange(ctx context.Context, from, to time.Time) ([]retention.WorkflowRun, error) {
	var runModels []models.WorkflowRunModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", retention.RunStatusCompleted, from, to).
		Order("completed_at ASC").
		Find(&runModels).Error; err != nil {
		return nil, err
	}
	return toDomainRuns(runModels)
}

// CountByStatus returns run counts grouped by status
func (r *GormWorkflowRepository) CountByStatus(ctx context.Context) (map[retention.RunStatus]int64, error) {
	type statusCount struct {
		Status retention.RunStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.WorkflowRunModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[retention.RunStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountByOutcome returns completed-run counts grouped by outcome for the range
func (r *GormWorkflowRepository) CountByOutcome(ctx context.Context, from, to time.Time) (map[retention.Outcome]int64, error) {
	type outcomeCount struct {
		Outcome retention.Outcome
		Count   int64
	}
	var rows []outcomeCount
	if err := r.db.WithContext(ctx).
		Model(&models.WorkflowRunModel{}).
		Select("outcome, count(*) as count").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", retention.RunStatusCompleted, from, to).
		Group("outcome").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[retention.Outcome]int64, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Count
	}
	return counts, nil
}

func toDomainRuns(runModels []models.WorkflowRunModel) ([]retention.WorkflowRun, error) {
	runs := make([]retention.WorkflowRun, len(runModels))
	for i := range runModels {
		run, err := runModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		runs[i] = *run
	}
	return runs, nil
}

// isUniqueViolation matches postgres and sqlite unique-constraint errors
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

var _ retention.WorkflowRepository = (*GormWorkflowRepository)(nil)
