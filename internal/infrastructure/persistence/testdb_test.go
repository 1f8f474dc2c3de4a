package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.LeaseModel{},
		&models.TenantModel{},
		&models.PropertyModel{},
		&models.PaymentRecordModel{},
		&models.MaintenanceRequestModel{},
		&models.MarketSnapshotModel{},
		&models.PredictionModel{},
		&models.PredictionHistoryModel{},
		&models.WorkflowRunModel{},
		&models.RetentionActionModel{},
	)
	require.NoError(t, err)

	return db
}
