package persistence

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/infrastructure/persistence/models"
)

// GormActivityRepository implements leasing.ActivityRepository over the
// operational payment and maintenance ledgers. Aggregation happens here so
// the feature deriver stays pure: a lease with no payment rows yields a
// zero-valued aggregate, which the deriver maps to its defaults.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// PaymentAggregates summarizes the lease's payment ledger. Standard
// deviation is computed in Go because sqlite lacks stddev and the row
// count per lease is small.
func (r *GormActivityRepository) PaymentAggregates(ctx context.Context, leaseID uuid.UUID) (*leasing.PaymentAggregates, error) {
	var payments []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}

	agg := &leasing.PaymentAggregates{
		TotalPaid:     decimal.Zero,
		AvgPayment:    decimal.Zero,
		TotalLateFees: decimal.Zero,
	}
	if len(payments) == 0 {
		return agg, nil
	}

	amounts := make([]float64, 0, len(payments))
	totalDaysLate := 0
	for i := range payments {
		p := &payments[i]
		agg.TotalPaid = agg.TotalPaid.Add(p.Amount)
		agg.TotalLateFees = agg.TotalLateFees.Add(p.LateFee)
		totalDaysLate += p.DaysLate
		if p.DaysLate > agg.MaxDaysLate {
			agg.MaxDaysLate = p.DaysLate
		}
		if p.PaidDate != nil && (agg.LastPaymentDate == nil || p.PaidDate.After(*agg.LastPaymentDate)) {
			paid := *p.PaidDate
			agg.LastPaymentDate = &paid
		}
		amount, _ := p.Amount.Float64()
		amounts = append(amounts, amount)
	}

	n := len(payments)
	agg.PaymentCount = n
	agg.TotalDaysLate = totalDaysLate
	agg.AvgDaysLate = float64(totalDaysLate) / float64(n)
	agg.AvgPayment = agg.TotalPaid.Div(decimal.NewFromInt(int64(n)))

	mean := 0.0
	for _, a := range amounts {
		mean += a
	}
	mean /= float64(n)
	variance := 0.0
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	agg.PaymentStdDev = math.Sqrt(variance / float64(n))

	return agg, nil
}

// MaintenanceAggregates summarizes maintenance tickets for a property
func (r *GormActivityRepository) MaintenanceAggregates(ctx context.Context, propertyID uuid.UUID) (*leasing.MaintenanceAggregates, error) {
	var requests []models.MaintenanceRequestModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Find(&requests).Error; err != nil {
		return nil, err
	}

	agg := &leasing.MaintenanceAggregates{}
	if len(requests) == 0 {
		return agg, nil
	}

	resolvedDays := 0.0
	resolvedCount := 0
	for i := range requests {
		req := &requests[i]
		agg.RequestCount++
		if req.Priority == "high" || req.Priority == "emergency" {
			agg.HighPriorityCount++
		}
		if req.ResolvedAt != nil {
			resolvedDays += req.ResolvedAt.Sub(req.OpenedAt).Hours() / 24
			resolvedCount++
		}
	}
	if resolvedCount > 0 {
		agg.AvgResolutionDays = resolvedDays / float64(resolvedCount)
	}

	return agg, nil
}

// RecordPayment appends a payment row to the ledger
func (r *GormActivityRepository) RecordPayment(ctx context.Context, payment *models.PaymentRecordModel) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// RecordMaintenanceRequest appends a maintenance ticket
func (r *GormActivityRepository) RecordMaintenanceRequest(ctx context.Context, request *models.MaintenanceRequestModel) error {
	return r.db.WithContext(ctx).Create(request).Error
}

var _ leasing.ActivityRepository = (*GormActivityRepository)(nil)
