package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/leasing"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// LeaseService exposes the lease lifecycle operations the retention pipeline
// reacts to. Renewal and termination go through the optimistic version check
// so concurrent scans never overwrite a resolved lease.
type LeaseService struct {
	leaseRepo leasing.LeaseRepository
	logger    *zap.Logger
}

// NewLeaseService creates a new lease service.
func NewLeaseService(leaseRepo leasing.LeaseRepository, logger *zap.Logger) *LeaseService {
	return &LeaseService{
		leaseRepo: leaseRepo,
		logger:    logger,
	}
}

// GetLease loads a lease by ID.
func (s *LeaseService) GetLease(ctx context.Context, leaseID uuid.UUID) (*leasing.Lease, error) {
	return s.leaseRepo.FindByID(ctx, leaseID)
}

// ListLeases returns leases matching the filter.
func (s *LeaseService) ListLeases(ctx context.Context, filter shared.Filter) ([]leasing.Lease, error) {
	return s.leaseRepo.FindAll(ctx, filter)
}

// RenewLease moves an active lease to renewed with the new terms.
func (s *LeaseService) RenewLease(ctx context.Context, leaseID uuid.UUID, req RenewLeaseRequest) (*leasing.Lease, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	if err := lease.Renew(req.NewEndDate, decimal.NewFromFloat(req.NewMonthlyRent)); err != nil {
		return nil, err
	}

	lease.IncrementVersion()
	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return nil, err
	}

	s.logger.Info("Lease renewed",
		zap.String("lease_id", lease.ID.String()),
		zap.Time("new_end_date", lease.EndDate),
		zap.Int("renewal_count", lease.RenewalCount),
	)

	return lease, nil
}

// TerminateLease moves an active lease to terminated.
func (s *LeaseService) TerminateLease(ctx context.Context, leaseID uuid.UUID) (*leasing.Lease, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	if err := lease.Terminate(); err != nil {
		return nil, err
	}

	lease.IncrementVersion()
	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return nil, err
	}

	s.logger.Info("Lease terminated", zap.String("lease_id", lease.ID.String()))

	return lease, nil
}
