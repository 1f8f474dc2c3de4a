package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// LeaseRepository persists lease contracts
type LeaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	// FindExpiringWithin returns active leases whose end date falls in
	// (asOf, asOf+windowDays]. This is the batch scanner's selection.
	FindExpiringWithin(ctx context.Context, asOf time.Time, windowDays int) ([]Lease, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Lease, error)
	Save(ctx context.Context, lease *Lease) error
	// SaveWithLock saves with an optimistic version check and returns
	// shared.ErrConcurrencyConflict when the row changed underneath.
	SaveWithLock(ctx context.Context, lease *Lease) error
	CountByStatus(ctx context.Context, status LeaseStatus) (int64, error)
}

// TenantRepository persists tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// PropertyRepository persists properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	Save(ctx context.Context, property *Property) error
}

// ActivityRepository exposes operational-store aggregates consumed by
// feature derivation. Aggregation lives in the store, not the deriver.
type ActivityRepository interface {
	PaymentAggregates(ctx context.Context, leaseID uuid.UUID) (*PaymentAggregates, error)
	MaintenanceAggregates(ctx context.Context, propertyID uuid.UUID) (*MaintenanceAggregates, error)
}

// MarketRepository reads market snapshots per zip-code zone
type MarketRepository interface {
	// LatestForZip returns the most recent snapshot for the zone, or
	// shared.ErrNotFound when the zone has never been captured.
	LatestForZip(ctx context.Context, zipCode string) (*MarketSnapshot, error)
	Save(ctx context.Context, snapshot *MarketSnapshot) error
}
