package retention

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Channel identifies a delivery channel for retention outreach
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelInternal Channel = "internal"
)

// Notification is one outbound message. Data carries template variables.
type Notification struct {
	Channel   Channel
	Template  string
	Recipient string
	Data      map[string]interface{}
}

// DeliveryResult reports a successful send
type DeliveryResult struct {
	Channel     Channel
	Template    string
	ProviderRef string
	DeliveredAt time.Time
}

// Notifier delivers retention messages. Transport mechanics live behind
// this interface; failures surface as errors and are retried by the
// engine's step policy.
type Notifier interface {
	Send(ctx context.Context, notification Notification) (*DeliveryResult, error)
}

// ContactRequest asks for a concierge call or in-person visit
type ContactRequest struct {
	LeaseID     uuid.UUID
	TenantPhone string
	CallScript  string
	Urgency     Priority
	MaxAttempts int
}

// ScheduledContact is a booked outreach slot
type ScheduledContact struct {
	Reference   string
	ScheduledAt time.Time
}

// ContactScheduler books human outreach (concierge calls, visits)
type ContactScheduler interface {
	ScheduleCall(ctx context.Context, req ContactRequest) (*ScheduledContact, error)
}

// ResponseSignal is what the tenant did during a monitoring window
type ResponseSignal struct {
	Responded   bool
	Positive    bool
	Channel     Channel
	RespondedAt *time.Time
}

// ResponseMonitor checks for tenant responses across channels (email
// opens, portal logins, call-backs) since the given time.
type ResponseMonitor interface {
	CheckResponse(ctx context.Context, leaseID uuid.UUID, since time.Time) (*ResponseSignal, error)
}

// LeaseLock serializes per-lease work across overlapping scan invocations.
// Acquire returns false when another holder owns the lease. No cross-lease
// locking exists or is needed.
type LeaseLock interface {
	Acquire(ctx context.Context, leaseID uuid.UUID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, leaseID uuid.UUID) error
}
