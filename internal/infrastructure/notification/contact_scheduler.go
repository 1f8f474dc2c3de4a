package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
)

// LogContactScheduler implements retention.ContactScheduler by booking a
// slot relative to now and logging the request. Urgent requests are slotted
// within two hours, everything else the next business day.
type LogContactScheduler struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewLogContactScheduler creates a log-backed contact scheduler
func NewLogContactScheduler(logger *zap.Logger) *LogContactScheduler {
	return &LogContactScheduler{
		logger: logger.Named("contact-scheduler"),
		now:    time.Now,
	}
}

// ScheduleCall implements retention.ContactScheduler
func (s *LogContactScheduler) ScheduleCall(ctx context.Context, req retention.ContactRequest) (*retention.ScheduledContact, error) {
	slot := s.now().Add(24 * time.Hour)
	if req.Urgency == retention.PriorityUrgent {
		slot = s.now().Add(2 * time.Hour)
	}

	ref := uuid.New().String()
	s.logger.Info("concierge call scheduled",
		zap.String("lease_id", req.LeaseID.String()),
		zap.String("urgency", string(req.Urgency)),
		zap.Time("scheduled_at", slot),
		zap.String("reference", ref),
	)

	return &retention.ScheduledContact{
		Reference:   ref,
		ScheduledAt: slot,
	}, nil
}

var _ retention.ContactScheduler = (*LogContactScheduler)(nil)
