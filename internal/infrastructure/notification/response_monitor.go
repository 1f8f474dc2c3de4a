package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
)

// RecordingResponseMonitor implements retention.ResponseMonitor over an
// in-process record of tenant engagement events. Deployments with a real
// engagement feed (email opens, portal logins) push signals in through
// Record; monitoring steps then observe them on resume. With no recorded
// signal a window reads as no-response, which is the correct conservative
// branch for escalation.
type RecordingResponseMonitor struct {
	mu      sync.RWMutex
	signals map[uuid.UUID][]recordedSignal
}

type recordedSignal struct {
	at       time.Time
	positive bool
	channel  retention.Channel
}

// NewRecordingResponseMonitor creates an empty response monitor
func NewRecordingResponseMonitor() *RecordingResponseMonitor {
	return &RecordingResponseMonitor{
		signals: make(map[uuid.UUID][]recordedSignal),
	}
}

// Record registers a tenant engagement event for a lease
func (m *RecordingResponseMonitor) Record(leaseID uuid.UUID, at time.Time, positive bool, channel retention.Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[leaseID] = append(m.signals[leaseID], recordedSignal{
		at:       at,
		positive: positive,
		channel:  channel,
	})
}

// CheckResponse implements retention.ResponseMonitor. It reports the most
// recent signal at or after since, or a no-response signal when none exists.
func (m *RecordingResponseMonitor) CheckResponse(ctx context.Context, leaseID uuid.UUID, since time.Time) (*retention.ResponseSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *recordedSignal
	for i := range m.signals[leaseID] {
		s := m.signals[leaseID][i]
		if s.at.Before(since) {
			continue
		}
		if latest == nil || s.at.After(latest.at) {
			latest = &s
		}
	}

	if latest == nil {
		return &retention.ResponseSignal{Responded: false}, nil
	}

	at := latest.at
	return &retention.ResponseSignal{
		Responded:   true,
		Positive:    latest.positive,
		Channel:     latest.channel,
		RespondedAt: &at,
	}, nil
}

var _ retention.ResponseMonitor = (*RecordingResponseMonitor)(nil)
