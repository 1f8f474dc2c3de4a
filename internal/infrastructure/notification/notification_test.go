package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

func TestLogNotifier_Send(t *testing.T) {
	notifier := NewLogNotifier(zap.NewNop())
	ctx := context.Background()

	t.Run("delivers and returns provider reference", func(t *testing.T) {
		result, err := notifier.Send(ctx, retention.Notification{
			Channel:   retention.ChannelEmail,
			Template:  "retention_offer",
			Recipient: "tenant@example.com",
			Data:      map[string]interface{}{"discount_pct": 5},
		})
		require.NoError(t, err)
		assert.Equal(t, retention.ChannelEmail, result.Channel)
		assert.Equal(t, "retention_offer", result.Template)
		assert.NotEmpty(t, result.ProviderRef)
		assert.WithinDuration(t, time.Now(), result.DeliveredAt, time.Second)
	})

	t.Run("missing recipient fails delivery", func(t *testing.T) {
		_, err := notifier.Send(ctx, retention.Notification{
			Channel:  retention.ChannelEmail,
			Template: "retention_offer",
		})
		assert.ErrorIs(t, err, shared.ErrActionDelivery)
	})

	t.Run("missing template fails delivery", func(t *testing.T) {
		_, err := notifier.Send(ctx, retention.Notification{
			Channel:   retention.ChannelEmail,
			Recipient: "tenant@example.com",
		})
		assert.ErrorIs(t, err, shared.ErrActionDelivery)
	})
}

func TestLogContactScheduler_ScheduleCall(t *testing.T) {
	scheduler := NewLogContactScheduler(zap.NewNop())
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduler.now = func() time.Time { return base }

	t.Run("urgent requests get a same-day slot", func(t *testing.T) {
		contact, err := scheduler.ScheduleCall(context.Background(), retention.ContactRequest{
			LeaseID: uuid.New(),
			Urgency: retention.PriorityUrgent,
		})
		require.NoError(t, err)
		assert.Equal(t, base.Add(2*time.Hour), contact.ScheduledAt)
		assert.NotEmpty(t, contact.Reference)
	})

	t.Run("normal requests get a next-day slot", func(t *testing.T) {
		contact, err := scheduler.ScheduleCall(context.Background(), retention.ContactRequest{
			LeaseID: uuid.New(),
			Urgency: retention.PriorityNormal,
		})
		require.NoError(t, err)
		assert.Equal(t, base.Add(24*time.Hour), contact.ScheduledAt)
	})
}

func TestRecordingResponseMonitor(t *testing.T) {
	ctx := context.Background()

	t.Run("no signal reads as no-response", func(t *testing.T) {
		monitor := NewRecordingResponseMonitor()
		signal, err := monitor.CheckResponse(ctx, uuid.New(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.False(t, signal.Responded)
	})

	t.Run("signal inside window is reported", func(t *testing.T) {
		monitor := NewRecordingResponseMonitor()
		leaseID := uuid.New()
		since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		at := since.Add(12 * time.Hour)

		monitor.Record(leaseID, at, true, retention.ChannelEmail)

		signal, err := monitor.CheckResponse(ctx, leaseID, since)
		require.NoError(t, err)
		assert.True(t, signal.Responded)
		assert.True(t, signal.Positive)
		assert.Equal(t, retention.ChannelEmail, signal.Channel)
		require.NotNil(t, signal.RespondedAt)
		assert.Equal(t, at, *signal.RespondedAt)
	})

	t.Run("signal before window is ignored", func(t *testing.T) {
		monitor := NewRecordingResponseMonitor()
		leaseID := uuid.New()
		since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		monitor.Record(leaseID, since.Add(-time.Hour), true, retention.ChannelSMS)

		signal, err := monitor.CheckResponse(ctx, leaseID, since)
		require.NoError(t, err)
		assert.False(t, signal.Responded)
	})

	t.Run("latest of several signals wins", func(t *testing.T) {
		monitor := NewRecordingResponseMonitor()
		leaseID := uuid.New()
		since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		monitor.Record(leaseID, since.Add(time.Hour), false, retention.ChannelEmail)
		monitor.Record(leaseID, since.Add(3*time.Hour), true, retention.ChannelInternal)

		signal, err := monitor.CheckResponse(ctx, leaseID, since)
		require.NoError(t, err)
		assert.True(t, signal.Responded)
		assert.True(t, signal.Positive)
		assert.Equal(t, retention.ChannelInternal, signal.Channel)
	})
}
