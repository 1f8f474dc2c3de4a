package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polarisaistudio/tenant-prediction/internal/domain/retention"
	"github.com/polarisaistudio/tenant-prediction/internal/domain/shared"
)

// LogNotifier implements retention.Notifier by writing structured log
// entries. It stands in for the email/SMS gateway in development and
// single-tenant deployments; the provider reference it returns is a
// generated UUID so downstream audit records stay uniform.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// Send implements retention.Notifier
func (n *LogNotifier) Send(ctx context.Context, notification retention.Notification) (*retention.DeliveryResult, error) {
	if notification.Recipient == "" {
		return nil, fmt.Errorf("%w: notification has no recipient", shared.ErrActionDelivery)
	}
	if notification.Template == "" {
		return nil, fmt.Errorf("%w: notification has no template", shared.ErrActionDelivery)
	}

	ref := uuid.New().String()
	n.logger.Info("notification delivered",
		zap.String("channel", string(notification.Channel)),
		zap.String("template", notification.Template),
		zap.String("recipient", notification.Recipient),
		zap.String("provider_ref", ref),
		zap.Any("data", notification.Data),
	)

	return &retention.DeliveryResult{
		Channel:     notification.Channel,
		Template:    notification.Template,
		ProviderRef: ref,
		DeliveredAt: time.Now(),
	}, nil
}

var _ retention.Notifier = (*LogNotifier)(nil)
