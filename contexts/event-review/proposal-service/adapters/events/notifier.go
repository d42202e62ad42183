package eventsadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	notificationsv1 "papercall/contracts/gen/notifications/v1"
	"papercall/contexts/event-review/proposal-service/ports"
	"papercall/internal/platform/messaging"
	sharedevents "papercall/internal/shared/events"

	"github.com/google/uuid"
)

const notificationsTopic = "papercall.notifications.v1"

// Notifier hands speaker notifications to the delivery runtime over the
// message bus, wrapped in the versioned notification contract.
type Notifier struct {
	bus           *messaging.Bus
	sourceService string
	logger        *slog.Logger
}

func NewNotifier(bus *messaging.Bus, sourceService string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		bus:           bus,
		sourceService: sourceService,
		logger:        logger,
	}
}

func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	data, err := json.Marshal(notification.Payload)
	if err != nil {
		return err
	}
	envelope := notificationsv1.Envelope{
		NotificationID: uuid.NewString(),
		Template:       notification.Template,
		Recipients:     notification.Recipients,
		SourceService:  n.sourceService,
		OccurredAt:     time.Now().UTC(),
		SchemaVersion:  1,
		Data:           data,
	}

	err = n.bus.Publish(ctx, notificationsTopic, sharedevents.Envelope{
		EventID:       envelope.NotificationID,
		EventType:     "notification.requested",
		SourceService: n.sourceService,
		OccurredAtUTC: envelope.OccurredAt,
		EntityType:    "notification",
		EntityID:      envelope.NotificationID,
		Payload:       envelope,
	})
	if err != nil {
		return err
	}

	n.logger.Debug("notification dispatched",
		"event", "notification_dispatched",
		"module", "event-review/proposal-service",
		"layer", "adapters",
		"template", notification.Template,
		"recipients", len(notification.Recipients),
	)
	return nil
}
