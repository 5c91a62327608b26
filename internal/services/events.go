package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/types"
)

const publishTimeout = 5 * time.Second

// EventPublisher is the subset of the message queue used to emit domain events.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Events publishes domain events after successful mutations. Publishing is
// best-effort: failures are logged and never surface to the caller. A nil
// *Events is valid and publishes nothing.
type Events struct {
	publisher EventPublisher
	channel   string
	now       func() time.Time
}

func NewEvents(publisher EventPublisher, channel string) *Events {
	return &Events{publisher: publisher, channel: channel, now: time.Now}
}

func (e *Events) emit(ctx context.Context, event types.Event) {
	if e == nil || e.publisher == nil {
		return
	}
	event.OccurredAt = e.now().UTC()

	log := logging.FromContext(ctx).
		WithField("event_type", event.Type).
		WithField("user_id", event.UserID)

	data, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("encode event failed")
		return
	}

	// Detached from the request so a client disconnect does not drop the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	attrs := map[string]string{"type": string(event.Type), "content-type": "application/json"}
	if _, err := e.publisher.Publish(ctx, e.channel, data, attrs); err != nil {
		log.WithError(err).Warn("publish event failed")
		return
	}
	log.Debug("event published")
}
