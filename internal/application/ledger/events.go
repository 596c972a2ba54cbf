package ledger

import (
	"context"
	"time"

	"bondbook-backend/internal/infrastructure/metrics"

	"github.com/rs/zerolog/log"
)

// Event topics published after a ledger mutation has been persisted.
const (
	EventTransactionStatusChanged = "transaction.status_changed"
	EventInterestDistributed      = "interest.distributed"
	EventAssetCreated             = "asset.created"
	EventContributionSubmitted    = "contribution.submitted"
)

// Event is the envelope written to the event stream.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher delivers ledger events. Publishing is best effort: the ledger
// mutation is already durable when Publish is called.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// PublishTimeout bounds how long Emit waits on the publisher.
var PublishTimeout = 2 * time.Second

// Emit publishes event and logs a failure instead of returning it. The publish
// is cut off after PublishTimeout so a down broker cannot stall the caller.
func Emit(ctx context.Context, pub EventPublisher, event Event) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(event.Type).Inc()
		log.Warn().Err(err).Str("event", event.Type).Msg("ledger event publish failed")
	}
}
