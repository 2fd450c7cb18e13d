package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
	"subrelay/internal/platform/models"
)

type EventStore interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
}

// Logger keeps one stripe_webhook_events row per handled delivery. It is not
// consulted for deduplication.
type Logger struct {
	store EventStore
	now   func() time.Time
}

func NewLogger(store EventStore) *Logger {
	return &Logger{store: store, now: time.Now}
}

// Record is best-effort: write failures are logged and dropped.
func (l *Logger) Record(ctx context.Context, event stripe.Event, processingErr error) {
	entry := &models.WebhookEvent{
		StripeEventID: event.ID,
		EventType:     string(event.Type),
		ReceivedAt:    l.now().Unix(),
	}
	if event.Data != nil {
		entry.Payload = string(event.Data.Raw)
	}
	if processingErr != nil {
		entry.ProcessingError = processingErr.Error()
	}

	if err := l.store.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Str("type", entry.EventType).Msg("failed to record webhook event")
	}
}
