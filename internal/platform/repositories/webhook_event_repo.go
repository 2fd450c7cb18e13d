package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"subrelay/internal/platform/models"
)

type WebhookEventRepository struct {
	db *sql.DB
}

func NewWebhookEventRepository(db *sql.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	if event.ID == "" {
		event.ID = "whe_" + uuid.New().String()
	}
	if event.ReceivedAt == 0 {
		event.ReceivedAt = time.Now().Unix()
	}

	var processingError sql.NullString
	if event.ProcessingError != "" {
		processingError = sql.NullString{String: event.ProcessingError, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stripe_webhook_events (id, stripe_event_id, event_type, payload, processing_error, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.StripeEventID, event.EventType, event.Payload, processingError, event.ReceivedAt)
	return err
}

// ListByStripeEventID returns every recorded delivery of one Stripe event,
// oldest first. Replays are stored as separate rows.
func (r *WebhookEventRepository) ListByStripeEventID(ctx context.Context, stripeEventID string) ([]*models.WebhookEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, stripe_event_id, event_type, payload, processing_error, received_at
		FROM stripe_webhook_events WHERE stripe_event_id = $1 ORDER BY received_at ASC
	`, stripeEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.WebhookEvent
	for rows.Next() {
		var e models.WebhookEvent
		var processingError sql.NullString
		if err := rows.Scan(&e.ID, &e.StripeEventID, &e.EventType, &e.Payload, &processingError, &e.ReceivedAt); err != nil {
			return nil, err
		}
		e.ProcessingError = processingError.String
		events = append(events, &e)
	}
	return events, rows.Err()
}

// DeleteOlderThan removes audit rows received before cutoff (unix seconds).
func (r *WebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stripe_webhook_events WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
