package models

// WebhookEvent is an audit row for a verified Stripe delivery.
type WebhookEvent struct {
	ID              string `json:"id"`
	StripeEventID   string `json:"stripe_event_id"`
	EventType       string `json:"event_type"`
	Payload         string `json:"payload"`
	ProcessingError string `json:"processing_error,omitempty"`
	ReceivedAt      int64  `json:"received_at"`
}
