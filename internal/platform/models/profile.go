package models

// Subscription statuses stored on a profile. Stripe's "canceled" is stored as
// StatusExpired once the subscription is deleted.
const (
	StatusTrialing = "trialing"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusUnpaid   = "unpaid"
	StatusExpired  = "expired"
)

type Profile struct {
	ID                   string  `json:"id"`
	FirstName            string  `json:"first_name,omitempty"`
	Email                string  `json:"email,omitempty"`
	StripeCustomerID     string  `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string  `json:"stripe_subscription_id,omitempty"`
	SubscriptionStatus   string  `json:"subscription_status,omitempty"`
	SubscriptionPlan     *string `json:"subscription_plan,omitempty"`
	TrialStartedAt       *int64  `json:"trial_started_at,omitempty"`
	UpdatedAt            int64   `json:"updated_at"`
}

// TrialStart is the set of fields written when a checkout completes.
type TrialStart struct {
	UserID               string
	StripeCustomerID     string
	StripeSubscriptionID string
	StartedAt            int64
}
