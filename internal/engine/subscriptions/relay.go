package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"subrelay/internal/engine/notify"
	"subrelay/internal/engine/webhooks"
	"subrelay/internal/platform/models"
)

// ProfileStore is the slice of the profiles table the relay writes. Update
// methods report how many rows matched; zero is not an error.
type ProfileStore interface {
	StartTrial(ctx context.Context, t models.TrialStart) (int64, error)
	SetStatusByCustomer(ctx context.Context, customerID, status, plan string) (int64, error)
	RecoverPastDue(ctx context.Context, customerID string) (int64, error)
	FirstNameByCustomer(ctx context.Context, customerID string) (string, error)
}

type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// CustomerDirectory resolves a Stripe customer's e-mail address.
type CustomerDirectory interface {
	Email(ctx context.Context, customerID string) (string, error)
}

// Relay applies Stripe subscription lifecycle events to profiles and sends
// operator notices for trial starts, conversions, failed payments and
// cancellations. Concurrent deliveries for one customer are not serialized;
// the last write wins.
type Relay struct {
	profiles  ProfileStore
	notifier  Notifier
	customers CustomerDirectory
	stats     *webhooks.Stats
	now       func() time.Time
}

// NewRelay wires a relay. customers and stats may be nil.
func NewRelay(profiles ProfileStore, notifier Notifier, customers CustomerDirectory, stats *webhooks.Stats) *Relay {
	if stats == nil {
		stats = &webhooks.Stats{}
	}
	return &Relay{
		profiles:  profiles,
		notifier:  notifier,
		customers: customers,
		stats:     stats,
		now:       time.Now,
	}
}

var _ webhooks.Handler = (*Relay)(nil)

func (r *Relay) CheckoutCompleted(ctx context.Context, e webhooks.CheckoutCompleted) error {
	if e.UserID == "" {
		log.Warn().
			Str("event_id", e.EventID).
			Str("customer_id", e.CustomerID).
			Msg("checkout.session.completed without client_reference_id; profile not linked")
		return nil
	}

	n, err := r.profiles.StartTrial(ctx, models.TrialStart{
		UserID:               e.UserID,
		StripeCustomerID:     e.CustomerID,
		StripeSubscriptionID: e.SubscriptionID,
		StartedAt:            r.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("start trial for user %s: %w", e.UserID, err)
	}
	if n == 0 {
		log.Warn().Str("event_id", e.EventID).Str("user_id", e.UserID).Msg("no profile matched checkout client_reference_id")
	}

	email := e.Email
	if email == "" && e.CustomerID != "" && r.customers != nil {
		email, err = r.customers.Email(ctx, e.CustomerID)
		if err != nil {
			log.Warn().Err(err).Str("customer_id", e.CustomerID).Msg("customer e-mail lookup failed")
		}
	}

	r.notify(ctx, e.EventID, notify.TrialStarted(email, e.UserID, e.CustomerID, e.SubscriptionID))
	return nil
}

func (r *Relay) SubscriptionUpdated(ctx context.Context, e webhooks.SubscriptionUpdated) error {
	n, err := r.profiles.SetStatusByCustomer(ctx, e.CustomerID, e.Status, e.PlanNickname)
	if err != nil {
		return fmt.Errorf("set status %s for customer %s: %w", e.Status, e.CustomerID, err)
	}
	r.warnIfUnmatched(n, e.EventID, e.CustomerID, e.Type())

	switch e.Status {
	case models.StatusPastDue:
		r.notify(ctx, e.EventID, notify.PaymentFailed(e.CustomerID))
	case models.StatusActive:
		r.notify(ctx, e.EventID, notify.TrialConverted(r.firstName(ctx, e.CustomerID), e.CustomerID, e.PlanNickname))
	}
	return nil
}

func (r *Relay) SubscriptionDeleted(ctx context.Context, e webhooks.SubscriptionDeleted) error {
	n, err := r.profiles.SetStatusByCustomer(ctx, e.CustomerID, models.StatusExpired, "")
	if err != nil {
		return fmt.Errorf("expire customer %s: %w", e.CustomerID, err)
	}
	r.warnIfUnmatched(n, e.EventID, e.CustomerID, e.Type())

	r.notify(ctx, e.EventID, notify.SubscriptionCanceled(r.firstName(ctx, e.CustomerID), e.CustomerID))
	return nil
}

func (r *Relay) InvoicePaymentFailed(ctx context.Context, e webhooks.InvoicePaymentFailed) error {
	n, err := r.profiles.SetStatusByCustomer(ctx, e.CustomerID, models.StatusPastDue, "")
	if err != nil {
		return fmt.Errorf("mark customer %s past_due: %w", e.CustomerID, err)
	}
	r.warnIfUnmatched(n, e.EventID, e.CustomerID, e.Type())
	return nil
}

// InvoicePaymentSucceeded only touches profiles currently past_due; routine
// renewals of active subscriptions leave the row as it is.
func (r *Relay) InvoicePaymentSucceeded(ctx context.Context, e webhooks.InvoicePaymentSucceeded) error {
	n, err := r.profiles.RecoverPastDue(ctx, e.CustomerID)
	if err != nil {
		return fmt.Errorf("recover customer %s: %w", e.CustomerID, err)
	}
	if n == 0 {
		log.Debug().Str("event_id", e.EventID).Str("customer_id", e.CustomerID).Msg("payment succeeded for a profile that was not past_due")
	}
	return nil
}

// firstName is best-effort: a failed lookup yields an empty name.
func (r *Relay) firstName(ctx context.Context, customerID string) string {
	name, err := r.profiles.FirstNameByCustomer(ctx, customerID)
	if err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("first name lookup failed")
		return ""
	}
	return name
}

// notify sends once and discards the result after logging it. A delivery
// failure never fails the event.
func (r *Relay) notify(ctx context.Context, eventID string, msg notify.Message) {
	if err := r.notifier.Send(ctx, msg); err != nil {
		r.stats.NotificationsFailed.Add(1)
		log.Error().Err(err).Str("event_id", eventID).Str("subject", msg.Subject).Msg("notification not delivered")
		return
	}
	r.stats.NotificationsSent.Add(1)
}

// Profiles are linked at checkout; later events for a customer whose checkout
// was missed match nothing and are dropped here.
func (r *Relay) warnIfUnmatched(n int64, eventID, customerID, eventType string) {
	if n > 0 {
		return
	}
	log.Warn().
		Str("event_id", eventID).
		Str("customer_id", customerID).
		Str("type", eventType).
		Msg("no profile matched stripe_customer_id; update skipped")
}
