package webhooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
)

const (
	TypeCheckoutSessionCompleted = "checkout.session.completed"
	TypeSubscriptionUpdated      = "customer.subscription.updated"
	TypeSubscriptionDeleted      = "customer.subscription.deleted"
	TypeInvoicePaymentFailed     = "invoice.payment_failed"
	TypeInvoicePaymentSucceeded  = "invoice.payment_succeeded"
)

var ErrUnhandledEvent = errors.New("unhandled event type")

// Event is one of the decoded payload shapes below.
type Event interface {
	Type() string
}

type CheckoutCompleted struct {
	EventID        string
	UserID         string // client_reference_id, may be empty
	CustomerID     string
	SubscriptionID string
	Email          string
}

type SubscriptionUpdated struct {
	EventID      string
	CustomerID   string
	Status       string
	PlanNickname string
}

type SubscriptionDeleted struct {
	EventID    string
	CustomerID string
}

type InvoicePaymentFailed struct {
	EventID    string
	CustomerID string
}

type InvoicePaymentSucceeded struct {
	EventID    string
	CustomerID string
}

func (CheckoutCompleted) Type() string       { return TypeCheckoutSessionCompleted }
func (SubscriptionUpdated) Type() string     { return TypeSubscriptionUpdated }
func (SubscriptionDeleted) Type() string     { return TypeSubscriptionDeleted }
func (InvoicePaymentFailed) Type() string    { return TypeInvoicePaymentFailed }
func (InvoicePaymentSucceeded) Type() string { return TypeInvoicePaymentSucceeded }

// Decode narrows a verified Stripe event into its typed shape. Types this
// relay does not act on return ErrUnhandledEvent.
func Decode(event stripe.Event) (Event, error) {
	eventType := string(event.Type)
	switch eventType {
	case TypeCheckoutSessionCompleted, TypeSubscriptionUpdated, TypeSubscriptionDeleted,
		TypeInvoicePaymentFailed, TypeInvoicePaymentSucceeded:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEvent, eventType)
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("decode %s: missing data.object", eventType)
	}
	raw := event.Data.Raw

	switch eventType {
	case TypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout.session: %w", err)
		}
		// customer is null for sessions that never created one
		out := CheckoutCompleted{
			EventID:    event.ID,
			UserID:     strings.TrimSpace(session.ClientReferenceID),
			CustomerID: customerIDOf(session.Customer),
			Email:      session.CustomerEmail,
		}
		if session.Subscription != nil {
			out.SubscriptionID = session.Subscription.ID
		}
		if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
			out.Email = session.CustomerDetails.Email
		}
		return out, nil

	case TypeSubscriptionUpdated, TypeSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		customerID := customerIDOf(sub.Customer)
		if customerID == "" {
			return nil, fmt.Errorf("decode subscription: missing customer")
		}
		if eventType == TypeSubscriptionDeleted {
			return SubscriptionDeleted{EventID: event.ID, CustomerID: customerID}, nil
		}
		if sub.Status == "" {
			return nil, fmt.Errorf("decode subscription: missing status")
		}
		return SubscriptionUpdated{
			EventID:      event.ID,
			CustomerID:   customerID,
			Status:       string(sub.Status),
			PlanNickname: planNickname(&sub),
		}, nil

	default:
		var invoice stripe.Invoice
		if err := json.Unmarshal(raw, &invoice); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		customerID := customerIDOf(invoice.Customer)
		if customerID == "" {
			return nil, fmt.Errorf("decode invoice: missing customer")
		}
		if eventType == TypeInvoicePaymentFailed {
			return InvoicePaymentFailed{EventID: event.ID, CustomerID: customerID}, nil
		}
		return InvoicePaymentSucceeded{EventID: event.ID, CustomerID: customerID}, nil
	}
}

func customerIDOf(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.ID)
}

// planNickname reads the nickname of the first item's price, if any.
func planNickname(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	item := sub.Items.Data[0]
	if item == nil || item.Price == nil {
		return ""
	}
	return strings.TrimSpace(item.Price.Nickname)
}
