package webhooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	stripe "github.com/stripe/stripe-go/v82"
)

// Handler acts on each decoded event shape.
type Handler interface {
	CheckoutCompleted(ctx context.Context, e CheckoutCompleted) error
	SubscriptionUpdated(ctx context.Context, e SubscriptionUpdated) error
	SubscriptionDeleted(ctx context.Context, e SubscriptionDeleted) error
	InvoicePaymentFailed(ctx context.Context, e InvoicePaymentFailed) error
	InvoicePaymentSucceeded(ctx context.Context, e InvoicePaymentSucceeded) error
}

// Recorder keeps an audit trail of handled deliveries.
type Recorder interface {
	Record(ctx context.Context, event stripe.Event, processingErr error)
}

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeFailed    Outcome = "failed"
)

// Dispatcher routes a verified event to exactly one Handler method.
type Dispatcher struct {
	handler  Handler
	recorder Recorder
	stats    *Stats
}

// NewDispatcher builds a dispatcher. recorder and stats may be nil.
func NewDispatcher(handler Handler, recorder Recorder, stats *Stats) *Dispatcher {
	if stats == nil {
		stats = &Stats{}
	}
	return &Dispatcher{handler: handler, recorder: recorder, stats: stats}
}

func (d *Dispatcher) Stats() *Stats {
	return d.stats
}

// Dispatch never retries. A returned error means the event was recognized but
// its handling failed; unknown types are reported as OutcomeIgnored.
func (d *Dispatcher) Dispatch(ctx context.Context, event stripe.Event) (Outcome, error) {
	decoded, err := Decode(event)
	if errors.Is(err, ErrUnhandledEvent) {
		d.stats.Ignored.Add(1)
		log.Info().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("stripe webhook ignored (unhandled type)")
		return OutcomeIgnored, nil
	}

	if err == nil {
		err = d.route(ctx, decoded)
	}

	if d.recorder != nil {
		d.recorder.Record(ctx, event, err)
	}

	if err != nil {
		d.stats.Failed.Add(1)
		return OutcomeFailed, err
	}
	d.stats.Processed.Add(1)
	return OutcomeProcessed, nil
}

func (d *Dispatcher) route(ctx context.Context, decoded Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while handling %s: %v", decoded.Type(), r)
		}
	}()

	switch e := decoded.(type) {
	case CheckoutCompleted:
		return d.handler.CheckoutCompleted(ctx, e)
	case SubscriptionUpdated:
		return d.handler.SubscriptionUpdated(ctx, e)
	case SubscriptionDeleted:
		return d.handler.SubscriptionDeleted(ctx, e)
	case InvoicePaymentFailed:
		return d.handler.InvoicePaymentFailed(ctx, e)
	case InvoicePaymentSucceeded:
		return d.handler.InvoicePaymentSucceeded(ctx, e)
	default:
		return fmt.Errorf("%w: %s", ErrUnhandledEvent, decoded.Type())
	}
}
