package webhooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

type callLog struct {
	calls   []string
	failErr error
	panicOn string
}

func (c *callLog) handle(name string) error {
	c.calls = append(c.calls, name)
	if c.panicOn == name {
		panic("unexpected nil profile")
	}
	return c.failErr
}

func (c *callLog) CheckoutCompleted(_ context.Context, e CheckoutCompleted) error {
	return c.handle(e.Type())
}

func (c *callLog) SubscriptionUpdated(_ context.Context, e SubscriptionUpdated) error {
	return c.handle(e.Type())
}

func (c *callLog) SubscriptionDeleted(_ context.Context, e SubscriptionDeleted) error {
	return c.handle(e.Type())
}

func (c *callLog) InvoicePaymentFailed(_ context.Context, e InvoicePaymentFailed) error {
	return c.handle(e.Type())
}

func (c *callLog) InvoicePaymentSucceeded(_ context.Context, e InvoicePaymentSucceeded) error {
	return c.handle(e.Type())
}

type recorded struct {
	eventID string
	err     error
}

type memoryRecorder struct {
	entries []recorded
}

func (m *memoryRecorder) Record(_ context.Context, event stripe.Event, processingErr error) {
	m.entries = append(m.entries, recorded{eventID: event.ID, err: processingErr})
}

func TestDispatcher_RoutesEachTypeOnce(t *testing.T) {
	events := map[string]string{
		TypeCheckoutSessionCompleted: `{"id": "cs_1", "client_reference_id": "u1", "customer": "cus_1"}`,
		TypeSubscriptionUpdated:      `{"id": "sub_1", "customer": "cus_1", "status": "active"}`,
		TypeSubscriptionDeleted:      `{"id": "sub_1", "customer": "cus_1"}`,
		TypeInvoicePaymentFailed:     `{"id": "in_1", "customer": "cus_1"}`,
		TypeInvoicePaymentSucceeded:  `{"id": "in_1", "customer": "cus_1"}`,
	}

	for eventType, object := range events {
		t.Run(eventType, func(t *testing.T) {
			handler := &callLog{}
			recorder := &memoryRecorder{}
			d := NewDispatcher(handler, recorder, nil)

			outcome, err := d.Dispatch(context.Background(), stripeEvent(eventType, object))
			require.NoError(t, err)
			assert.Equal(t, OutcomeProcessed, outcome)
			assert.Equal(t, []string{eventType}, handler.calls)
			require.Len(t, recorder.entries, 1)
			assert.NoError(t, recorder.entries[0].err)
			assert.Equal(t, int64(1), d.Stats().Processed.Load())
		})
	}
}

func TestDispatcher_IgnoresUnknownTypes(t *testing.T) {
	handler := &callLog{}
	recorder := &memoryRecorder{}
	d := NewDispatcher(handler, recorder, nil)

	outcome, err := d.Dispatch(context.Background(), stripeEvent("charge.refunded", `{"id": "ch_1"}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Empty(t, handler.calls)
	assert.Empty(t, recorder.entries)
	assert.Equal(t, int64(1), d.Stats().Ignored.Load())
}

func TestDispatcher_ReportsHandlerFailure(t *testing.T) {
	handler := &callLog{failErr: errors.New("update rejected")}
	recorder := &memoryRecorder{}
	d := NewDispatcher(handler, recorder, nil)

	outcome, err := d.Dispatch(context.Background(), stripeEvent(TypeInvoicePaymentFailed, `{"id": "in_1", "customer": "cus_1"}`))
	assert.Equal(t, OutcomeFailed, outcome)
	assert.ErrorIs(t, err, handler.failErr)
	require.Len(t, recorder.entries, 1)
	assert.ErrorIs(t, recorder.entries[0].err, handler.failErr)
	assert.Equal(t, int64(1), d.Stats().Failed.Load())
}

func TestDispatcher_ReportsDecodeFailure(t *testing.T) {
	handler := &callLog{}
	d := NewDispatcher(handler, nil, nil)

	outcome, err := d.Dispatch(context.Background(), stripeEvent(TypeSubscriptionUpdated, `{"id": "sub_1"}`))
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Error(t, err)
	assert.Empty(t, handler.calls)
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	handler := &callLog{panicOn: TypeSubscriptionDeleted}
	d := NewDispatcher(handler, nil, nil)

	outcome, err := d.Dispatch(context.Background(), stripeEvent(TypeSubscriptionDeleted, `{"id": "sub_1", "customer": "cus_1"}`))
	assert.Equal(t, OutcomeFailed, outcome)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected nil profile")
}
