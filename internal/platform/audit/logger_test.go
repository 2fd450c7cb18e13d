package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"subrelay/internal/platform/models"
)

type memoryEvents struct {
	rows     []*models.WebhookEvent
	failWith error
}

func (m *memoryEvents) Create(_ context.Context, event *models.WebhookEvent) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.rows = append(m.rows, event)
	return nil
}

func TestLogger_Record(t *testing.T) {
	store := &memoryEvents{}
	logger := NewLogger(store)
	logger.now = func() time.Time { return time.Unix(1700000000, 0) }

	event := stripe.Event{
		ID:   "evt_1",
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"sub_1"}`)},
	}
	logger.Record(context.Background(), event, errors.New("update rejected"))

	require.Len(t, store.rows, 1)
	row := store.rows[0]
	assert.Equal(t, "evt_1", row.StripeEventID)
	assert.Equal(t, "customer.subscription.deleted", row.EventType)
	assert.Equal(t, `{"id":"sub_1"}`, row.Payload)
	assert.Equal(t, "update rejected", row.ProcessingError)
	assert.Equal(t, int64(1700000000), row.ReceivedAt)
}

func TestLogger_RecordFailureIsDropped(t *testing.T) {
	store := &memoryEvents{failWith: errors.New("disk full")}
	logger := NewLogger(store)

	assert.NotPanics(t, func() {
		logger.Record(context.Background(), stripe.Event{ID: "evt_1"}, nil)
	})
	assert.Empty(t, store.rows)
}
