package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"subrelay/internal/engine/webhooks"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name       string
		ping       error
		wantCode   int
		wantStatus string
	}{
		{name: "healthy", wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "database down", ping: errors.New("connection refused"), wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(pingFunc(func(context.Context) error { return tt.ping }))
			rec := httptest.NewRecorder()
			h.Check(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Contains(t, body.Checks, "database")
		})
	}
}

func TestHealthHandler_WithSQLite(t *testing.T) {
	db := openTestDB(t)
	h := NewHealthHandler(db)
	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandler_Export(t *testing.T) {
	stats := &webhooks.Stats{}
	stats.Received.Add(3)
	stats.Rejected.Add(1)
	stats.NotificationsFailed.Add(2)

	rec := httptest.NewRecorder()
	NewMetricsHandler(stats).Export(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "subrelay_up 1\n")
	assert.Contains(t, body, `subrelay_webhooks_total{outcome="received"} 3`)
	assert.Contains(t, body, `subrelay_webhooks_total{outcome="rejected"} 1`)
	assert.Contains(t, body, `subrelay_webhooks_total{outcome="processed"} 0`)
	assert.Contains(t, body, `subrelay_notifications_total{result="failed"} 2`)
}
