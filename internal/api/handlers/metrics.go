package handlers

import (
	"fmt"
	"net/http"

	"subrelay/internal/engine/webhooks"
)

// MetricsHandler exposes webhook counters in the Prometheus text format.
type MetricsHandler struct {
	stats *webhooks.Stats
}

func NewMetricsHandler(stats *webhooks.Stats) *MetricsHandler {
	return &MetricsHandler{stats: stats}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP subrelay_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE subrelay_up gauge\n")
	fmt.Fprintf(w, "subrelay_up 1\n")

	fmt.Fprintf(w, "# HELP subrelay_webhooks_total Stripe deliveries by outcome\n")
	fmt.Fprintf(w, "# TYPE subrelay_webhooks_total counter\n")
	for _, c := range []struct {
		outcome string
		value   int64
	}{
		{"received", h.stats.Received.Load()},
		{"rejected", h.stats.Rejected.Load()},
		{"processed", h.stats.Processed.Load()},
		{"ignored", h.stats.Ignored.Load()},
		{"failed", h.stats.Failed.Load()},
	} {
		fmt.Fprintf(w, "subrelay_webhooks_total{outcome=%q} %d\n", c.outcome, c.value)
	}

	fmt.Fprintf(w, "# HELP subrelay_notifications_total Operator e-mails by result\n")
	fmt.Fprintf(w, "# TYPE subrelay_notifications_total counter\n")
	fmt.Fprintf(w, "subrelay_notifications_total{result=\"sent\"} %d\n", h.stats.NotificationsSent.Load())
	fmt.Fprintf(w, "subrelay_notifications_total{result=\"failed\"} %d\n", h.stats.NotificationsFailed.Load())
}
