package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	stripe "github.com/stripe/stripe-go/v82"
	"subrelay/internal/engine/webhooks"
	"subrelay/internal/pkg/errors"
)

type EventVerifier interface {
	Verify(payload []byte, header string) (stripe.Event, error)
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, event stripe.Event) (webhooks.Outcome, error)
}

// StripeWebhookHandler receives Stripe deliveries. Only an unauthenticated
// delivery gets a 400; everything past verification is acknowledged with 200
// so Stripe does not retry.
type StripeWebhookHandler struct {
	verifier     EventVerifier
	dispatcher   EventDispatcher
	stats        *webhooks.Stats
	maxBodyBytes int64
}

func NewStripeWebhookHandler(verifier EventVerifier, dispatcher EventDispatcher, stats *webhooks.Stats, maxBodyBytes int64) *StripeWebhookHandler {
	if stats == nil {
		stats = &webhooks.Stats{}
	}
	return &StripeWebhookHandler{
		verifier:     verifier,
		dispatcher:   dispatcher,
		stats:        stats,
		maxBodyBytes: maxBodyBytes,
	}
}

func (h *StripeWebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)

	header := r.Header.Get(webhooks.SignatureHeader)
	if strings.TrimSpace(header) == "" {
		h.stats.Rejected.Add(1)
		logger.Warn().Msg("stripe webhook rejected: no signature header")
		errors.WriteText(w, http.StatusBadRequest, webhooks.ResponseMessage(webhooks.ErrMissingSignature))
		return
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.stats.Rejected.Add(1)
		logger.Warn().Err(err).Msg("stripe webhook body unreadable")
		errors.WriteText(w, http.StatusBadRequest, fmt.Sprintf("Webhook Error: %s", err.Error()))
		return
	}

	event, err := h.verifier.Verify(payload, header)
	if err != nil {
		h.stats.Rejected.Add(1)
		logger.Warn().Err(err).Msg("stripe webhook rejected")
		errors.WriteText(w, http.StatusBadRequest, webhooks.ResponseMessage(err))
		return
	}
	h.stats.Received.Add(1)

	h.process(r.Context(), logger, event)
	errors.WriteText(w, http.StatusOK, "ok")
}

// process logs and discards every failure after verification.
func (h *StripeWebhookHandler) process(ctx context.Context, logger *zerolog.Logger, event stripe.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Str("event_id", event.ID).Interface("panic", rec).Msg("stripe webhook handler panicked")
		}
	}()

	outcome, err := h.dispatcher.Dispatch(ctx, event)
	if err != nil {
		logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("stripe webhook processing failed")
		return
	}
	logger.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Str("outcome", string(outcome)).
		Msg("stripe webhook handled")
}
