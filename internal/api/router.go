package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "subrelay/internal/api/context"
	"subrelay/internal/api/handlers"
	"subrelay/internal/pkg/errors"
)

type Dependencies struct {
	StripeWebhookHandler *handlers.StripeWebhookHandler
	HealthHandler        *handlers.HealthHandler
	MetricsHandler       *handlers.MetricsHandler
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Stripe delivery endpoint
	router.POST("/webhooks/stripe", wrap(deps.StripeWebhookHandler.Receive))

	// Operations
	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Route not found", nil)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	return router
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
