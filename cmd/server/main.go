package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"subrelay/internal/api"
	"subrelay/internal/api/handlers"
	"subrelay/internal/api/middleware"
	"subrelay/internal/engine/notify"
	"subrelay/internal/engine/subscriptions"
	"subrelay/internal/engine/webhooks"
	"subrelay/internal/pkg/logger"
	"subrelay/internal/platform/audit"
	"subrelay/internal/platform/config"
	"subrelay/internal/platform/database"
	"subrelay/internal/platform/repositories"
	"subrelay/internal/platform/stripeapi"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	// Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	profileRepo := repositories.NewProfileRepository(db)
	eventRepo := repositories.NewWebhookEventRepository(db)

	// Services
	stats := &webhooks.Stats{}
	mailer := notify.NewResendMailer(cfg.Resend.APIKey, cfg.Resend.Endpoint, cfg.Notify.From, cfg.Notify.To,
		&http.Client{Timeout: 10 * time.Second})
	customers := stripeapi.NewCustomers(cfg.Stripe.SecretKey)
	relay := subscriptions.NewRelay(profileRepo, mailer, customers, stats)
	dispatcher := webhooks.NewDispatcher(relay, audit.NewLogger(eventRepo), stats)

	// Handlers
	router := api.NewRouter(&api.Dependencies{
		StripeWebhookHandler: handlers.NewStripeWebhookHandler(webhooks.NewVerifier(cfg.Stripe.WebhookSecret), dispatcher, stats, cfg.Webhooks.MaxBodyBytes),
		HealthHandler:        handlers.NewHealthHandler(db),
		MetricsHandler:       handlers.NewMetricsHandler(stats),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logging(log.Logger)(middleware.Recover(router)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
