package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"subrelay/internal/pkg/logger"
	"subrelay/internal/platform/config"
	"subrelay/internal/platform/database"
	"subrelay/internal/platform/repositories"
	"subrelay/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Dur("retention", cfg.Webhooks.EventRetention).
		Dur("interval", cfg.Webhooks.SweepInterval).
		Msg("Starting subrelay background workers")

	workers.RunWebhookEventPruner(ctx, repositories.NewWebhookEventRepository(db), cfg.Webhooks.EventRetention, cfg.Webhooks.SweepInterval)

	log.Info().Msg("Workers stopped")
}
