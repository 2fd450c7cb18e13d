package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"
	"subrelay/internal/pkg/logger"
	"subrelay/internal/platform/config"
	"subrelay/internal/platform/database"
)

func main() {
	dir := flag.String("dir", "migrations", "Directory holding *.sql migrations")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db, *dir)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	fmt.Printf("Migration completed successfully (%d files)\n", len(applied))
}
