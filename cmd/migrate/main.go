package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/floorboard/internal/config"
	"github.com/Rrens/floorboard/internal/logging"
	"github.com/Rrens/floorboard/internal/repository/postgres"
)

func main() {
	direction := flag.String("direction", postgres.Up, "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply, 0 for all")
	source := flag.String("source", "file://migrations", "migration source URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logging.Setup(cfg.Logging, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("direction", *direction).
		Int("steps", *steps).
		Msg("Running migrations")

	if err := postgres.RunMigrations(cfg.Database.DSN(), *source, *direction, *steps); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		closer.Close()
		os.Exit(1)
	}
}
