package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dafibh/nexus/nexus-backend/internal/config"
	"github.com/dafibh/nexus/nexus-backend/internal/migrate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	databaseURL, err := config.LoadDatabaseURL()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runner, err := migrate.New(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure migration runner")
	}

	switch *command {
	case "up":
		err = runner.Ensure(ctx)
	case "status":
		err = runner.Status(ctx)
	case "down":
		err = runner.Down(ctx, *target)
	default:
		log.Fatal().Str("command", *command).Msg("Unsupported command")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration command failed")
	}

	log.Info().Str("command", *command).Msg("Migration command completed")
}
