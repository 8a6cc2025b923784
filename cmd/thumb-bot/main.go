package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/thumb-bot/internal/app"
	"github.com/lueurxax/thumb-bot/internal/platform/config"
	"github.com/lueurxax/thumb-bot/internal/platform/observability"
)

const closeTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start health probe in background
	go func() {
		if err := observability.NewTCPProbe(cfg.HealthPort, &logger).Start(ctx); err != nil {
			logger.Error().Err(err).Msg("health probe error")
		}
	}()

	repo, err := app.OpenRepository(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	application := app.New(cfg, repo, &logger)

	go func() {
		if err := application.StartMetricsServer(ctx); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	runErr := application.RunBot(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := application.Close(closeCtx); err != nil {
		logger.Error().Err(err).Msg("failed to close storage")
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Info().Msg("application stopped")

			return
		}

		logger.Fatal().Err(runErr).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
