// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires the thumbnail store, image processor, Telegram messenger
// and background workers together:
//
//   - Bot: long-polls Telegram and dispatches each message through the router
//   - Janitor: periodically sweeps stale temp files
//   - MTProto: optional large-file downloader logged in as the bot
//   - Metrics: optional /metrics, /healthz and /readyz server
package app

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lueurxax/thumb-bot/internal/bot"
	"github.com/lueurxax/thumb-bot/internal/core/fetch"
	"github.com/lueurxax/thumb-bot/internal/core/ports"
	"github.com/lueurxax/thumb-bot/internal/core/thumbs"
	"github.com/lueurxax/thumb-bot/internal/media/thumbnail"
	"github.com/lueurxax/thumb-bot/internal/platform/config"
	"github.com/lueurxax/thumb-bot/internal/platform/observability"
	"github.com/lueurxax/thumb-bot/internal/platform/tempdir"
	db "github.com/lueurxax/thumb-bot/internal/storage"
	"github.com/lueurxax/thumb-bot/internal/storage/mongostore"
	"github.com/lueurxax/thumb-bot/internal/telegram/mtproto"
)

const errBotInit = "bot initialization failed: %w"

const logFieldBackend = "backend"

// App holds the application dependencies.
type App struct {
	cfg    *config.Config
	repo   ports.ThumbnailRepository
	store  *thumbs.Store
	logger *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, repo ports.ThumbnailRepository, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		repo:   repo,
		store:  thumbs.NewStore(repo, cfg.ThumbsDir),
		logger: logger,
	}
}

// OpenRepository connects to the backend MONGO_URL points at. PostgreSQL
// schemas are migrated before returning.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (ports.ThumbnailRepository, error) {
	backend, err := cfg.StorageBackend()
	if err != nil {
		return nil, err
	}

	logger.Info().Str(logFieldBackend, backend).Msg("Connecting to storage")

	if backend == config.BackendPostgres {
		poolOpts := db.PoolOptions{
			MaxConns:          cfg.DBMaxConnections,
			MinConns:          cfg.DBMinConnections,
			MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
			MaxConnLifetime:   cfg.DBMaxConnLifetime,
			HealthCheckPeriod: cfg.DBHealthCheckPeriod,
		}

		database, err := db.NewWithOptions(ctx, cfg.MongoURL, poolOpts, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		if err := database.Migrate(ctx); err != nil {
			_ = database.Close(ctx)

			return nil, fmt.Errorf("run migrations: %w", err)
		}

		return database, nil
	}

	repo, err := mongostore.Connect(ctx, cfg.MongoURL, cfg.DBName, cfg.DBCollection, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	return repo, nil
}

// StartMetricsServer serves /healthz, /readyz and /metrics when METRICS_PORT is set.
func (a *App) StartMetricsServer(ctx context.Context) error {
	if a.cfg.MetricsPort == 0 {
		return nil
	}

	return observability.NewServer(a.store, a.cfg.MetricsPort, a.logger).Start(ctx)
}

// RunBot runs the bot until ctx is canceled.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot")

	if err := a.store.EnsureDir(); err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	temp := tempdir.New(a.cfg.TempDir, a.logger)
	if err := temp.EnsureDir(); err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	api, err := tgbotapi.NewBotAPI(a.cfg.BotToken)
	if err != nil {
		return fmt.Errorf("creating bot API: %w", err)
	}

	a.logger.Info().Str("username", api.Self.UserName).Msg("Authorized on Bot API")

	go a.runJanitor(ctx, temp)

	fetcher := fetch.NewFetcher(a.cfg.RemoteFetchRPS, a.cfg.RemoteFetchTimeout, a.cfg.RemoteFetchMaxBytes)

	var downloader bot.FileDownloader
	if a.cfg.MTProtoDownloads {
		downloader = a.startMTProto(ctx)
	}

	router := bot.NewRouter(bot.Deps{
		Messenger: bot.NewMessenger(api, fetcher, downloader, a.logger),
		Store:     a.store,
		Processor: thumbnail.NewProcessor(a.cfg.ThumbMaxWidth, a.cfg.ThumbMaxHeight, a.cfg.ThumbJPEGQuality),
		Fetcher:   fetcher,
		Temp:      temp,
		Logger:    a.logger,
	})

	if err := bot.New(a.cfg, api, router, a.logger).Run(ctx); err != nil {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

func (a *App) runJanitor(ctx context.Context, temp *tempdir.Dir) {
	err := temp.RunJanitor(ctx, a.cfg.TempSweepInterval, a.cfg.TempMaxAge)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Msg("temp janitor stopped")
	}
}

func (a *App) startMTProto(ctx context.Context) *mtproto.Client {
	client := mtproto.New(mtproto.Config{
		APIID:       a.cfg.APIID,
		APIHash:     a.cfg.APIHash,
		BotToken:    a.cfg.BotToken,
		SessionPath: a.cfg.TGSessionPath,
	}, a.logger)

	go func() {
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("MTProto client stopped")
		}
	}()

	return client
}

// Close releases the repository connection.
func (a *App) Close(ctx context.Context) error {
	if err := a.repo.Close(ctx); err != nil {
		return fmt.Errorf("close repository: %w", err)
	}

	return nil
}
