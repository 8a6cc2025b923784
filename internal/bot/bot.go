package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/platform/config"
	"github.com/lueurxax/thumb-bot/internal/platform/observability"
	"github.com/lueurxax/thumb-bot/internal/platform/worker"
)

const defaultMaxConcurrentHandlers = 8

// Error kinds for the handler error metric.
const (
	errKindStorage  = "storage"
	errKindDownload = "download"
	errKindUpload   = "upload"
	errKindOther    = "other"
)

// UpdateSource yields Telegram updates. *tgbotapi.BotAPI implements it.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	cfg    *config.Config
	api    UpdateSource
	router *Router
	logger *zerolog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

func New(cfg *config.Config, api UpdateSource, router *Router, logger *zerolog.Logger) *Bot {
	limit := cfg.MaxConcurrentHandlers
	if limit <= 0 {
		limit = defaultMaxConcurrentHandlers
	}

	return &Bot{
		cfg:    cfg,
		api:    api,
		router: router,
		logger: logger,
		sem:    make(chan struct{}, limit),
	}
}

// Run polls for updates until ctx is canceled, then waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)

	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()

			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if update.Message == nil {
				continue
			}

			b.dispatch(ctx, fromTelegram(update.Message))
		}
	}
}

// dispatch runs msg on its own goroutine once a handler slot is free.
func (b *Bot) dispatch(ctx context.Context, msg InboundMessage) {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	b.wg.Add(1)

	go func() {
		defer b.wg.Done()
		defer func() { <-b.sem }()

		// a started handler runs to completion even during shutdown
		b.handleMessage(context.WithoutCancel(ctx), msg)
	}()
}

// handleMessage is the per-message wrapper: allowlist, dispatch, panic
// recovery, error logging and metrics. Errors never reach the user.
func (b *Bot) handleMessage(ctx context.Context, msg InboundMessage) {
	defer worker.RecoverPanic(b.logger, "handle message")

	if msg.UserID == 0 {
		return
	}

	if !b.cfg.IsAllowed(msg.UserID) {
		b.logger.Warn().Int64(LogFieldUserID, msg.UserID).Msg("Unauthorized access attempt")

		return
	}

	name := b.router.Match(msg)
	if name == "" {
		return
	}

	b.logger.Info().Str(LogFieldRoute, name).Int64(LogFieldUserID, msg.UserID).Msg("Handling message")

	start := time.Now()
	_, err := b.router.Dispatch(ctx, msg)

	observability.MessagesHandled.WithLabelValues(name).Inc()
	observability.HandlerDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.HandlerErrors.WithLabelValues(name, errorKind(err)).Inc()
		b.logger.Error().Err(err).Str(LogFieldRoute, name).Int64(LogFieldUserID, msg.UserID).Msg("message handler failed")
	}
}

func errorKind(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrStorageUnavailable):
		return errKindStorage
	case apperrors.Is(err, apperrors.ErrDownloadFailed):
		return errKindDownload
	case apperrors.Is(err, apperrors.ErrUploadFailed):
		return errKindUpload
	default:
		return errKindOther
	}
}
