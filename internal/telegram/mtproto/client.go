// Package mtproto downloads bot media over MTProto, bypassing the Bot API file
// size cap. It logs in as the bot with BOT_TOKEN and resolves Bot API file ids.
package mtproto

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gotd/td/fileid"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
)

const dirPerm = 0o755

// ErrUnsupportedFileID indicates a file id that carries no downloadable location.
var ErrUnsupportedFileID = errors.New("file id has no input location")

// ErrClientStopped indicates Run has returned and the client can no longer download.
var ErrClientStopped = errors.New("mtproto client stopped")

// Config holds MTProto credentials.
type Config struct {
	APIID       int
	APIHash     string
	BotToken    string
	SessionPath string
}

// Client is single-use: once Run returns, every pending and later Download fails.
type Client struct {
	cfg    Config
	logger *zerolog.Logger

	ready     chan struct{}
	readyOnce sync.Once
	api       *tg.Client

	stopped  chan struct{}
	stopOnce sync.Once
	stopErr  error
}

func New(cfg Config, logger *zerolog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		logger:  logger,
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run connects, authorizes as the bot and blocks until ctx is canceled or the
// connection fails.
func (c *Client) Run(ctx context.Context) (err error) {
	defer func() { c.stop(err) }()

	client := telegram.NewClient(c.cfg.APIID, c.cfg.APIHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{
			Path: c.cfg.SessionPath,
		},
	})

	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("mtproto auth status: %w", err)
		}

		if !status.Authorized {
			if _, err := client.Auth().Bot(ctx, c.cfg.BotToken); err != nil {
				return fmt.Errorf("mtproto bot login: %w", err)
			}
		}

		c.api = client.API()
		c.readyOnce.Do(func() { close(c.ready) })

		c.logger.Info().Msg("MTProto client authorized")

		<-ctx.Done()

		return ctx.Err()
	})
}

func (c *Client) stop(err error) {
	c.stopOnce.Do(func() {
		if err == nil {
			err = ErrClientStopped
		} else {
			err = fmt.Errorf("%w: %w", ErrClientStopped, err)
		}

		c.stopErr = err
		close(c.stopped)
	})
}

// Download fetches the file behind a Bot API file id into destPath.
// It blocks until the client is authorized, Run returns or ctx is done.
func (c *Client) Download(ctx context.Context, fileID, destPath string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for mtproto: %w", apperrors.ErrDownloadFailed, ctx.Err())
	case <-c.stopped:
		return fmt.Errorf("%w: %w", apperrors.ErrDownloadFailed, c.stopErr)
	case <-c.ready:
	}

	// ready stays closed after a disconnect
	select {
	case <-c.stopped:
		return fmt.Errorf("%w: %w", apperrors.ErrDownloadFailed, c.stopErr)
	default:
	}

	decoded, err := fileid.DecodeFileID(fileID)
	if err != nil {
		return fmt.Errorf("%w: decode file id: %w", apperrors.ErrDownloadFailed, err)
	}

	loc, ok := decoded.AsInputFileLocation()
	if !ok {
		return fmt.Errorf("%w: %w", apperrors.ErrDownloadFailed, ErrUnsupportedFileID)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), dirPerm); err != nil {
		return fmt.Errorf("%w: create dir: %w", apperrors.ErrDownloadFailed, err)
	}

	if _, err := downloader.NewDownloader().Download(c.api, loc).ToPath(ctx, destPath); err != nil {
		_ = os.Remove(destPath)

		return fmt.Errorf("%w: mtproto download: %w", apperrors.ErrDownloadFailed, err)
	}

	c.logger.Debug().Str("file_id", fileID).Str("path", destPath).Msg("downloaded via MTProto")

	return nil
}
