package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
)

// VideoUpload describes an outbound video.
type VideoUpload struct {
	// Source is a local path, or a URL when IsURL is set.
	Source            string
	IsURL             bool
	ThumbPath         string
	Caption           string
	SupportsStreaming bool
	Width             int
	Height            int
	Duration          int
}

// Messenger is the outbound side of the Telegram client.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, path, caption string) error
	SendVideo(ctx context.Context, chatID int64, video VideoUpload) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
	Download(ctx context.Context, fileID, destPath string) error
}

// FileDownloader materializes a Telegram file id to a local path.
type FileDownloader interface {
	Download(ctx context.Context, fileID, destPath string) error
}

// BotAPI is the subset of *tgbotapi.BotAPI the messenger uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// TelegramMessenger implements Messenger over the Bot API.
type TelegramMessenger struct {
	api        BotAPI
	fetcher    RemoteFetcher
	downloader FileDownloader
	logger     *zerolog.Logger
}

var _ Messenger = (*TelegramMessenger)(nil)

// NewMessenger wraps the Bot API. When downloader is nil, files are fetched
// through their Bot API direct URL.
func NewMessenger(api BotAPI, fetcher RemoteFetcher, downloader FileDownloader, logger *zerolog.Logger) *TelegramMessenger {
	return &TelegramMessenger{
		api:        api,
		fetcher:    fetcher,
		downloader: downloader,
		logger:     logger,
	}
}

func (m *TelegramMessenger) SendText(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("%w: send text to chat %d: %w", apperrors.ErrUploadFailed, chatID, err)
	}

	return nil
}

func (m *TelegramMessenger) SendPhoto(_ context.Context, chatID int64, path, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = caption

	if _, err := m.api.Send(photo); err != nil {
		return fmt.Errorf("%w: send photo to chat %d: %w", apperrors.ErrUploadFailed, chatID, err)
	}

	return nil
}

func (m *TelegramMessenger) SendVideo(_ context.Context, chatID int64, video VideoUpload) error {
	var file tgbotapi.RequestFileData = tgbotapi.FilePath(video.Source)
	if video.IsURL {
		file = tgbotapi.FileURL(video.Source)
	}

	cfg := tgbotapi.NewVideo(chatID, file)
	cfg.Caption = video.Caption
	cfg.SupportsStreaming = video.SupportsStreaming
	cfg.Duration = video.Duration

	if video.ThumbPath != "" {
		cfg.Thumb = tgbotapi.FilePath(video.ThumbPath)
	}

	if _, err := m.api.Send(cfg); err != nil {
		return fmt.Errorf("%w: send video to chat %d: %w", apperrors.ErrUploadFailed, chatID, err)
	}

	return nil
}

func (m *TelegramMessenger) SendChatAction(_ context.Context, chatID int64, action string) error {
	if _, err := m.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		return fmt.Errorf("send chat action %s: %w", action, err)
	}

	return nil
}

func (m *TelegramMessenger) Download(ctx context.Context, fileID, destPath string) error {
	if m.downloader != nil {
		if err := m.downloader.Download(ctx, fileID, destPath); err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrDownloadFailed, err)
		}

		return nil
	}

	fileURL, err := m.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("%w: resolve file %s: %w", apperrors.ErrDownloadFailed, fileID, err)
	}

	if err := m.fetcher.Fetch(ctx, fileURL, destPath); err != nil {
		return fmt.Errorf("%w: fetch file %s: %w", apperrors.ErrDownloadFailed, fileID, stripURL(err))
	}

	m.logger.Debug().Str(logFieldFileID, fileID).Str(logFieldPath, destPath).Msg("downloaded via Bot API")

	return nil
}

// stripURL drops the request URL from transport errors; file URLs embed the bot token.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}

	return err
}
