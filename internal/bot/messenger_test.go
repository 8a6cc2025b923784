package bot

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/telegram/mtproto"
)

type fakeBotAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	fileURL  string
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)

	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBotAPI) GetFileDirectURL(string) (string, error) {
	return f.fileURL, nil
}

type fakeDownloader struct {
	called bool
	err    error
}

func (f *fakeDownloader) Download(context.Context, string, string) error {
	f.called = true

	return f.err
}

func TestMessengerSendVideo(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("local file with thumbnail", func(t *testing.T) {
		api := &fakeBotAPI{}
		m := NewMessenger(api, nil, nil, &logger)

		err := m.SendVideo(context.Background(), 1, VideoUpload{
			Source:            "/tmp/v.mp4",
			ThumbPath:         "/thumbs/1.jpg",
			Caption:           MsgVideoCaption,
			SupportsStreaming: true,
			Duration:          3,
		})
		require.NoError(t, err)
		require.Len(t, api.sent, 1)

		cfg, ok := api.sent[0].(tgbotapi.VideoConfig)
		require.True(t, ok)
		assert.Equal(t, tgbotapi.FilePath("/tmp/v.mp4"), cfg.File)
		assert.Equal(t, tgbotapi.FilePath("/thumbs/1.jpg"), cfg.Thumb)
		assert.True(t, cfg.SupportsStreaming)
		assert.Equal(t, 3, cfg.Duration)
		assert.Equal(t, MsgVideoCaption, cfg.Caption)
	})

	t.Run("remote url", func(t *testing.T) {
		api := &fakeBotAPI{}
		m := NewMessenger(api, nil, nil, &logger)

		require.NoError(t, m.SendVideo(context.Background(), 1, VideoUpload{Source: "https://x/v.mp4", IsURL: true}))

		cfg, ok := api.sent[0].(tgbotapi.VideoConfig)
		require.True(t, ok)
		assert.Equal(t, tgbotapi.FileURL("https://x/v.mp4"), cfg.File)
		assert.Nil(t, cfg.Thumb)
	})

	t.Run("send failure is upload failure", func(t *testing.T) {
		api := &fakeBotAPI{sendErr: errors.New("request entity too large")}
		m := NewMessenger(api, nil, nil, &logger)

		err := m.SendVideo(context.Background(), 1, VideoUpload{Source: "/tmp/v.mp4"})
		assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
	})
}

func TestMessengerSendTextAndAction(t *testing.T) {
	logger := zerolog.Nop()
	api := &fakeBotAPI{}
	m := NewMessenger(api, nil, nil, &logger)

	require.NoError(t, m.SendText(context.Background(), 1, MsgThumbSaved))
	require.NoError(t, m.SendChatAction(context.Background(), 1, ChatActionUploadVideo))

	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)

	action, ok := api.requests[0].(tgbotapi.ChatActionConfig)
	require.True(t, ok)
	assert.Equal(t, ChatActionUploadVideo, action.Action)
}

func TestMessengerDownload(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("bot api direct url", func(t *testing.T) {
		api := &fakeBotAPI{fileURL: "https://api.telegram.org/file/botSECRET/videos/1.mp4"}
		fetcher := &fakeFetcher{body: []byte("mp4")}
		m := NewMessenger(api, fetcher, nil, &logger)

		require.NoError(t, m.Download(context.Background(), "file-1", t.TempDir()+"/v.mp4"))
		assert.Equal(t, []string{api.fileURL}, fetcher.calls)
	})

	t.Run("mtproto downloader preferred", func(t *testing.T) {
		api := &fakeBotAPI{}
		fetcher := &fakeFetcher{}
		dl := &fakeDownloader{}
		m := NewMessenger(api, fetcher, dl, &logger)

		require.NoError(t, m.Download(context.Background(), "file-1", t.TempDir()+"/v.mp4"))
		assert.True(t, dl.called)
		assert.Empty(t, fetcher.calls)
	})

	t.Run("fetch error hides token", func(t *testing.T) {
		api := &fakeBotAPI{fileURL: "https://api.telegram.org/file/botSECRET/videos/1.mp4"}
		fetcher := &fakeFetcher{err: &url.Error{Op: "Get", URL: api.fileURL, Err: errors.New("timeout")}}
		m := NewMessenger(api, fetcher, nil, &logger)

		err := m.Download(context.Background(), "file-1", t.TempDir()+"/v.mp4")
		require.ErrorIs(t, err, apperrors.ErrDownloadFailed)
		assert.NotContains(t, err.Error(), "SECRET")
	})

	t.Run("stopped mtproto client does not block", func(t *testing.T) {
		client := mtproto.New(mtproto.Config{}, &logger)

		runCtx, cancel := context.WithCancel(context.Background())
		cancel()

		_ = client.Run(runCtx)

		m := NewMessenger(nil, nil, client, &logger)

		errCh := make(chan error, 1)

		go func() {
			errCh <- m.Download(context.WithoutCancel(context.Background()), "file-1", t.TempDir()+"/v.mp4")
		}()

		select {
		case err := <-errCh:
			require.ErrorIs(t, err, apperrors.ErrDownloadFailed)
			assert.ErrorIs(t, err, mtproto.ErrClientStopped)
		case <-time.After(5 * time.Second):
			t.Fatal("Download blocked on a stopped MTProto client")
		}
	})
}
