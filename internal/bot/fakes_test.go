package bot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/core/ports/mocks"
	"github.com/lueurxax/thumb-bot/internal/core/thumbs"
	"github.com/lueurxax/thumb-bot/internal/media/thumbnail"
	"github.com/lueurxax/thumb-bot/internal/platform/tempdir"
)

type sentPhoto struct {
	chatID  int64
	path    string
	caption string
}

type sentVideo struct {
	chatID int64
	video  VideoUpload
	// sourceExisted records whether a local source was on disk at send time.
	sourceExisted bool
}

type fakeMessenger struct {
	mu sync.Mutex

	files map[string][]byte

	texts   []string
	photos  []sentPhoto
	videos  []sentVideo
	actions []string

	downloads []string

	sendTextFn  func(text string) error
	sendVideoFn func(video VideoUpload) error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{files: make(map[string][]byte)}
}

func (m *fakeMessenger) SendText(_ context.Context, _ int64, text string) error {
	if m.sendTextFn != nil {
		if err := m.sendTextFn(text); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.texts = append(m.texts, text)

	return nil
}

func (m *fakeMessenger) SendPhoto(_ context.Context, chatID int64, path, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.photos = append(m.photos, sentPhoto{chatID: chatID, path: path, caption: caption})

	return nil
}

func (m *fakeMessenger) SendVideo(_ context.Context, chatID int64, video VideoUpload) error {
	existed := false
	if !video.IsURL {
		_, err := os.Stat(video.Source)
		existed = err == nil
	}

	if m.sendVideoFn != nil {
		if err := m.sendVideoFn(video); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.videos = append(m.videos, sentVideo{chatID: chatID, video: video, sourceExisted: existed})

	return nil
}

func (m *fakeMessenger) SendChatAction(_ context.Context, _ int64, action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = append(m.actions, action)

	return nil
}

func (m *fakeMessenger) Download(_ context.Context, fileID, destPath string) error {
	m.mu.Lock()
	data, ok := m.files[fileID]
	m.downloads = append(m.downloads, destPath)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown file %s", apperrors.ErrDownloadFailed, fileID)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(destPath, data, 0o600)
}

func (m *fakeMessenger) sentNothing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.texts) == 0 && len(m.photos) == 0 && len(m.videos) == 0
}

type fakeFetcher struct {
	body  []byte
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL, destPath string) error {
	f.calls = append(f.calls, rawURL)

	if f.err != nil {
		return f.err
	}

	return os.WriteFile(destPath, f.body, 0o600)
}

type testEnv struct {
	router    *Router
	messenger *fakeMessenger
	fetcher   *fakeFetcher
	repo      *mocks.ThumbnailRepository
	store     *thumbs.Store
	temp      *tempdir.Dir
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	root := t.TempDir()

	repo := mocks.NewThumbnailRepository()
	store := thumbs.NewStore(repo, filepath.Join(root, "thumbs"))
	require.NoError(t, store.EnsureDir())

	temp := tempdir.New(filepath.Join(root, "downloads"), &logger)
	require.NoError(t, temp.EnsureDir())

	env := &testEnv{
		messenger: newFakeMessenger(),
		fetcher:   &fakeFetcher{body: pngBytes(t, 64, 64)},
		repo:      repo,
		store:     store,
		temp:      temp,
	}

	env.router = NewRouter(Deps{
		Messenger: env.messenger,
		Store:     store,
		Processor: thumbnail.NewProcessor(0, 0, 0),
		Fetcher:   env.fetcher,
		Temp:      temp,
		Logger:    &logger,
	})

	return env
}

// storeThumb puts a thumbnail file on disk and records it for userID.
func (e *testEnv) storeThumb(t *testing.T, userID int64) string {
	t.Helper()

	path := e.store.Path(userID)
	require.NoError(t, os.WriteFile(path, pngBytes(t, 32, 18), 0o600))
	e.repo.Set(userID, path)

	return path
}

func (e *testEnv) tempFiles(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(e.temp.Root())
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}
