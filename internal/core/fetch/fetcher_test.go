package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
)

const headerUserAgent = "User-Agent"

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		name    string
		rps     float64
		timeout time.Duration
		want    time.Duration
	}{
		{name: "default timeout", rps: 2, timeout: 0, want: defaultFetchTimeoutSeconds * time.Second},
		{name: "custom timeout", rps: 5, timeout: 10 * time.Second, want: 10 * time.Second},
		{name: "negative timeout uses default", rps: 0, timeout: -time.Second, want: defaultFetchTimeoutSeconds * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(tt.rps, tt.timeout, 0)

			require.NotNil(t, f.client)
			require.NotNil(t, f.limiter)
			require.NotEmpty(t, f.userAgent)
			assert.Equal(t, tt.want, f.client.Timeout)
		})
	}
}

func TestFetch_WritesBody(t *testing.T) {
	body := strings.Repeat("chunk-", ChunkSize/3)

	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get(headerUserAgent)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "thumb.jpg")

	require.NoError(t, NewFetcher(0, time.Second, 0).Fetch(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
	assert.NotEmpty(t, gotUA)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing.jpg")

	err := NewFetcher(0, time.Second, 0).Fetch(context.Background(), srv.URL, dest)

	require.ErrorIs(t, err, ErrHTTPStatusNotOK)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "nothing must be written on non-200")
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// chunked response: no Content-Length, cap enforced while streaming
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 4; i++ {
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))

			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "big.bin")

	err := NewFetcher(0, time.Second, 250).Fetch(context.Background(), srv.URL, dest)

	require.ErrorIs(t, err, ErrTooLarge)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "partial file must be removed")
}

func TestFetch_ExactSizeAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("y", 250)))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "exact.bin")

	require.NoError(t, NewFetcher(0, time.Second, 250).Fetch(context.Background(), srv.URL, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, int64(250), info.Size())
}

func TestFetch_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewFetcher(0, time.Second, 0).Fetch(context.Background(), url, filepath.Join(t.TempDir(), "x"))

	assert.Error(t, err)
}

func TestFetch_RejectsInvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "ftp scheme", url: "ftp://example.com/v.mp4"},
		{name: "file scheme", url: "file:///etc/passwd"},
		{name: "no scheme", url: "example.com/v.mp4"},
		{name: "no host", url: "http:///v.mp4"},
		{name: "unparsable", url: "http://%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "x")

			err := NewFetcher(0, time.Second, 0).Fetch(context.Background(), tt.url, dest)

			require.ErrorIs(t, err, apperrors.ErrInvalidInput)

			_, statErr := os.Stat(dest)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFetcher(1, time.Second, 0).Fetch(ctx, "http://127.0.0.1:1/", filepath.Join(t.TempDir(), "x"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_BadDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "no-such-dir", "file")

	assert.Error(t, NewFetcher(0, time.Second, 0).Fetch(context.Background(), srv.URL, dest))
}
