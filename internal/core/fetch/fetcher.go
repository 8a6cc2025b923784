// Package fetch streams remote files to local paths.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
)

// ErrTooManyRedirects indicates too many HTTP redirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// ErrHTTPStatusNotOK indicates an HTTP response with a non-200 status code.
var ErrHTTPStatusNotOK = errors.New("HTTP status not OK")

// ErrTooLarge indicates the body exceeded the configured size cap.
var ErrTooLarge = errors.New("remote file too large")

const (
	defaultFetchTimeoutSeconds = 60
	limiterBurst               = 5
	maxRedirects               = 5
	// ChunkSize is the fixed copy buffer size used while streaming a body to disk.
	ChunkSize = 64 * 1024
	filePerm  = 0o644
)

// Fetcher downloads files over HTTP, rate limited across all callers.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBytes  int64
	userAgent string
}

// NewFetcher creates a fetcher. maxBytes <= 0 disables the size cap.
func NewFetcher(rps float64, timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeoutSeconds * time.Second
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}

				return nil
			},
		},
		limiter:   rate.NewLimiter(limit, limiterBurst),
		maxBytes:  maxBytes,
		userAgent: "ThumbBot/1.0",
	}
}

// Fetch streams rawURL into destPath. On any failure the partial file is removed.
// The caller owns destPath after a successful return.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destPath string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrHTTPStatusNotOK, resp.StatusCode)
	}

	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	return f.writeBody(resp.Body, destPath)
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: parse url: %w", apperrors.ErrInvalidInput, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported url scheme %q", apperrors.ErrInvalidInput, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: url has no host", apperrors.ErrInvalidInput)
	}

	return nil
}

func (f *Fetcher) writeBody(body io.Reader, destPath string) error {
	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	src := body
	if f.maxBytes > 0 {
		// one extra byte tells an exact-size body from an oversized one
		src = io.LimitReader(body, f.maxBytes+1)
	}

	// hide *os.File's ReadFrom so the copy goes through the fixed buffer
	written, copyErr := io.CopyBuffer(struct{ io.Writer }{out}, src, make([]byte, ChunkSize))
	closeErr := out.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("write body: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("close %s: %w", destPath, closeErr)
	case f.maxBytes > 0 && written > f.maxBytes:
		err = fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	if err != nil {
		_ = os.Remove(destPath)

		return err
	}

	return nil
}
