// Package tempdir hands out unique scratch file paths for in-flight media and
// sweeps files that outlived their handler.
package tempdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/thumb-bot/internal/platform/observability"
	"github.com/lueurxax/thumb-bot/internal/platform/worker"
)

const dirPerm = 0o755

type Dir struct {
	root   string
	logger *zerolog.Logger
	now    func() time.Time
}

func New(root string, logger *zerolog.Logger) *Dir {
	return &Dir{root: root, logger: logger, now: time.Now}
}

// Root returns the directory all paths live under.
func (d *Dir) Root() string {
	return d.root
}

// EnsureDir creates the root directory if needed.
func (d *Dir) EnsureDir() error {
	if err := os.MkdirAll(d.root, dirPerm); err != nil {
		return fmt.Errorf("create temp dir %s: %w", d.root, err)
	}

	return nil
}

// NewPath returns a fresh path under the root. ext may be given with or without
// the leading dot; an empty ext yields no extension.
func (d *Dir) NewPath(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return filepath.Join(d.root, uuid.NewString()+ext)
}

// Remove deletes path, ignoring files that are already gone.
func (d *Dir) Remove(path string) {
	if path == "" {
		return
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		d.logger.Warn().Err(err).Str("path", path).Msg("failed to remove temp file")
	}
}

// Sweep removes regular files under the root not modified within olderThan.
func (d *Dir) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("read temp dir %s: %w", d.root, err)
	}

	cutoff := d.now().Add(-olderThan)
	removed := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(d.root, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			d.logger.Warn().Err(err).Str("path", path).Msg("failed to sweep temp file")

			continue
		}

		removed++
	}

	return removed, nil
}

// RunJanitor sweeps stale files every interval until ctx is canceled.
func (d *Dir) RunJanitor(ctx context.Context, interval, maxAge time.Duration) error {
	return worker.TickerLoop(ctx, worker.TickerConfig{
		Name:       "temp-janitor",
		Interval:   interval,
		RunOnStart: true,
		Logger:     d.logger,
		OnTick: func(context.Context) {
			n, err := d.Sweep(maxAge)
			if err != nil {
				d.logger.Warn().Err(err).Msg("temp sweep failed")

				return
			}

			if n > 0 {
				observability.TempFilesSwept.Add(float64(n))
				d.logger.Info().Int("removed", n).Msg("swept stale temp files")
			}
		},
	})
}
