package tempdir

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()

	logger := zerolog.Nop()

	return New(t.TempDir(), &logger)
}

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestNewPath(t *testing.T) {
	d := newTestDir(t)

	tests := []struct {
		ext    string
		suffix string
	}{
		{ext: ".mp4", suffix: ".mp4"},
		{ext: "jpg", suffix: ".jpg"},
		{ext: "", suffix: ""},
	}

	for _, tt := range tests {
		p := d.NewPath(tt.ext)

		assert.Equal(t, d.Root(), filepath.Dir(p))
		assert.True(t, strings.HasSuffix(p, tt.suffix))
	}

	assert.NotEqual(t, d.NewPath(".mp4"), d.NewPath(".mp4"))
}

func TestRemove(t *testing.T) {
	d := newTestDir(t)

	p := d.NewPath(".mp4")
	touch(t, p, time.Now())

	d.Remove(p)

	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	assert.NotPanics(t, func() {
		d.Remove(p)
		d.Remove("")
	})
}

func TestSweep(t *testing.T) {
	d := newTestDir(t)
	now := time.Now()

	stale := filepath.Join(d.Root(), "stale.mp4")
	fresh := filepath.Join(d.Root(), "fresh.mp4")

	touch(t, stale, now.Add(-2*time.Hour))
	touch(t, fresh, now)
	require.NoError(t, os.Mkdir(filepath.Join(d.Root(), "sub"), 0o755))

	n, err := d.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(fresh)
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(d.Root(), "sub"))
	assert.NoError(t, err)
}

func TestSweep_MissingRoot(t *testing.T) {
	logger := zerolog.Nop()
	d := New(filepath.Join(t.TempDir(), "absent"), &logger)

	n, err := d.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunJanitor_SweepsOnStart(t *testing.T) {
	d := newTestDir(t)

	stale := filepath.Join(d.Root(), "stale.mp4")
	touch(t, stale, time.Now().Add(-2*time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := d.RunJanitor(ctx, time.Hour, time.Hour)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureDir(t *testing.T) {
	logger := zerolog.Nop()
	root := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, New(root, &logger).EnsureDir())

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
