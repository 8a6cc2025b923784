// Package repotest holds behavior checks shared by every ports.ThumbnailRepository
// implementation. Backends that need a live server gate themselves on an
// environment variable and skip under -short.
package repotest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/core/ports"
)

// LiveURL returns the value of env or skips the test when it is unset or
// the run is -short.
func LiveURL(t *testing.T, env string) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping live storage test in short mode")
	}

	url := os.Getenv(env)
	if url == "" {
		t.Skipf("%s not set", env)
	}

	return url
}

// UserID returns an id unlikely to collide with rows left by earlier runs.
func UserID() int64 {
	return time.Now().UnixNano()
}

// RunThumbnailRepository exercises get, upsert and delete against repo using
// userID, removing the record on cleanup.
func RunThumbnailRepository(t *testing.T, repo ports.ThumbnailRepository, userID int64) {
	t.Helper()

	ctx := context.Background()

	t.Cleanup(func() {
		_ = repo.DeleteThumbnail(context.Background(), userID)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, repo.Ping(ctx))
	})

	t.Run("get unknown user", func(t *testing.T) {
		rec, err := repo.GetThumbnail(ctx, userID)

		require.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NotErrorIs(t, err, apperrors.ErrStorageUnavailable)
		assert.Nil(t, rec)
	})

	t.Run("upsert then get", func(t *testing.T) {
		require.NoError(t, repo.UpsertThumbnail(ctx, userID, "thumbs/first.jpg"))

		rec, err := repo.GetThumbnail(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, rec.UserID)
		assert.Equal(t, "thumbs/first.jpg", rec.ThumbPath)
	})

	t.Run("upsert replaces path", func(t *testing.T) {
		require.NoError(t, repo.UpsertThumbnail(ctx, userID, "thumbs/second.jpg"))
		require.NoError(t, repo.UpsertThumbnail(ctx, userID, "thumbs/second.jpg"))

		rec, err := repo.GetThumbnail(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "thumbs/second.jpg", rec.ThumbPath)
	})

	t.Run("other users untouched", func(t *testing.T) {
		_, err := repo.GetThumbnail(ctx, userID+1)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteThumbnail(ctx, userID))

		_, err := repo.GetThumbnail(ctx, userID)
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		require.NoError(t, repo.DeleteThumbnail(ctx, userID), "deleting a missing record")
	})
}
