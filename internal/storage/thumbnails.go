package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/thumb-bot/internal/core/domain"
	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/core/ports"
)

// Compile-time assertion that *DB implements ports.ThumbnailRepository.
var _ ports.ThumbnailRepository = (*DB)(nil)

const (
	getThumbnailSQL = `SELECT user_id, thumb_path, updated_at FROM thumbnails WHERE user_id = $1`

	upsertThumbnailSQL = `
INSERT INTO thumbnails (user_id, thumb_path, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE
SET thumb_path = EXCLUDED.thumb_path, updated_at = EXCLUDED.updated_at`

	deleteThumbnailSQL = `DELETE FROM thumbnails WHERE user_id = $1`
)

// GetThumbnail returns the record for userID or errors.ErrNotFound.
func (db *DB) GetThumbnail(ctx context.Context, userID int64) (*domain.ThumbnailRecord, error) {
	var rec domain.ThumbnailRecord

	err := db.Pool.QueryRow(ctx, getThumbnailSQL, userID).Scan(&rec.UserID, &rec.ThumbPath, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: get thumbnail %d: %w", apperrors.ErrStorageUnavailable, userID, err)
	}

	return &rec, nil
}

// UpsertThumbnail creates the record or replaces its path.
func (db *DB) UpsertThumbnail(ctx context.Context, userID int64, path string) error {
	if _, err := db.Pool.Exec(ctx, upsertThumbnailSQL, userID, path); err != nil {
		return fmt.Errorf("%w: upsert thumbnail %d: %w", apperrors.ErrStorageUnavailable, userID, err)
	}

	return nil
}

// DeleteThumbnail removes the record for userID if present.
func (db *DB) DeleteThumbnail(ctx context.Context, userID int64) error {
	if _, err := db.Pool.Exec(ctx, deleteThumbnailSQL, userID); err != nil {
		return fmt.Errorf("%w: delete thumbnail %d: %w", apperrors.ErrStorageUnavailable, userID, err)
	}

	return nil
}
