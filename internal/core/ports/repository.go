// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing business logic to remain independent of infrastructure concerns.
package ports

import (
	"context"

	"github.com/lueurxax/thumb-bot/internal/core/domain"
)

// ThumbnailReader provides read access to thumbnail records.
type ThumbnailReader interface {
	// GetThumbnail returns the record for userID, or errors.ErrNotFound.
	GetThumbnail(ctx context.Context, userID int64) (*domain.ThumbnailRecord, error)
}

// ThumbnailWriter provides write access to thumbnail records.
type ThumbnailWriter interface {
	// UpsertThumbnail creates the record or replaces its path.
	UpsertThumbnail(ctx context.Context, userID int64, path string) error
	// DeleteThumbnail removes the record. Deleting a missing record is not an error.
	DeleteThumbnail(ctx context.Context, userID int64) error
}

// ThumbnailRepository combines thumbnail read and write operations with
// connection lifecycle.
type ThumbnailRepository interface {
	ThumbnailReader
	ThumbnailWriter
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
