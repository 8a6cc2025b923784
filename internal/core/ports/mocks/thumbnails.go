package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/lueurxax/thumb-bot/internal/core/domain"
	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
)

// ThumbnailRepository is a thread-safe in-memory implementation of ports.ThumbnailRepository.
type ThumbnailRepository struct {
	mu      sync.RWMutex
	records map[int64]domain.ThumbnailRecord

	// GetThumbnailFn allows overriding GetThumbnail behavior.
	GetThumbnailFn func(ctx context.Context, userID int64) (*domain.ThumbnailRecord, error)

	// UpsertThumbnailFn allows overriding UpsertThumbnail behavior.
	UpsertThumbnailFn func(ctx context.Context, userID int64, path string) error

	// DeleteThumbnailFn allows overriding DeleteThumbnail behavior.
	DeleteThumbnailFn func(ctx context.Context, userID int64) error

	// PingFn allows overriding Ping behavior.
	PingFn func(ctx context.Context) error
}

// NewThumbnailRepository creates a new mock thumbnail repository.
func NewThumbnailRepository() *ThumbnailRepository {
	return &ThumbnailRepository{
		records: make(map[int64]domain.ThumbnailRecord),
	}
}

// GetThumbnail returns the stored record or errors.ErrNotFound.
func (r *ThumbnailRepository) GetThumbnail(ctx context.Context, userID int64) (*domain.ThumbnailRecord, error) {
	if r.GetThumbnailFn != nil {
		return r.GetThumbnailFn(ctx, userID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return &rec, nil
}

// UpsertThumbnail creates or replaces the record.
func (r *ThumbnailRepository) UpsertThumbnail(ctx context.Context, userID int64, path string) error {
	if r.UpsertThumbnailFn != nil {
		return r.UpsertThumbnailFn(ctx, userID, path)
	}

	r.Set(userID, path)

	return nil
}

// DeleteThumbnail removes the record if present.
func (r *ThumbnailRepository) DeleteThumbnail(ctx context.Context, userID int64) error {
	if r.DeleteThumbnailFn != nil {
		return r.DeleteThumbnailFn(ctx, userID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, userID)

	return nil
}

// Ping reports the mock as reachable unless overridden.
func (r *ThumbnailRepository) Ping(ctx context.Context) error {
	if r.PingFn != nil {
		return r.PingFn(ctx)
	}

	return nil
}

// Close does nothing.
func (r *ThumbnailRepository) Close(_ context.Context) error {
	return nil
}

// Set stores a record directly.
func (r *ThumbnailRepository) Set(userID int64, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[userID] = domain.ThumbnailRecord{
		UserID:    userID,
		ThumbPath: path,
		UpdatedAt: time.Now(),
	}
}

// Len returns the number of stored records.
func (r *ThumbnailRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}
