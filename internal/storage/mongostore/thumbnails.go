// Package mongostore stores thumbnail records in a MongoDB collection keyed by user id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/lueurxax/thumb-bot/internal/core/domain"
	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/core/ports"
)

const (
	fieldUserID    = "user_id"
	fieldThumbPath = "thumb_path"
	fieldUpdatedAt = "updated_at"

	connectTimeout = 10 * time.Second
)

// Compile-time assertion that *Repository implements ports.ThumbnailRepository.
var _ ports.ThumbnailRepository = (*Repository)(nil)

type thumbDocument struct {
	UserID    int64     `bson:"user_id"`
	ThumbPath string    `bson:"thumb_path"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Repository is a MongoDB-backed thumbnail repository.
type Repository struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *zerolog.Logger
}

// Connect opens a client for uri, verifies it with a ping and ensures the
// unique user_id index exists.
func Connect(ctx context.Context, uri, database, collection string, logger *zerolog.Logger) (*Repository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongo: %w", apperrors.ErrStorageUnavailable, err)
	}

	r := &Repository{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}

	if err := r.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)

		return nil, err
	}

	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)

		return nil, err
	}

	logger.Info().Str("database", database).Str("collection", collection).Msg("Connected to MongoDB")

	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldUserID, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%w: create user_id index: %w", apperrors.ErrStorageUnavailable, err)
	}

	return nil
}

// GetThumbnail returns the record for userID or errors.ErrNotFound.
func (r *Repository) GetThumbnail(ctx context.Context, userID int64) (*domain.ThumbnailRecord, error) {
	var doc thumbDocument

	err := r.coll.FindOne(ctx, bson.D{{Key: fieldUserID, Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: find thumbnail %d: %w", apperrors.ErrStorageUnavailable, userID, err)
	}

	return &domain.ThumbnailRecord{
		UserID:    doc.UserID,
		ThumbPath: doc.ThumbPath,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// UpsertThumbnail creates the document or replaces its path.
func (r *Repository) UpsertThumbnail(ctx context.Context, userID int64, path string) error {
	filter := bson.D{{Key: fieldUserID, Value: userID}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldThumbPath, Value: path},
		{Key: fieldUpdatedAt, Value: time.Now().UTC()},
	}}}

	if _, err := r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return fmt.Errorf("%w: upsert thumbnail %d: %w", apperrors.ErrStorageUnavailable, userID, err)
	}

	return nil
}

// DeleteThumbnail removes the document for userID if present.
func (r *Repository) DeleteThumbnail(ctx context.Context, userID int64) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: fieldUserID, Value: userID}}); err != nil {
		return fmt.Errorf("%w: delete thumbnail %d: %w", apperrors.ErrStorageUnavailable, userID, err)
	}

	return nil
}

// Ping checks the primary is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: ping mongo: %w", apperrors.ErrStorageUnavailable, err)
	}

	return nil
}

// Close disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}

	return nil
}
