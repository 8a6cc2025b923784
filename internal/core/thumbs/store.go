// Package thumbs owns the per-user thumbnail association.
//
// The Store is the only component that talks to the thumbnail repository.
// It treats the on-disk file as part of a record's validity: a record whose
// file has vanished is reported as absent, never as a storage failure.
package thumbs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
	"github.com/lueurxax/thumb-bot/internal/core/ports"
)

const (
	thumbExt     = ".jpg"
	thumbDirPerm = 0o755
)

// Store maps users to thumbnail files.
type Store struct {
	repo ports.ThumbnailRepository
	dir  string
}

// NewStore creates a store keeping thumbnail files under dir.
func NewStore(repo ports.ThumbnailRepository, dir string) *Store {
	return &Store{repo: repo, dir: dir}
}

// EnsureDir creates the thumbnail directory if needed.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, thumbDirPerm); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	return nil
}

// Path returns the canonical thumbnail file for a user.
func (s *Store) Path(userID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(userID, 10)+thumbExt)
}

// Lookup returns the user's thumbnail path. A missing record or a recorded
// file that no longer exists is reported as ErrMediaUnavailable.
func (s *Store) Lookup(ctx context.Context, userID int64) (string, error) {
	rec, err := s.repo.GetThumbnail(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: no thumbnail for user %d", apperrors.ErrMediaUnavailable, userID)
		}

		return "", storageErr("get thumbnail", err)
	}

	if rec.ThumbPath == "" || !fileExists(rec.ThumbPath) {
		return "", fmt.Errorf("%w: thumbnail file %q missing", apperrors.ErrMediaUnavailable, rec.ThumbPath)
	}

	return rec.ThumbPath, nil
}

// Save upserts the user's thumbnail path.
func (s *Store) Save(ctx context.Context, userID int64, path string) error {
	if err := s.repo.UpsertThumbnail(ctx, userID, path); err != nil {
		return storageErr("save thumbnail", err)
	}

	return nil
}

// Delete removes the user's thumbnail file, if any, and the record.
// Deleting a user without a thumbnail is not an error.
func (s *Store) Delete(ctx context.Context, userID int64) error {
	rec, err := s.repo.GetThumbnail(ctx, userID)

	switch {
	case err == nil:
		removeFile(rec.ThumbPath)
	case apperrors.Is(err, apperrors.ErrNotFound):
	default:
		return storageErr("get thumbnail", err)
	}

	// the canonical file may exist without a record after a failed save
	removeFile(s.Path(userID))

	if err := s.repo.DeleteThumbnail(ctx, userID); err != nil {
		return storageErr("delete thumbnail", err)
	}

	return nil
}

// Ping checks the repository connection and that the thumbnail directory exists.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return storageErr("ping", err)
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return storageErr("stat thumbnail dir", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", apperrors.ErrStorageUnavailable, s.dir)
	}

	return nil
}

func storageErr(op string, err error) error {
	if apperrors.Is(err, apperrors.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStorageUnavailable, err)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func removeFile(path string) {
	if path == "" {
		return
	}

	//nolint:errcheck // missing file is the expected case
	_ = os.Remove(path)
}
