package bot

import "context"

// ThumbnailStore defines the thumbnail operations required by the handlers.
type ThumbnailStore interface {
	Lookup(ctx context.Context, userID int64) (string, error)
	Save(ctx context.Context, userID int64, path string) error
	Delete(ctx context.Context, userID int64) error
	Path(userID int64) string
}

// Normalizer rewrites an image file in place to fit thumbnail constraints.
type Normalizer interface {
	Normalize(path string) error
}

// RemoteFetcher streams a URL into a local file.
type RemoteFetcher interface {
	Fetch(ctx context.Context, rawURL, destPath string) error
}

// TempFiles hands out per-message scratch paths.
type TempFiles interface {
	NewPath(ext string) string
	Remove(path string)
}
