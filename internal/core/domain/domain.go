package domain

import "time"

// ThumbnailRecord maps a user to the file holding their current thumbnail.
// There is at most one record per user.
type ThumbnailRecord struct {
	UserID    int64
	ThumbPath string
	UpdatedAt time.Time
}
