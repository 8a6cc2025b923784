// Package thumbnail normalizes user-supplied images into video thumbnails.
package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support

	apperrors "github.com/lueurxax/thumb-bot/internal/core/errors"
)

const (
	// DefaultMaxWidth and DefaultMaxHeight bound a video thumbnail.
	DefaultMaxWidth  = 320
	DefaultMaxHeight = 180

	// DefaultJPEGQuality is used when no quality is configured.
	DefaultJPEGQuality = 90

	tempPattern = ".normalize-*.jpg"
)

// Processor fits images inside a bounding box and re-encodes them as JPEG.
type Processor struct {
	maxWidth  int
	maxHeight int
	quality   int
}

// NewProcessor creates a processor. Non-positive arguments fall back to defaults.
func NewProcessor(maxWidth, maxHeight, quality int) *Processor {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}

	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	return &Processor{maxWidth: maxWidth, maxHeight: maxHeight, quality: quality}
}

// Normalize rewrites the image at path in place: EXIF orientation applied,
// alpha flattened onto white, fitted inside the bounding box and saved as JPEG.
// On failure the original file is left untouched and the error wraps
// errors.ErrDecodeFailed.
func (p *Processor) Normalize(path string) error {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", apperrors.ErrDecodeFailed, path, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return fmt.Errorf("%w: empty image %s", apperrors.ErrDecodeFailed, path)
	}

	w, h := FitSize(bounds.Dx(), bounds.Dy(), p.maxWidth, p.maxHeight)

	var resized image.Image = src
	if w != bounds.Dx() || h != bounds.Dy() {
		resized = imaging.Resize(src, w, h, imaging.Lanczos)
	}

	canvas := imaging.New(w, h, color.White)
	flat := imaging.Overlay(canvas, resized, image.Pt(0, 0), 1.0)

	if err := p.writeJPEG(path, flat); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrDecodeFailed, err)
	}

	return nil
}

// writeJPEG encodes to a sibling temp file and renames it over path.
func (p *Processor) writeJPEG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, img, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("encode jpeg: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

// FitSize returns the largest size with the aspect ratio of w×h that fits
// inside maxW×maxH. Images that already fit are returned unchanged; no
// dimension is ever reduced below one pixel.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	srcRatio := float64(w) / float64(h)
	boxRatio := float64(maxW) / float64(maxH)

	var newW, newH int

	if srcRatio > boxRatio {
		newW = maxW
		newH = int(float64(maxW)/srcRatio + 0.5)
	} else {
		newH = maxH
		newW = int(float64(maxH)*srcRatio + 0.5)
	}

	return max(1, min(newW, maxW)), max(1, min(newH, maxH))
}
