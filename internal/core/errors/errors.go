// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Storage errors.
var (
	// ErrStorageUnavailable indicates the persistence layer could not be reached
	// or rejected the operation. It is never retried locally.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")
)

// Media errors.
var (
	// ErrMediaUnavailable indicates an expected photo or video is absent,
	// or its stored file is missing from disk.
	ErrMediaUnavailable = errors.New("media unavailable")

	// ErrDecodeFailed indicates an image could not be decoded or re-encoded.
	ErrDecodeFailed = errors.New("image decode failed")
)

// Platform I/O errors.
var (
	// ErrDownloadFailed indicates a file could not be materialized from the platform.
	ErrDownloadFailed = errors.New("download failed")

	// ErrUploadFailed indicates a file could not be sent to the platform.
	ErrUploadFailed = errors.New("upload failed")
)

// Validation errors.
var (
	// ErrInvalidInput indicates a user-supplied value, such as a remote URL,
	// was rejected before any I/O.
	ErrInvalidInput = errors.New("invalid input")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
