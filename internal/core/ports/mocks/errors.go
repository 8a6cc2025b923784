package mocks

import "errors"

// ErrRepositoryDown is a convenience error for simulating an unreachable backend.
var ErrRepositoryDown = errors.New("repository down")
