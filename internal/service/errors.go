package service

import "errors"

var (
	// ErrNotConfigured means a required gateway credential is missing.
	ErrNotConfigured = errors.New("payment provider not configured")
	ErrPhotoNotFound = errors.New("photo not found")
	ErrInvalidPrice  = errors.New("invalid price")
)
