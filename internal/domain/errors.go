package domain

import "errors"

var (
	// ErrNotConfigured means a feature is disabled by missing configuration.
	ErrNotConfigured = errors.New("not configured")
	// ErrPermissionDenied means the sender may not use an admin-only command.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEmptyPrompt means a required prompt was empty.
	ErrEmptyPrompt = errors.New("empty prompt")
)
