package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexUnavailable indicates the persisted retrieval index is
	// missing or corrupt; callers recover by rebuilding
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrMailboxUnavailable indicates the mailbox could not be reached
	// or authentication failed
	ErrMailboxUnavailable = errors.New("mailbox unavailable")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
