package dto

import "errors"

var (
	ErrQuotaExceeded    = errors.New("price check quota exceeded")
	ErrAlreadyRunning   = errors.New("a price check batch is already running for this owner")
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrLockLost         = errors.New("batch lock is no longer held")
	ErrPersistConflict  = errors.New("post was modified concurrently")
	ErrPostClosed       = errors.New("post is closed")
	ErrPostNotFound     = errors.New("post not found")
	ErrBatchNotFound    = errors.New("batch result not found")
	ErrEmptySelection   = errors.New("at least one post must be selected")
	ErrInvalidScope     = errors.New("invalid recipient scope")
	ErrNoRecipient      = errors.New("recipient has no telegram chat")
	ErrNotifierDisabled = errors.New("telegram notifier is not configured")
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
