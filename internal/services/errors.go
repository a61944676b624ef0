package services

import "errors"

// Error taxonomy. Validation errors surface synchronously to the caller of
// payment creation; integrity and not-found errors terminate webhook
// processing before any ledger write.
var (
	ErrInvalidAmount        = errors.New("amount must be a positive number")
	ErrMissingUserID        = errors.New("user id is required")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrFaceMismatch         = errors.New("face does not match")
	ErrFaceLoginUnavailable = errors.New("face login is not configured")
)
