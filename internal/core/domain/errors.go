package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("operation not allowed in current state")
	ErrIneligibleDonor = errors.New("donor is not eligible to donate")
	ErrValidation      = errors.New("validation failed")
	ErrInternalServer  = errors.New("internal server error")
)

// Specific errors wrap the taxonomy sentinels above so callers can
// match either the broad class or the exact condition with errors.Is.
var (
	ErrRequestNotFound  = fmt.Errorf("blood request %w", ErrNotFound)
	ErrRequestExpired   = fmt.Errorf("blood request has expired: %w", ErrInvalidState)
	ErrDonationNotFound = fmt.Errorf("donation record %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrNotADonor        = fmt.Errorf("%w: user is not a donor", ErrValidation)
)

// User errors
var (
	ErrUserAlreadyExists = errors.New("user already exists")
)
