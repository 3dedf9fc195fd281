package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Property errors
	ErrPropertyNotFound = errors.New("property not found")

	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingConflict   = errors.New("booking conflict")
	ErrDuplicateBooking  = errors.New("duplicate booking")
	ErrInvalidStayRange  = errors.New("invalid stay range")
	ErrInvalidGuestCount = errors.New("invalid guest count")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrForbidden         = errors.New("actor not allowed to act on booking")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyKeyReused   = errors.New("idempotency key reused with different request")
	ErrBookingInProgress      = errors.New("booking request in progress")
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")

	// Store errors
	ErrStoreUnavailable        = errors.New("reservation store unavailable")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
