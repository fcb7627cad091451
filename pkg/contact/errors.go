package contact

import "errors"

var (
	// ErrStoreDisabled is returned when no database path was configured.
	ErrStoreDisabled = errors.New("contact store is disabled")

	// ErrInvalidSubmission is returned when a submission fails validation.
	ErrInvalidSubmission = errors.New("invalid contact submission")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("database error")
)
