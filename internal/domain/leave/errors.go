package leave

import "errors"

var (
	// ErrNotFound covers missing users, leave types, and balance rows on
	// lookups that do not auto-create.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a leave type name collides with an
	// existing one. The comparison is case-insensitive.
	ErrDuplicateName = errors.New("leave type name already in use")

	// ErrProtectedType is returned when deleting a system leave type.
	ErrProtectedType = errors.New("system leave type cannot be deleted")

	// ErrInvalidAction is returned for an unrecognized balance event.
	ErrInvalidAction = errors.New("invalid balance action")

	// ErrInvalidAllowance is returned by the HTTP boundary for negative
	// allowances or day counts. The engine itself does not range-check.
	ErrInvalidAllowance = errors.New("allowance and day counts must not be negative")
)
