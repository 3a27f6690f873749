package core

import "errors"

// Common errors.
var (
	// ErrUnauthenticated means no valid credential is available and a
	// refresh failed. It always reaches the caller.
	ErrUnauthenticated = errors.New("no valid credential available")

	// ErrRemoteUnavailable covers network failures and remote 5xx
	// responses. Background operations absorb it after logging.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrVersionConflict signals that a renumbering would have produced
	// a non-contiguous version run; the local state is left untouched.
	ErrVersionConflict = errors.New("version numbering conflict")

	// ErrConversionIncomplete means at least one item could not be
	// converted automatically and the caller must supply field values.
	ErrConversionIncomplete = errors.New("conversion requires manual field values")

	ErrNotFound       = errors.New("not found")
	ErrInvalidScheme  = errors.New("invalid organizing scheme")
	ErrContainerCycle = errors.New("container cannot be its own ancestor")
)
