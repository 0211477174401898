package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrExternalMatchNotFound means the upstream platform has no match for
	// the given external id. Permanent: callers must not retry.
	ErrExternalMatchNotFound = errors.New("external match not found")
)
