package rate

import "errors"

var (
	// ErrRateLimited is what callers return when a [Decision] denies a request.
	ErrRateLimited = errors.New("rate limited")
	// ErrStorageUnavailable wraps secondary storage failures during Admit.
	ErrStorageUnavailable = errors.New("rate limit storage unavailable")
	// ErrInvalidConfig is returned by [New] for non-positive window or max.
	ErrInvalidConfig = errors.New("invalid rate limit configuration")
)
