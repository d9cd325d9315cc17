package domain

import "errors"

// ErrTooManyRequests is wrapped by collectors when the platform throttles a call.
var ErrTooManyRequests = errors.New("too many requests")

// IsRateLimited reports whether err carries the platform throttling signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrTooManyRequests)
}
