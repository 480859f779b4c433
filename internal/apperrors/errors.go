package apperrors

import "errors"

// Kind labels a boundary error so clients never have to match on
// human-readable text.
type Kind string

const (
	KindBlocked     Kind = "BLOCKED"
	KindRateLimited Kind = "RATE_LIMITED"
	KindValidation  Kind = "VALIDATION"
	KindUnknown     Kind = "UNKNOWN"
)

var (
	// ErrBlocked means a block relation exists between sender and recipient.
	ErrBlocked = errors.New("messaging is blocked between these users")
	// ErrRateLimited means the daily per-recipient quota is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// KindOf maps an error to its boundary kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrBlocked):
		return KindBlocked
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindUnknown
	}
}
