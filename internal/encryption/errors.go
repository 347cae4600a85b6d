package encryption

import "errors"

var (
	// ErrPasswordRequired is returned when an encrypted member is decoded without a password.
	ErrPasswordRequired = errors.New("password required")
	// ErrWrongPassword is returned when the verification tag does not match the password.
	ErrWrongPassword = errors.New("wrong password")
	// ErrUnknownAlgorithm is returned for algorithm ids or names outside the supported set.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrTruncatedHeader is returned when a member ends before its header is complete.
	ErrTruncatedHeader = errors.New("truncated member header")
	// ErrContextCleared is returned when a cleared context is used again.
	ErrContextCleared = errors.New("encryption context cleared")
)

// IsDecodeError reports whether err is one of the member decoding failures.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrWrongPassword) ||
		errors.Is(err, ErrUnknownAlgorithm) ||
		errors.Is(err, ErrTruncatedHeader)
}
