package domain

import "errors"

// Domain error taxonomy. Services return these (possibly wrapped with
// fmt.Errorf("%w: ...")) and handlers map them to HTTP responses with
// errors.Is.
var (
	// ErrValidation marks malformed or missing input. Recoverable: the
	// caller fixes the request and retries.
	ErrValidation = errors.New("validation failed")

	// ErrRateLimited marks too many OTP issuances or failed admin logins
	// inside the window. Recoverable after cool-down.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidOrExpiredOTP marks a bad, expired or already-used one-time
	// code. Recoverable by issuing a new code.
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")

	// ErrOTPNotVerified marks a registration attempted without a verified
	// code for the phone number.
	ErrOTPNotVerified = errors.New("OTP not verified")

	// ErrDuplicateIdentity marks a registration whose Aadhaar number is
	// already bound to an application.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrDuplicateTransaction marks a replayed payment transaction reference.
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrInvalidStateTransition marks a lifecycle guard violation, usually a
	// stale admin view or a concurrent decision on the same application.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotFound is the deliberately uniform identity-gate failure. It does
	// not tell the caller which of unique ID, Aadhaar, phone or approval
	// status did not match.
	ErrNotFound = errors.New("not found or not eligible")

	// ErrAlreadyExists marks a second bank-detail submission for a unique ID.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrUnauthorized marks a failed credential or token check.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable hides persistence and notifier internals from
	// the caller.
	ErrServiceUnavailable = errors.New("service unavailable")
)
