package service

import "errors"

var (
	// ErrValidation marks malformed or missing input; details are wrapped
	// around it.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks an actor without ownership or role for the mutation.
	ErrForbidden = errors.New("not allowed")

	// ErrNotCancellable rejects cancellation of a booking in a terminal
	// status.
	ErrNotCancellable = errors.New("booking cannot be cancelled in its current status")

	// ErrCancelAfterCheckIn rejects cancellation at or past the check-in
	// cutoff.
	ErrCancelAfterCheckIn = errors.New("cannot cancel after check-in time")

	// ErrInvalidCredentials rejects a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
