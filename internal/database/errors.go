package database

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrCapacityExceeded = errors.New("reservation limit reached for this listing")
)
