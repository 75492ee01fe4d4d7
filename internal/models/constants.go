package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

const (
	// UnpaidBookingTTL is how long a pending booking may stay unpaid before
	// the sweep expires it.
	UnpaidBookingTTL = 30 * time.Minute

	// SweepInterval is the period of the background booking sweep.
	SweepInterval = time.Hour

	// DefaultTokenTTL is the access token lifetime.
	DefaultTokenTTL = 24 * time.Hour

	// DefaultBcryptCost is the password hashing cost.
	DefaultBcryptCost = 10

	// RateLimitRequests is the number of requests allowed per window.
	RateLimitRequests = 60

	// RateLimitWindow is the rate limit window.
	RateLimitWindow = time.Minute
)
