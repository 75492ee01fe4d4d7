package domain

import (
	"context"
	"time"

	"stayfinder/internal/models"
)

// Repository is the persistent document store for users, listings and
// bookings.
type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CreateBookingWithCapacityCheck(ctx context.Context, booking *models.Booking, asOf time.Time) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, id int64) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	DeleteBooking(ctx context.Context, id int64) error
	CountBookings(ctx context.Context, listingID int64) (int64, error)
	CountActiveBookings(ctx context.Context, listingID int64, asOf time.Time) (int64, error)
	GetBookings(ctx context.Context, listingID int64) ([]*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingWithListing, error)
	GetAllBookingsDetailed(ctx context.Context) ([]*models.AdminBooking, error)
	GetUsersWithBookings(ctx context.Context) ([]*models.UserSummary, error)
	ExpireUnpaidBookings(ctx context.Context, cutoff time.Time) ([]*models.Booking, error)
	GetPaidConfirmedBookings(ctx context.Context) ([]*models.Booking, error)

	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id int64) (*models.Listing, error)
	GetListings(ctx context.Context) ([]*models.Listing, error)
	UpdateListing(ctx context.Context, listing *models.Listing) error
	DeleteListing(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Clock supplies the current instant; injectable for deterministic tests of
// time-dependent transitions.
type Clock interface {
	Now() time.Time
}

// EventPublisher publishes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimiter answers whether a caller may proceed within a request window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
