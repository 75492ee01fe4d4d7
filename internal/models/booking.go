package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	ListingID    int64           `json:"listing_id"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	CheckInTime  string          `json:"check_in_time"`  // HH:MM
	CheckOutTime string          `json:"check_out_time"` // HH:MM
	TotalPrice   decimal.Decimal `json:"total_price"`
	IsPaid       bool            `json:"is_paid"`
	Status       string          `json:"status"` // pending, confirmed, expired, cancelled, completed
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ParseClock validates an HH:MM wall-clock string.
func ParseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid wall-clock time %q: %w", value, err)
	}
	return t.Hour(), t.Minute(), nil
}

// combineClock applies an HH:MM wall-clock to the calendar day of date,
// with seconds zeroed.
func combineClock(date time.Time, clock string) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// CheckInCutoff is the instant after which the booking can no longer be cancelled.
func (b *Booking) CheckInCutoff() (time.Time, error) {
	return combineClock(b.StartDate, b.CheckInTime)
}

// CheckOutCutoff is the instant after which a confirmed booking counts as completed.
func (b *Booking) CheckOutCutoff() (time.Time, error) {
	return combineClock(b.EndDate, b.CheckOutTime)
}

// Cancellable reports whether the booking status still allows cancellation.
// Terminal statuses (expired, cancelled, completed) are rejected.
func (b *Booking) Cancellable() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BookingWithListing is a booking with its listing resolved, as returned to
// the owning user.
type BookingWithListing struct {
	Booking
	Listing *Listing `json:"listing,omitempty"`
}

// AdminBooking is a booking with user and listing references resolved down to
// the fields the administrative review screens need.
type AdminBooking struct {
	Booking
	User    *UserSummary    `json:"user,omitempty"`
	Listing *ListingSummary `json:"listing,omitempty"`
}

type ListingSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
