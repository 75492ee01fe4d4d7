package service

import (
	"context"
	"fmt"
	"time"

	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/metrics"
	"stayfinder/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BookingService owns the booking state machine: creation behind the capacity
// check, confirmation, cancellation, admin deletion and the read queries.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, clk domain.Clock, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		clock:    clk,
		logger:   logger,
	}
}

// CreateBookingInput carries the guest-supplied fields of a new booking.
type CreateBookingInput struct {
	ListingID    int64           `json:"listing_id"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	CheckInTime  string          `json:"check_in_time"`
	CheckOutTime string          `json:"check_out_time"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

func (in CreateBookingInput) validate() error {
	if in.ListingID == 0 {
		return fmt.Errorf("%w: listing is required", ErrValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	if _, _, err := models.ParseClock(in.CheckInTime); err != nil {
		return fmt.Errorf("%w: check-in time: %v", ErrValidation, err)
	}
	if _, _, err := models.ParseClock(in.CheckOutTime); err != nil {
		return fmt.Errorf("%w: check-out time: %v", ErrValidation, err)
	}
	if in.TotalPrice.IsNegative() {
		return fmt.Errorf("%w: total price must not be negative", ErrValidation)
	}
	return nil
}

// CreateBooking admits a new pending, unpaid booking for the user. The
// capacity count and the insert run atomically in the store, so a listing at
// its last free slot cannot be over-admitted by concurrent creates.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:       userID,
		ListingID:    in.ListingID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		CheckInTime:  in.CheckInTime,
		CheckOutTime: in.CheckOutTime,
		TotalPrice:   in.TotalPrice,
		IsPaid:       false,
		Status:       models.StatusPending,
	}

	if err := s.repo.CreateBookingWithCapacityCheck(ctx, booking, s.clock.Now()); err != nil {
		return nil, err
	}

	metrics.IncBookingsCreated()
	s.publishEvent(events.EventBookingCreated, booking, "guest")
	return booking, nil
}

// CanAdmit reports whether the listing still has room for another confirmed
// reservation as of now. Read-only; the create path re-checks atomically.
func (s *BookingService) CanAdmit(ctx context.Context, listingID int64) (bool, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return false, err
	}

	active, err := s.repo.CountActiveBookings(ctx, listingID, s.clock.Now())
	if err != nil {
		return false, err
	}

	return active < listing.MaxReservations, nil
}

// ConfirmBooking marks the booking paid and confirmed. Invoked by the trusted
// payment flow, so no ownership check applies; confirming twice yields the
// same end state.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	if err := s.repo.ConfirmBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingConfirmed, booking, "payment")
	return booking, nil
}

// CancelBooking cancels the booking on behalf of requesterID. Admins may
// cancel any booking; everyone else only their own. Cancellation is allowed
// only from pending or confirmed, and only strictly before the check-in
// cutoff (start date + check-in wall-clock).
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID int64, admin bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !admin && booking.UserID != requesterID {
		return nil, ErrForbidden
	}

	if !booking.Cancellable() {
		return nil, ErrNotCancellable
	}

	cutoff, err := booking.CheckInCutoff()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !s.clock.Now().Before(cutoff) {
		return nil, ErrCancelAfterCheckIn
	}

	if err := s.repo.UpdateBookingStatus(ctx, bookingID, models.StatusCancelled); err != nil {
		return nil, err
	}

	booking.Status = models.StatusCancelled
	changedBy := "guest"
	if admin {
		changedBy = "admin"
	}
	s.publishEvent(events.EventBookingCancelled, booking, changedBy)
	return booking, nil
}

// DeleteBooking removes the record unconditionally, bypassing lifecycle
// rules. Admin only; the handler enforces the role.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingDeleted, booking, "admin")
	return nil
}

// GetBookings returns all bookings, optionally filtered by listing.
func (s *BookingService) GetBookings(ctx context.Context, listingID int64) ([]*models.Booking, error) {
	return s.repo.GetBookings(ctx, listingID)
}

// GetBookingCount returns the total number of bookings for a listing,
// any status.
func (s *BookingService) GetBookingCount(ctx context.Context, listingID int64) (int64, error) {
	return s.repo.CountBookings(ctx, listingID)
}

// GetActiveBookingCount returns the number of confirmed, not-yet-ended
// bookings for a listing.
func (s *BookingService) GetActiveBookingCount(ctx context.Context, listingID int64) (int64, error) {
	return s.repo.CountActiveBookings(ctx, listingID, s.clock.Now())
}

// GetUserBookings returns the user's bookings with listings resolved.
func (s *BookingService) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingWithListing, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

// GetAllBookings returns every booking with user and listing references
// resolved, for administrative review.
func (s *BookingService) GetAllBookings(ctx context.Context) ([]*models.AdminBooking, error) {
	return s.repo.GetAllBookingsDetailed(ctx)
}

// GetUsersWithBookings returns the distinct users having at least one booking.
func (s *BookingService) GetUsersWithBookings(ctx context.Context) ([]*models.UserSummary, error) {
	return s.repo.GetUsersWithBookings(ctx)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		ListingID:  booking.ListingID,
		Status:     booking.Status,
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		TotalPrice: booking.TotalPrice,
		ChangedBy:  changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
