package sweeper

import (
	"context"
	"time"

	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/metrics"
	"stayfinder/internal/models"

	"github.com/rs/zerolog"
)

// Store is the slice of the booking store the sweep needs.
type Store interface {
	ExpireUnpaidBookings(ctx context.Context, cutoff time.Time) ([]*models.Booking, error)
	GetPaidConfirmedBookings(ctx context.Context) ([]*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
}

// Sweeper advances booking statuses on a fixed wall-clock schedule: unpaid
// pending bookings expire after the TTL, confirmed bookings past their
// checkout cutoff complete. It runs at the top of every hour, independent of
// request traffic.
type Sweeper struct {
	store     Store
	clock     domain.Clock
	eventBus  domain.EventPublisher
	unpaidTTL time.Duration
	logger    zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func New(store Store, clk domain.Clock, eventBus domain.EventPublisher, unpaidTTL time.Duration, logger *zerolog.Logger) *Sweeper {
	if unpaidTTL <= 0 {
		unpaidTTL = models.UnpaidBookingTTL
	}
	return &Sweeper{
		store:     store,
		clock:     clk,
		eventBus:  eventBus,
		unpaidTTL: unpaidTTL,
		logger:    logger.With().Str("component", "sweeper").Logger(),
	}
}

// Start launches the hourly schedule. The first run fires at the next top of
// the hour.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		timer := time.NewTimer(s.untilNextHour())
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				s.RunOnce(ctx)
				timer.Reset(models.SweepInterval)
			}
		}
	}()
}

// Stop cancels the schedule and waits for an in-flight run to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// RunOnce performs both sweep passes. The passes are independent; a failure
// in one never aborts the other.
func (s *Sweeper) RunOnce(ctx context.Context) {
	start := time.Now()

	s.expireUnpaid(ctx)
	s.completePastCheckout(ctx)

	metrics.ObserveSweepDuration(time.Since(start).Seconds())
}

// expireUnpaid bulk-transitions pending, unpaid bookings older than the TTL
// to expired.
func (s *Sweeper) expireUnpaid(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.unpaidTTL)

	expired, err := s.store.ExpireUnpaidBookings(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("expire unpaid bookings failed")
		return
	}

	for _, booking := range expired {
		s.publishStatus(events.EventBookingExpired, models.StatusExpired, booking)
	}

	metrics.AddBookingsExpired(int64(len(expired)))
	s.logger.Info().Int("expired", len(expired)).Msg("booking cleanup run finished")
}

// completePastCheckout scans confirmed, paid bookings and completes each one
// whose end date + checkout wall-clock lies strictly in the past. The cutoff
// depends on a per-record time-of-day field, so this pass is applied
// per record rather than as one bulk filter.
func (s *Sweeper) completePastCheckout(ctx context.Context) {
	bookings, err := s.store.GetPaidConfirmedBookings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("load confirmed bookings failed")
		return
	}

	now := s.clock.Now()
	for _, booking := range bookings {
		cutoff, err := booking.CheckOutCutoff()
		if err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("bad checkout time, skipping")
			continue
		}
		if !now.After(cutoff) {
			continue
		}

		if err := s.store.UpdateBookingStatus(ctx, booking.ID, models.StatusCompleted); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("complete booking failed")
			continue
		}

		metrics.IncBookingsCompleted()
		s.publishStatus(events.EventBookingCompleted, models.StatusCompleted, booking)
	}
}

func (s *Sweeper) publishStatus(eventType, status string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		ListingID:  booking.ListingID,
		Status:     status,
		StartDate:  booking.StartDate,
		EndDate:    booking.EndDate,
		TotalPrice: booking.TotalPrice,
		ChangedBy:  "sweep",
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

// untilNextHour returns the wait until the next top of the hour.
func (s *Sweeper) untilNextHour() time.Duration {
	now := s.clock.Now()
	next := now.Truncate(time.Hour).Add(time.Hour)
	return next.Sub(now)
}
