package sweeper

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"stayfinder/internal/clock"
	"stayfinder/internal/database"
	"stayfinder/internal/events"
	"stayfinder/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	db      *database.DB
	sweeper *Sweeper
	clock   *clock.Fake
	userID  int64
	listing int64
	events  []string
}

func setupSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	user := &models.User{Name: "Guest", Email: "guest@example.com", PasswordHash: "h", Role: models.RoleUser}
	require.NoError(t, db.CreateUser(ctx, user))

	listing := &models.Listing{
		Title: "Loft", PricePerNight: decimal.NewFromInt(80), Location: "Berlin",
		MaxReservations: 10, HostID: user.ID,
	}
	require.NoError(t, db.CreateListing(ctx, listing))

	f := &sweepFixture{
		db:      db,
		clock:   clock.NewFake(time.Now().UTC()),
		userID:  user.ID,
		listing: listing.ID,
	}

	bus := events.NewEventBus()
	record := func(event *events.Event) error {
		f.events = append(f.events, event.Type)
		return nil
	}
	bus.Subscribe(events.EventBookingExpired, record)
	bus.Subscribe(events.EventBookingCompleted, record)

	f.sweeper = New(db, f.clock, bus, models.UnpaidBookingTTL, &logger)
	return f
}

func (f *sweepFixture) createBooking(t *testing.T, status string, isPaid bool, start, end time.Time) *models.Booking {
	t.Helper()
	b := &models.Booking{
		UserID:       f.userID,
		ListingID:    f.listing,
		StartDate:    start,
		EndDate:      end,
		CheckInTime:  "14:00",
		CheckOutTime: "11:00",
		TotalPrice:   decimal.NewFromInt(160),
		IsPaid:       isPaid,
		Status:       status,
	}
	require.NoError(t, f.db.CreateBooking(context.Background(), b))
	return b
}

func (f *sweepFixture) status(t *testing.T, id int64) string {
	t.Helper()
	b, err := f.db.GetBooking(context.Background(), id)
	require.NoError(t, err)
	return b.Status
}

func TestSweepExpiresStaleUnpaidBookings(t *testing.T) {
	f := setupSweepFixture(t)
	now := f.clock.Now()

	stale := f.createBooking(t, models.StatusPending, false, now.AddDate(0, 0, 7), now.AddDate(0, 0, 9))
	paid := f.createBooking(t, models.StatusPending, true, now.AddDate(0, 0, 7), now.AddDate(0, 0, 9))

	// Within the grace period nothing changes.
	f.clock.Advance(29 * time.Minute)
	f.sweeper.RunOnce(context.Background())
	assert.Equal(t, models.StatusPending, f.status(t, stale.ID))
	assert.Empty(t, f.events)

	// Past the grace period the unpaid pending booking expires; the paid one
	// stays untouched. Every expired booking gets an event on the bus.
	f.clock.Advance(2 * time.Minute)
	f.sweeper.RunOnce(context.Background())
	assert.Equal(t, models.StatusExpired, f.status(t, stale.ID))
	assert.Equal(t, models.StatusPending, f.status(t, paid.ID))
	assert.Equal(t, []string{events.EventBookingExpired}, f.events)
}

func TestSweepCompletesPastCheckout(t *testing.T) {
	f := setupSweepFixture(t)
	now := f.clock.Now()

	past := f.createBooking(t, models.StatusConfirmed, true, now.AddDate(0, 0, -5), now.AddDate(0, 0, -2))
	future := f.createBooking(t, models.StatusConfirmed, true, now.AddDate(0, 0, 1), now.AddDate(0, 0, 3))
	unpaidPast := f.createBooking(t, models.StatusConfirmed, false, now.AddDate(0, 0, -5), now.AddDate(0, 0, -2))

	f.sweeper.RunOnce(context.Background())

	assert.Equal(t, models.StatusCompleted, f.status(t, past.ID))
	assert.Equal(t, models.StatusConfirmed, f.status(t, future.ID))
	// Unpaid bookings are never completed, even past the checkout cutoff.
	assert.Equal(t, models.StatusConfirmed, f.status(t, unpaidPast.ID))
	assert.Contains(t, f.events, events.EventBookingCompleted)
}

func TestSweepCompletionCutoffIsStrict(t *testing.T) {
	f := setupSweepFixture(t)

	// End date today, checkout at 11:00.
	day := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	b := f.createBooking(t, models.StatusConfirmed, true, day.AddDate(0, 0, -2), day)

	// Exactly at the checkout instant the booking still counts as running.
	f.clock.Set(time.Date(2026, 6, 10, 11, 0, 0, 0, time.UTC))
	f.sweeper.RunOnce(context.Background())
	assert.Equal(t, models.StatusConfirmed, f.status(t, b.ID))

	f.clock.Advance(time.Second)
	f.sweeper.RunOnce(context.Background())
	assert.Equal(t, models.StatusCompleted, f.status(t, b.ID))
}

func TestSweepStartStop(t *testing.T) {
	f := setupSweepFixture(t)

	f.sweeper.Start(context.Background())
	f.sweeper.Stop()
}

// stubStore lets the failure-path tests inject errors the sqlite store
// would not produce on demand.
type stubStore struct {
	expireErr   error
	expireCalls int
	confirmed   []*models.Booking
	updateErrs  map[int64]error
	completed   []int64
}

func (s *stubStore) ExpireUnpaidBookings(ctx context.Context, cutoff time.Time) ([]*models.Booking, error) {
	s.expireCalls++
	return nil, s.expireErr
}

func (s *stubStore) GetPaidConfirmedBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.confirmed, nil
}

func (s *stubStore) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	if err := s.updateErrs[id]; err != nil {
		return err
	}
	s.completed = append(s.completed, id)
	return nil
}

func confirmedBooking(id int64, end time.Time, checkOut string) *models.Booking {
	return &models.Booking{
		ID:           id,
		Status:       models.StatusConfirmed,
		IsPaid:       true,
		StartDate:    end.AddDate(0, 0, -2),
		EndDate:      end,
		CheckInTime:  "14:00",
		CheckOutTime: checkOut,
	}
}

func TestSweepExpiryFailureDoesNotAbortCompletion(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	store := &stubStore{
		expireErr: errors.New("database is locked"),
		confirmed: []*models.Booking{
			confirmedBooking(1, now.AddDate(0, 0, -3), "11:00"),
		},
	}

	logger := zerolog.New(io.Discard)
	s := New(store, clock.NewFake(now), nil, models.UnpaidBookingTTL, &logger)
	s.RunOnce(context.Background())

	assert.Equal(t, 1, store.expireCalls)
	assert.Equal(t, []int64{1}, store.completed)
}

func TestSweepCompletionSkipsBrokenRecords(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, -3)
	store := &stubStore{
		confirmed: []*models.Booking{
			confirmedBooking(1, end, "not-a-time"),
			confirmedBooking(2, end, "11:00"),
			confirmedBooking(3, end, "11:00"),
		},
		updateErrs: map[int64]error{2: errors.New("database is locked")},
	}

	logger := zerolog.New(io.Discard)
	s := New(store, clock.NewFake(now), nil, models.UnpaidBookingTTL, &logger)
	s.RunOnce(context.Background())

	// The unparseable checkout time and the failed update are skipped; the
	// record behind them still completes.
	assert.Equal(t, []int64{3}, store.completed)
}
