package database

import (
	"context"
	"io"
	"testing"
	"time"

	"stayfinder/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createTestListing(t *testing.T, db *DB, hostID, maxReservations int64) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		Title:           "Seaside Flat",
		Description:     "Two rooms by the beach",
		PricePerNight:   decimal.NewFromInt(120),
		Location:        "Lisbon",
		ImageURLs:       []string{"https://example.com/1.jpg"},
		MaxReservations: maxReservations,
		HostID:          hostID,
	}
	require.NoError(t, db.CreateListing(context.Background(), listing))
	return listing
}

func newTestBooking(userID, listingID int64, status string, start, end time.Time) *models.Booking {
	return &models.Booking{
		UserID:       userID,
		ListingID:    listingID,
		StartDate:    start,
		EndDate:      end,
		CheckInTime:  "14:00",
		CheckOutTime: "11:00",
		TotalPrice:   decimal.NewFromInt(360),
		Status:       status,
	}
}

func TestCreateBookingWithCapacityCheck(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 2)

	now := time.Now().UTC()
	start := now.AddDate(0, 0, 1)
	end := now.AddDate(0, 0, 3)

	// Two confirmed bookings fill the listing.
	for i := 0; i < 2; i++ {
		b := newTestBooking(user.ID, listing.ID, models.StatusConfirmed, start, end)
		require.NoError(t, db.CreateBooking(ctx, b))
	}

	rejected := newTestBooking(user.ID, listing.ID, models.StatusPending, start, end)
	err := db.CreateBookingWithCapacityCheck(ctx, rejected, now)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// Cancelling one confirmed booking frees the slot.
	bookings, err := db.GetBookings(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	require.NoError(t, db.UpdateBookingStatus(ctx, bookings[0].ID, models.StatusCancelled))

	admitted := newTestBooking(user.ID, listing.ID, models.StatusPending, start, end)
	err = db.CreateBookingWithCapacityCheck(ctx, admitted, now)
	require.NoError(t, err)
	assert.NotZero(t, admitted.ID)
}

func TestCreateBookingWithCapacityCheckUnknownListing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	now := time.Now().UTC()

	b := newTestBooking(user.ID, 9999, models.StatusPending, now, now.AddDate(0, 0, 2))
	err := db.CreateBookingWithCapacityCheck(ctx, b, now)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestCountActiveBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 5)

	now := time.Now().UTC()

	// Confirmed and still running: counts.
	running := newTestBooking(user.ID, listing.ID, models.StatusConfirmed, now.AddDate(0, 0, -1), now.AddDate(0, 0, 2))
	require.NoError(t, db.CreateBooking(ctx, running))

	// Confirmed but already ended: free again.
	ended := newTestBooking(user.ID, listing.ID, models.StatusConfirmed, now.AddDate(0, 0, -5), now.AddDate(0, 0, -2))
	require.NoError(t, db.CreateBooking(ctx, ended))

	// Pending never consumes capacity.
	pending := newTestBooking(user.ID, listing.ID, models.StatusPending, now, now.AddDate(0, 0, 2))
	require.NoError(t, db.CreateBooking(ctx, pending))

	count, err := db.CountActiveBookings(ctx, listing.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	total, err := db.CountBookings(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestConfirmBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 1)

	now := time.Now().UTC()
	b := newTestBooking(user.ID, listing.ID, models.StatusPending, now, now.AddDate(0, 0, 2))
	require.NoError(t, db.CreateBooking(ctx, b))

	require.NoError(t, db.ConfirmBooking(ctx, b.ID))

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.True(t, got.IsPaid)

	// Confirming again keeps the same end state.
	require.NoError(t, db.ConfirmBooking(ctx, b.ID))
	got, err = db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.True(t, got.IsPaid)

	assert.ErrorIs(t, db.ConfirmBooking(ctx, 9999), ErrBookingNotFound)
}

func TestExpireUnpaidBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 5)

	now := time.Now().UTC()
	start := now.AddDate(0, 0, 1)
	end := now.AddDate(0, 0, 3)

	unpaid := newTestBooking(user.ID, listing.ID, models.StatusPending, start, end)
	require.NoError(t, db.CreateBooking(ctx, unpaid))

	paid := newTestBooking(user.ID, listing.ID, models.StatusPending, start, end)
	paid.IsPaid = true
	require.NoError(t, db.CreateBooking(ctx, paid))

	confirmed := newTestBooking(user.ID, listing.ID, models.StatusConfirmed, start, end)
	require.NoError(t, db.CreateBooking(ctx, confirmed))

	// Cutoff before creation: nothing is old enough yet.
	expired, err := db.ExpireUnpaidBookings(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expired)

	// Cutoff in the future: only the unpaid pending booking expires, and the
	// affected record comes back with its new status.
	expired, err = db.ExpireUnpaidBookings(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, unpaid.ID, expired[0].ID)
	assert.Equal(t, models.StatusExpired, expired[0].Status)

	got, err := db.GetBooking(ctx, unpaid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got.Status)

	got, err = db.GetBooking(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	got, err = db.GetBooking(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
}

func TestGetUserBookingsWithDeletedListing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 2)

	now := time.Now().UTC()
	b := newTestBooking(user.ID, listing.ID, models.StatusConfirmed, now, now.AddDate(0, 0, 2))
	require.NoError(t, db.CreateBooking(ctx, b))

	items, err := db.GetUserBookings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Listing)
	assert.Equal(t, listing.Title, items[0].Listing.Title)

	// The booking row survives a listing delete, with no listing attached.
	require.NoError(t, db.DeleteListing(ctx, listing.ID))

	items, err = db.GetUserBookings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Listing)
}

func TestGetAllBookingsDetailed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 2)

	now := time.Now().UTC()
	b := newTestBooking(user.ID, listing.ID, models.StatusPending, now, now.AddDate(0, 0, 2))
	require.NoError(t, db.CreateBooking(ctx, b))

	items, err := db.GetAllBookingsDetailed(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NotNil(t, items[0].User)
	assert.Equal(t, user.Email, items[0].User.Email)
	require.NotNil(t, items[0].Listing)
	assert.Equal(t, listing.Title, items[0].Listing.Title)
}

func TestGetUsersWithBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com")
	createTestUser(t, db, "bob@example.com") // no bookings
	listing := createTestListing(t, db, alice.ID, 5)

	now := time.Now().UTC()
	for i := 0; i < 2; i++ {
		b := newTestBooking(alice.ID, listing.ID, models.StatusPending, now, now.AddDate(0, 0, 2))
		require.NoError(t, db.CreateBooking(ctx, b))
	}

	users, err := db.GetUsersWithBookings(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

func TestDeleteBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 2)

	now := time.Now().UTC()
	b := newTestBooking(user.ID, listing.ID, models.StatusCompleted, now.AddDate(0, 0, -3), now.AddDate(0, 0, -1))
	require.NoError(t, db.CreateBooking(ctx, b))

	require.NoError(t, db.DeleteBooking(ctx, b.ID))

	_, err := db.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, db.DeleteBooking(ctx, b.ID), ErrBookingNotFound)
}

func TestGetPaidConfirmedBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "guest@example.com")
	listing := createTestListing(t, db, user.ID, 5)

	now := time.Now().UTC()

	confirmedPaid := newTestBooking(user.ID, listing.ID, models.StatusConfirmed, now, now.AddDate(0, 0, 2))
	confirmedPaid.IsPaid = true
	require.NoError(t, db.CreateBooking(ctx, confirmedPaid))

	confirmedUnpaid := newTestBooking(user.ID, listing.ID, models.StatusConfirmed, now, now.AddDate(0, 0, 2))
	require.NoError(t, db.CreateBooking(ctx, confirmedUnpaid))

	pendingPaid := newTestBooking(user.ID, listing.ID, models.StatusPending, now, now.AddDate(0, 0, 2))
	pendingPaid.IsPaid = true
	require.NoError(t, db.CreateBooking(ctx, pendingPaid))

	bookings, err := db.GetPaidConfirmedBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, confirmedPaid.ID, bookings[0].ID)
}
