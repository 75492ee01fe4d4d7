package export

import (
	"bytes"
	"testing"
	"time"

	"stayfinder/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookingsWorkbook(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	bookings := []*models.AdminBooking{
		{
			Booking: models.Booking{
				ID:           1,
				StartDate:    time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
				EndDate:      time.Date(2026, 6, 22, 0, 0, 0, 0, time.UTC),
				CheckInTime:  "15:00",
				CheckOutTime: "11:00",
				TotalPrice:   decimal.RequireFromString("240.50"),
				Status:       models.StatusConfirmed,
				IsPaid:       true,
			},
			User:    &models.UserSummary{ID: 3, Name: "Alice", Email: "alice@example.com"},
			Listing: &models.ListingSummary{ID: 5, Title: "Seaside Flat"},
		},
		{
			// User and listing removed after the fact.
			Booking: models.Booking{
				ID:         2,
				TotalPrice: decimal.NewFromInt(100),
				Status:     models.StatusPending,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookingsWorkbook(&buf, bookings, now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Bookings", "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "2026-06-15")

	guest, err := f.GetCellValue("Bookings", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Alice", guest)

	price, err := f.GetCellValue("Bookings", "I3")
	require.NoError(t, err)
	assert.Equal(t, "240.50", price)

	status, err := f.GetCellValue("Bookings", "J4")
	require.NoError(t, err)
	assert.Equal(t, "pending (unpaid)", status)

	deleted, err := f.GetCellValue("Bookings", "B4")
	require.NoError(t, err)
	assert.Equal(t, "(deleted)", deleted)
}
