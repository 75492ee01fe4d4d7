package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stayfinder/internal/models"
)

const bookingColumns = `id, user_id, listing_id, start_date, end_date, check_in_time,
                        check_out_time, total_price, is_paid, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner, b *models.Booking) error {
	return row.Scan(
		&b.ID, &b.UserID, &b.ListingID, &b.StartDate, &b.EndDate, &b.CheckInTime,
		&b.CheckOutTime, &b.TotalPrice, &b.IsPaid, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
}

// CreateBooking inserts a booking without any capacity check. Prefer
// CreateBookingWithCapacityCheck for the admission path.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				user_id, listing_id, start_date, end_date, check_in_time,
				check_out_time, total_price, is_paid, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.UserID,
		booking.ListingID,
		booking.StartDate.UTC(),
		booking.EndDate.UTC(),
		booking.CheckInTime,
		booking.CheckOutTime,
		booking.TotalPrice,
		booking.IsPaid,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

// CreateBookingWithCapacityCheck admits the booking only while the listing
// still has confirmed, not-yet-ended bookings below its reservation ceiling.
// The count and the insert run in one transaction so two concurrent creates
// cannot both take the last slot.
func (db *DB) CreateBookingWithCapacityCheck(ctx context.Context, booking *models.Booking, asOf time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var maxReservations int64
	err = tx.QueryRowContext(ctx,
		`SELECT max_reservations FROM listings WHERE id = ?`, booking.ListingID,
	).Scan(&maxReservations)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrListingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load listing in tx: %w", err)
	}

	var activeCount int64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
         WHERE listing_id = ? AND status = ? AND datetime(end_date) >= datetime(?)`,
		booking.ListingID, models.StatusConfirmed, sqliteTime(asOf),
	).Scan(&activeCount)
	if err != nil {
		return fmt.Errorf("failed to count active bookings in tx: %w", err)
	}

	if activeCount >= maxReservations {
		return ErrCapacityExceeded
	}

	query := `INSERT INTO bookings (
				user_id, listing_id, start_date, end_date, check_in_time,
				check_out_time, total_price, is_paid, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.UserID,
		booking.ListingID,
		booking.StartDate.UTC(),
		booking.EndDate.UTC(),
		booking.CheckInTime,
		booking.CheckOutTime,
		booking.TotalPrice,
		booking.IsPaid,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	var booking models.Booking
	err := scanBooking(db.QueryRowContext(ctx, query, id), &booking)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ConfirmBooking marks the booking as paid and confirmed. Applying it to an
// already confirmed booking yields the same end state.
func (db *DB) ConfirmBooking(ctx context.Context, id int64) error {
	query := `UPDATE bookings SET is_paid = 1, status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, models.StatusConfirmed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// DeleteBooking removes the record unconditionally, bypassing lifecycle rules.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// CountBookings returns the number of bookings for a listing, any status.
func (db *DB) CountBookings(ctx context.Context, listingID int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE listing_id = ?`, listingID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// CountActiveBookings returns the number of confirmed bookings of the listing
// whose end date has not passed as of the given instant. Pending and
// cancelled bookings never consume capacity.
func (db *DB) CountActiveBookings(ctx context.Context, listingID int64, asOf time.Time) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
         WHERE listing_id = ? AND status = ? AND datetime(end_date) >= datetime(?)`,
		listingID, models.StatusConfirmed, sqliteTime(asOf),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}

// GetBookings returns all bookings, optionally filtered by listing when
// listingID is non-zero.
func (db *DB) GetBookings(ctx context.Context, listingID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []any{}
	if listingID != 0 {
		query += ` WHERE listing_id = ?`
		args = append(args, listingID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		if err := scanBooking(rows, b); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetUserBookings returns the user's bookings with each listing resolved.
func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingWithListing, error) {
	query := `SELECT b.id, b.user_id, b.listing_id, b.start_date, b.end_date,
	                 b.check_in_time, b.check_out_time, b.total_price, b.is_paid,
	                 b.status, b.created_at, b.updated_at,
	                 l.id, l.title, l.description, l.price_per_night, l.location,
	                 l.image_urls, l.max_reservations, l.host_id, l.created_at, l.updated_at
              FROM bookings b
              LEFT JOIN listings l ON l.id = b.listing_id
              WHERE b.user_id = ?
              ORDER BY b.created_at DESC, b.id DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.BookingWithListing
	for rows.Next() {
		item := &models.BookingWithListing{}
		var (
			listingID       sql.NullInt64
			title           sql.NullString
			description     sql.NullString
			pricePerNight   sql.NullString
			location        sql.NullString
			imageURLs       sql.NullString
			maxReservations sql.NullInt64
			hostID          sql.NullInt64
			createdAt       sql.NullTime
			updatedAt       sql.NullTime
		)
		err := rows.Scan(
			&item.ID, &item.UserID, &item.ListingID, &item.StartDate, &item.EndDate,
			&item.CheckInTime, &item.CheckOutTime, &item.TotalPrice, &item.IsPaid,
			&item.Status, &item.CreatedAt, &item.UpdatedAt,
			&listingID, &title, &description, &pricePerNight, &location,
			&imageURLs, &maxReservations, &hostID, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user booking: %w", err)
		}
		// Listing may be gone after an admin delete; the booking row survives.
		if listingID.Valid {
			listing := &models.Listing{
				ID:              listingID.Int64,
				Title:           title.String,
				Description:     description.String,
				Location:        location.String,
				MaxReservations: maxReservations.Int64,
				HostID:          hostID.Int64,
				CreatedAt:       createdAt.Time,
				UpdatedAt:       updatedAt.Time,
			}
			if pricePerNight.Valid {
				if err := listing.PricePerNight.Scan(pricePerNight.String); err != nil {
					return nil, fmt.Errorf("failed to parse listing price: %w", err)
				}
			}
			listing.ImageURLs, err = decodeImageURLs(imageURLs.String)
			if err != nil {
				return nil, err
			}
			item.Listing = listing
		}
		bookings = append(bookings, item)
	}
	return bookings, rows.Err()
}

// GetAllBookingsDetailed returns every booking with user (name, email) and
// listing (title) references resolved, for administrative review.
func (db *DB) GetAllBookingsDetailed(ctx context.Context) ([]*models.AdminBooking, error) {
	query := `SELECT b.id, b.user_id, b.listing_id, b.start_date, b.end_date,
	                 b.check_in_time, b.check_out_time, b.total_price, b.is_paid,
	                 b.status, b.created_at, b.updated_at,
	                 u.id, u.name, u.email,
	                 l.id, l.title
              FROM bookings b
              LEFT JOIN users u ON u.id = b.user_id
              LEFT JOIN listings l ON l.id = b.listing_id
              ORDER BY b.created_at DESC, b.id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings for admin: %w", err)
	}
	defer rows.Close()

	var bookings []*models.AdminBooking
	for rows.Next() {
		item := &models.AdminBooking{}
		var (
			uID    sql.NullInt64
			uName  sql.NullString
			uEmail sql.NullString
			lID    sql.NullInt64
			lTitle sql.NullString
		)
		err := rows.Scan(
			&item.ID, &item.UserID, &item.ListingID, &item.StartDate, &item.EndDate,
			&item.CheckInTime, &item.CheckOutTime, &item.TotalPrice, &item.IsPaid,
			&item.Status, &item.CreatedAt, &item.UpdatedAt,
			&uID, &uName, &uEmail,
			&lID, &lTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking for admin: %w", err)
		}
		if uID.Valid {
			item.User = &models.UserSummary{ID: uID.Int64, Name: uName.String, Email: uEmail.String}
		}
		if lID.Valid {
			item.Listing = &models.ListingSummary{ID: lID.Int64, Title: lTitle.String}
		}
		bookings = append(bookings, item)
	}
	return bookings, rows.Err()
}

// GetUsersWithBookings returns the distinct set of users having at least one
// booking, deduplicated by identity.
func (db *DB) GetUsersWithBookings(ctx context.Context) ([]*models.UserSummary, error) {
	query := `SELECT DISTINCT u.id, u.name, u.email
              FROM users u
              JOIN bookings b ON b.user_id = u.id
              ORDER BY u.id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users with bookings: %w", err)
	}
	defer rows.Close()

	var users []*models.UserSummary
	for rows.Next() {
		u := &models.UserSummary{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user summary: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ExpireUnpaidBookings bulk-transitions pending, unpaid bookings created at or
// before the cutoff to expired and returns the affected records. The select
// and the update run in one transaction so the returned set matches the rows
// that actually changed.
func (db *DB) ExpireUnpaidBookings(ctx context.Context, cutoff time.Time) ([]*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
         WHERE is_paid = 0 AND status = ? AND datetime(created_at) <= datetime(?)`,
		models.StatusPending, sqliteTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to select stale bookings: %w", err)
	}
	defer rows.Close()

	var expired []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		if err := scanBooking(rows, b); err != nil {
			return nil, fmt.Errorf("failed to scan stale booking: %w", err)
		}
		expired = append(expired, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stale bookings: %w", err)
	}
	rows.Close()

	if len(expired) == 0 {
		return nil, tx.Commit()
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ?
         WHERE is_paid = 0 AND status = ? AND datetime(created_at) <= datetime(?)`,
		models.StatusExpired, now, models.StatusPending, sqliteTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to expire unpaid bookings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expiry: %w", err)
	}

	for _, b := range expired {
		b.Status = models.StatusExpired
		b.UpdatedAt = now
	}
	return expired, nil
}

// GetPaidConfirmedBookings returns confirmed, paid bookings for the
// per-record completion pass of the sweep.
func (db *DB) GetPaidConfirmedBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = ? AND is_paid = 1`

	rows, err := db.QueryContext(ctx, query, models.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmed bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		if err := scanBooking(rows, b); err != nil {
			return nil, fmt.Errorf("failed to scan confirmed booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
