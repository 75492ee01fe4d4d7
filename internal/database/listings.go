package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stayfinder/internal/models"
)

const listingColumns = `id, title, description, price_per_night, location, image_urls,
                        max_reservations, host_id, created_at, updated_at`

func encodeImageURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("failed to encode image urls: %w", err)
	}
	return string(data), nil
}

func decodeImageURLs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, fmt.Errorf("failed to decode image urls: %w", err)
	}
	return urls, nil
}

func scanListing(row scanner, l *models.Listing) error {
	var imageURLs string
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.PricePerNight, &l.Location, &imageURLs,
		&l.MaxReservations, &l.HostID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	l.ImageURLs, err = decodeImageURLs(imageURLs)
	return err
}

func (db *DB) CreateListing(ctx context.Context, listing *models.Listing) error {
	images, err := encodeImageURLs(listing.ImageURLs)
	if err != nil {
		return err
	}

	query := `INSERT INTO listings (
				title, description, price_per_night, location, image_urls,
				max_reservations, host_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		listing.Title,
		listing.Description,
		listing.PricePerNight,
		listing.Location,
		images,
		listing.MaxReservations,
		listing.HostID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	listing.ID = id
	listing.CreatedAt = now
	listing.UpdatedAt = now
	return nil
}

func (db *DB) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

	var listing models.Listing
	err := scanListing(db.QueryRowContext(ctx, query, id), &listing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

func (db *DB) GetListings(ctx context.Context) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := scanListing(rows, l); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (db *DB) UpdateListing(ctx context.Context, listing *models.Listing) error {
	images, err := encodeImageURLs(listing.ImageURLs)
	if err != nil {
		return err
	}

	query := `UPDATE listings SET title = ?, description = ?, price_per_night = ?,
	                 location = ?, image_urls = ?, max_reservations = ?, updated_at = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		listing.Title,
		listing.Description,
		listing.PricePerNight,
		listing.Location,
		images,
		listing.MaxReservations,
		time.Now(),
		listing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (db *DB) DeleteListing(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrListingNotFound
	}
	return nil
}
