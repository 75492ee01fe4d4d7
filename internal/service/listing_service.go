package service

import (
	"context"
	"fmt"

	"stayfinder/internal/domain"
	"stayfinder/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ListingService manages listing CRUD with host/admin authorization.
type ListingService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewListingService(repo domain.Repository, logger *zerolog.Logger) *ListingService {
	return &ListingService{repo: repo, logger: logger}
}

// CreateListingInput carries the host-supplied fields of a new listing.
type CreateListingInput struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	PricePerNight   decimal.Decimal `json:"price_per_night"`
	Location        string          `json:"location"`
	ImageURLs       []string        `json:"image_urls"`
	MaxReservations int64           `json:"max_reservations"`
}

// UpdateListingInput is a partial update; nil fields keep the stored value.
type UpdateListingInput struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	PricePerNight   *decimal.Decimal `json:"price_per_night"`
	Location        *string          `json:"location"`
	ImageURLs       []string         `json:"image_urls"`
	MaxReservations *int64           `json:"max_reservations"`
}

func (in CreateListingInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Location == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	if in.PricePerNight.IsNegative() {
		return fmt.Errorf("%w: price per night must not be negative", ErrValidation)
	}
	if in.MaxReservations < 1 {
		return fmt.Errorf("%w: max reservations must be at least 1", ErrValidation)
	}
	return nil
}

// CreateListing creates a listing owned by hostID.
func (s *ListingService) CreateListing(ctx context.Context, hostID int64, in CreateListingInput) (*models.Listing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		Title:           in.Title,
		Description:     in.Description,
		PricePerNight:   in.PricePerNight,
		Location:        in.Location,
		ImageURLs:       in.ImageURLs,
		MaxReservations: in.MaxReservations,
		HostID:          hostID,
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	return s.repo.GetListing(ctx, id)
}

func (s *ListingService) GetListings(ctx context.Context) ([]*models.Listing, error) {
	return s.repo.GetListings(ctx)
}

// UpdateListing applies the provided fields. Only the host or an admin may
// mutate a listing.
func (s *ListingService) UpdateListing(ctx context.Context, id int64, actor *models.User, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if listing.HostID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if in.Title != nil {
		listing.Title = *in.Title
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.PricePerNight != nil {
		listing.PricePerNight = *in.PricePerNight
	}
	if in.Location != nil {
		listing.Location = *in.Location
	}
	if in.ImageURLs != nil {
		listing.ImageURLs = in.ImageURLs
	}
	if in.MaxReservations != nil {
		listing.MaxReservations = *in.MaxReservations
	}

	if listing.Title == "" || listing.Location == "" {
		return nil, fmt.Errorf("%w: title and location are required", ErrValidation)
	}
	if listing.MaxReservations < 1 {
		return nil, fmt.Errorf("%w: max reservations must be at least 1", ErrValidation)
	}
	if listing.PricePerNight.IsNegative() {
		return nil, fmt.Errorf("%w: price per night must not be negative", ErrValidation)
	}

	if err := s.repo.UpdateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// DeleteListing removes the listing. Only the host or an admin may delete it.
func (s *ListingService) DeleteListing(ctx context.Context, id int64, actor *models.User) error {
	listing, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return err
	}

	if listing.HostID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	return s.repo.DeleteListing(ctx, id)
}
