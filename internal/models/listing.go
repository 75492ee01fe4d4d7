package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Listing struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	PricePerNight   decimal.Decimal `json:"price_per_night"`
	Location        string          `json:"location"`
	ImageURLs       []string        `json:"image_urls"`
	MaxReservations int64           `json:"max_reservations"`
	HostID          int64           `json:"host_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
