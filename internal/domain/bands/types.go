package bands

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("band not found")

// Band mirrors Venue as a review target: same denormalized aggregate
// fields, maintained only by the rating aggregator.
type Band struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Genre         string    `json:"genre"`
	Hometown      *string   `json:"hometown,omitempty"`
	Description   *string   `json:"description,omitempty"`
	ImageURLs     []string  `json:"image_urls,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
