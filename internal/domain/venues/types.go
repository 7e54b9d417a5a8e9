package venues

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("venue not found")

// Venue carries the denormalized aggregate fields (average_rating,
// total_reviews) that the rating aggregator maintains. Nothing else writes
// them.
type Venue struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Description   *string   `json:"description,omitempty"`
	Capacity      *int      `json:"capacity,omitempty"`
	ImageURLs     []string  `json:"image_urls,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
