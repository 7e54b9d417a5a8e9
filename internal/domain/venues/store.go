package venues

import (
	"context"
	"errors"

	"gigrate/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, venueID int64) (*Venue, error)
	Exists(ctx context.Context, venueID int64) (bool, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, venue *Venue) error {
	query := `
        INSERT INTO venues (name, address, city, description, capacity, image_urls)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, average_rating, total_reviews, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		venue.Name,
		venue.Address,
		venue.City,
		venue.Description,
		venue.Capacity,
		venue.ImageURLs,
	).Scan(&venue.ID, &venue.AverageRating, &venue.TotalReviews, &venue.CreatedAt, &venue.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, venueID int64) (*Venue, error) {
	query := `
        SELECT id, name, address, city, description, capacity, image_urls,
               average_rating, total_reviews, created_at, updated_at
        FROM venues
        WHERE id = $1
    `
	var v Venue
	err := r.db.QueryRow(ctx, query, venueID).Scan(
		&v.ID, &v.Name, &v.Address, &v.City, &v.Description, &v.Capacity,
		&v.ImageURLs, &v.AverageRating, &v.TotalReviews, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *Repository) Exists(ctx context.Context, venueID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM venues WHERE id = $1)`, venueID).Scan(&exists)
	return exists, err
}
