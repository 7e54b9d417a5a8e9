package bands

import (
	"context"
	"errors"

	"gigrate/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, band *Band) error
	GetByID(ctx context.Context, bandID int64) (*Band, error)
	Exists(ctx context.Context, bandID int64) (bool, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, band *Band) error {
	query := `
        INSERT INTO bands (name, genre, hometown, description, image_urls)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, average_rating, total_reviews, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		band.Name,
		band.Genre,
		band.Hometown,
		band.Description,
		band.ImageURLs,
	).Scan(&band.ID, &band.AverageRating, &band.TotalReviews, &band.CreatedAt, &band.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, bandID int64) (*Band, error) {
	query := `
        SELECT id, name, genre, hometown, description, image_urls,
               average_rating, total_reviews, created_at, updated_at
        FROM bands
        WHERE id = $1
    `
	var b Band
	err := r.db.QueryRow(ctx, query, bandID).Scan(
		&b.ID, &b.Name, &b.Genre, &b.Hometown, &b.Description,
		&b.ImageURLs, &b.AverageRating, &b.TotalReviews, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repository) Exists(ctx context.Context, bandID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bands WHERE id = $1)`, bandID).Scan(&exists)
	return exists, err
}
