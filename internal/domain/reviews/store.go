package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gigrate/internal/infra/dbx"
	"gigrate/internal/params"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, reviewID int64) (*Review, error)
	Update(ctx context.Context, reviewID, authorID int64, p UpdateParams) (*Review, bool, error)
	Delete(ctx context.Context, reviewID, authorID int64) (Target, error)
	ListByTarget(ctx context.Context, target Target, pg *params.Pagination) ([]Review, error)
	ListByUser(ctx context.Context, userID int64, pg *params.Pagination) ([]Review, error)
	FindUserReviewForTarget(ctx context.Context, userID int64, target Target) (*Review, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func targetColumn(t Target) string {
	if t.Kind == TargetBand {
		return "band_id"
	}
	return "venue_id"
}

const selectColumns = `
	r.id, r.user_id, r.venue_id, r.band_id, r.rating, r.title, r.content,
	r.event_date, r.image_urls, r.helpful_count, r.is_verified,
	r.created_at, r.updated_at`

func scanReview(row pgx.Row, rv *Review, joined bool) error {
	dest := []any{
		&rv.ID, &rv.UserID, &rv.VenueID, &rv.BandID, &rv.Rating, &rv.Title,
		&rv.Content, &rv.EventDate, &rv.ImageURLs, &rv.HelpfulCount,
		&rv.IsVerified, &rv.CreatedAt, &rv.UpdatedAt,
	}
	if joined {
		dest = append(dest, &rv.UserName, &rv.AvatarURL)
	}
	return row.Scan(dest...)
}

// Create inserts the review. The one-review-per-user-per-target rule is
// enforced by partial unique indexes over non-deleted rows; a violation
// surfaces as ErrDuplicateReview.
func (r *Repository) Create(ctx context.Context, review *Review) error {
	if err := review.Validate(); err != nil {
		return err
	}

	query := `
        INSERT INTO reviews (user_id, venue_id, band_id, rating, title, content, event_date, image_urls)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, helpful_count, is_verified, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		review.UserID,
		review.VenueID,
		review.BandID,
		review.Rating,
		review.Title,
		review.Content,
		review.EventDate,
		review.ImageURLs,
	).Scan(&review.ID, &review.HelpfulCount, &review.IsVerified, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrDuplicateReview
			case "23503":
				return ErrTargetMissing
			}
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	query := `
        SELECT ` + selectColumns + `, u.first_name, u.profile_picture_url
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        WHERE r.id = $1 AND r.deleted_at IS NULL
    `
	var rv Review
	err := scanReview(r.db.QueryRow(ctx, query, reviewID), &rv, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// lockOwned loads the review row FOR UPDATE and checks ownership. The row
// lock keeps the later aggregate recompute ordered behind this mutation.
func (r *Repository) lockOwned(ctx context.Context, reviewID, authorID int64) (*Review, error) {
	query := `
        SELECT user_id, venue_id, band_id, rating
        FROM reviews
        WHERE id = $1 AND deleted_at IS NULL
        FOR UPDATE
    `
	var rv Review
	rv.ID = reviewID
	err := r.db.QueryRow(ctx, query, reviewID).Scan(&rv.UserID, &rv.VenueID, &rv.BandID, &rv.Rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rv.UserID != authorID {
		return nil, ErrNotOwner
	}
	return &rv, nil
}

// Update applies the author-editable fields and reports whether the rating
// changed, so the caller knows to recompute the target aggregate. Must run
// inside a transaction.
func (r *Repository) Update(ctx context.Context, reviewID, authorID int64, p UpdateParams) (*Review, bool, error) {
	if err := p.Validate(); err != nil {
		return nil, false, err
	}

	current, err := r.lockOwned(ctx, reviewID, authorID)
	if err != nil {
		return nil, false, err
	}

	setClauses := []string{"updated_at = now()"}
	args := []any{reviewID}

	add := func(col string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	ratingChanged := false
	if p.Rating != nil && *p.Rating != current.Rating {
		add("rating", *p.Rating)
		ratingChanged = true
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Content != nil {
		add("content", *p.Content)
	}
	if p.EventDate != nil {
		add("event_date", *p.EventDate)
	}
	if p.ImageURLs != nil {
		add("image_urls", p.ImageURLs)
	}

	query := fmt.Sprintf(`
        UPDATE reviews SET %s
        WHERE id = $1 AND deleted_at IS NULL
        RETURNING `+strings.ReplaceAll(selectColumns, "r.", ""),
		strings.Join(setClauses, ", "))

	var rv Review
	if err := scanReview(r.db.QueryRow(ctx, query, args...), &rv, false); err != nil {
		return nil, false, err
	}
	return &rv, ratingChanged, nil
}

// Delete soft-deletes the review and returns its target so the caller can
// recompute the aggregate. Deleting an already-deleted review reports
// ErrNotFound so double-delete races stay visible.
func (r *Repository) Delete(ctx context.Context, reviewID, authorID int64) (Target, error) {
	current, err := r.lockOwned(ctx, reviewID, authorID)
	if err != nil {
		return Target{}, err
	}

	tag, err := r.db.Exec(ctx, `
        UPDATE reviews SET deleted_at = now(), updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
    `, reviewID)
	if err != nil {
		return Target{}, err
	}
	if tag.RowsAffected() == 0 {
		return Target{}, ErrNotFound
	}
	return current.Target(), nil
}

func (r *Repository) ListByTarget(ctx context.Context, target Target, pg *params.Pagination) ([]Review, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	col := targetColumn(target)

	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE `+col+` = $1 AND deleted_at IS NULL`,
		target.ID,
	).Scan(&total)
	if err != nil {
		return nil, err
	}
	pg.ComputeMeta(total)

	query := `
        SELECT ` + selectColumns + `, u.first_name, u.profile_picture_url
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        WHERE r.` + col + ` = $1 AND r.deleted_at IS NULL
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, target.ID, pg.Limit, pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviews(rows, true)
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, pg *params.Pagination) ([]Review, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE user_id = $1 AND deleted_at IS NULL`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, err
	}
	pg.ComputeMeta(total)

	query := `
        SELECT ` + selectColumns + `
        FROM reviews r
        WHERE r.user_id = $1 AND r.deleted_at IS NULL
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, userID, pg.Limit, pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviews(rows, false)
}

func (r *Repository) FindUserReviewForTarget(ctx context.Context, userID int64, target Target) (*Review, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	query := `
        SELECT ` + selectColumns + `
        FROM reviews r
        WHERE r.user_id = $1 AND r.` + targetColumn(target) + ` = $2 AND r.deleted_at IS NULL
    `
	var rv Review
	err := scanReview(r.db.QueryRow(ctx, query, userID, target.ID), &rv, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}

func collectReviews(rows pgx.Rows, joined bool) ([]Review, error) {
	var reviews []Review
	for rows.Next() {
		var rv Review
		if err := scanReview(rows, &rv, joined); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
