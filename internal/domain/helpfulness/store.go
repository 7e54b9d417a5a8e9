// Package helpfulness records helpful/not-helpful votes on reviews and
// keeps the denormalized helpful_count on each review row honest.
package helpfulness

import (
	"context"
	"errors"

	"gigrate/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	MarkHelpful(ctx context.Context, reviewID, voterID int64, isHelpful bool) (*Vote, error)
	HelpfulCount(ctx context.Context, reviewID int64) (int, error)
	GetVote(ctx context.Context, reviewID, voterID int64) (*Vote, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

// MarkHelpful upserts the voter's vote and recounts the review's
// helpful_count from true votes. Must run inside a transaction so the
// counter never reflects a partial vote set; the FOR UPDATE on the review
// row serializes concurrent voters on the same review.
func (r *Repository) MarkHelpful(ctx context.Context, reviewID, voterID int64, isHelpful bool) (*Vote, error) {
	var authorID int64
	err := r.db.QueryRow(ctx, `
        SELECT user_id FROM reviews
        WHERE id = $1 AND deleted_at IS NULL
        FOR UPDATE
    `, reviewID).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if authorID == voterID {
		return nil, ErrSelfVote
	}

	vote := &Vote{ReviewID: reviewID, VoterID: voterID, IsHelpful: isHelpful}
	err = r.db.QueryRow(ctx, `
        INSERT INTO helpfulness_votes (voter_id, review_id, is_helpful)
        VALUES ($1, $2, $3)
        ON CONFLICT (voter_id, review_id)
        DO UPDATE SET is_helpful = EXCLUDED.is_helpful, created_at = now()
        RETURNING created_at
    `, voterID, reviewID, isHelpful).Scan(&vote.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = r.db.Exec(ctx, `
        UPDATE reviews SET helpful_count = (
            SELECT COUNT(*) FROM helpfulness_votes
            WHERE review_id = $1 AND is_helpful = true
        )
        WHERE id = $1
    `, reviewID)
	if err != nil {
		return nil, err
	}
	return vote, nil
}

func (r *Repository) HelpfulCount(ctx context.Context, reviewID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
        SELECT helpful_count FROM reviews
        WHERE id = $1 AND deleted_at IS NULL
    `, reviewID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrReviewNotFound
		}
		return 0, err
	}
	return count, nil
}

// GetVote returns the voter's vote on a review, or nil when they have not
// voted yet.
func (r *Repository) GetVote(ctx context.Context, reviewID, voterID int64) (*Vote, error) {
	var vote Vote
	err := r.db.QueryRow(ctx, `
        SELECT voter_id, review_id, is_helpful, created_at
        FROM helpfulness_votes
        WHERE review_id = $1 AND voter_id = $2
    `, reviewID, voterID).Scan(&vote.VoterID, &vote.ReviewID, &vote.IsHelpful, &vote.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}
