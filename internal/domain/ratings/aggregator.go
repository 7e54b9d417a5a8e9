// Package ratings keeps the denormalized average_rating / total_reviews
// columns on venues and bands in step with the review rows.
package ratings

import (
	"context"
	"errors"
	"fmt"

	"gigrate/internal/domain/reviews"
	"gigrate/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

// ErrAggregation marks a failed recompute. The caller must roll back the
// whole mutation: a committed review the aggregate doesn't reflect is worse
// than a rejected request.
var ErrAggregation = errors.New("rating aggregation failed")

var ErrTargetNotFound = errors.New("review target not found")

type Aggregator struct {
	db dbx.Querier
}

func NewAggregator(q dbx.Querier) *Aggregator {
	return &Aggregator{db: q}
}

func targetTable(t reviews.Target) string {
	if t.Kind == reviews.TargetBand {
		return "bands"
	}
	return "venues"
}

// Recompute rereads the non-deleted review set for the target and writes
// average_rating / total_reviews back to its row. It must run inside the
// same transaction as the review mutation that made the set change.
//
// The FOR UPDATE lock on the target row is the serialization point: two
// transactions touching the same venue or band queue up here, so the second
// recompute always sees the first one's committed review. Mutations against
// different targets never contend.
func (a *Aggregator) Recompute(ctx context.Context, target reviews.Target) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrAggregation, err)
	}

	table := targetTable(target)
	col := "venue_id"
	if target.Kind == reviews.TargetBand {
		col = "band_id"
	}

	var id int64
	err := a.db.QueryRow(ctx,
		`SELECT id FROM `+table+` WHERE id = $1 FOR UPDATE`,
		target.ID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrTargetNotFound, target)
		}
		return fmt.Errorf("%w: lock %s: %w", ErrAggregation, target, err)
	}

	query := `
        UPDATE ` + table + ` SET
            average_rating = sub.avg_rating,
            total_reviews = sub.review_count
        FROM (
            SELECT
                COALESCE(AVG(rating), 0) AS avg_rating,
                COUNT(id) AS review_count
            FROM reviews
            WHERE ` + col + ` = $1 AND deleted_at IS NULL
        ) sub
        WHERE id = $1
    `
	if _, err := a.db.Exec(ctx, query, target.ID); err != nil {
		return fmt.Errorf("%w: recompute %s: %w", ErrAggregation, target, err)
	}
	return nil
}

// Stats reads a target's denormalized aggregate.
func (a *Aggregator) Stats(ctx context.Context, target reviews.Target) (total int, average float64, err error) {
	if err := target.Validate(); err != nil {
		return 0, 0, err
	}
	err = a.db.QueryRow(ctx,
		`SELECT total_reviews, average_rating FROM `+targetTable(target)+` WHERE id = $1`,
		target.ID,
	).Scan(&total, &average)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrTargetNotFound
		}
		return 0, 0, err
	}
	return total, average, nil
}
