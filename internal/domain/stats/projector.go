// Package stats derives a user's activity counters from the review and
// helpfulness data. Pure read path, no side effects.
package stats

import (
	"context"

	"gigrate/internal/infra/dbx"
)

// Snapshot is the computed activity picture for one user at one moment.
// Not persisted anywhere.
type Snapshot struct {
	Reviews              int `json:"reviews"`
	DistinctVenues       int `json:"distinct_venues"`
	DistinctBands        int `json:"distinct_bands"`
	ReviewsWithEventDate int `json:"reviews_with_event_date"`
	HelpfulVotesReceived int `json:"helpful_votes_received"`
}

type Projector interface {
	Project(ctx context.Context, userID int64) (Snapshot, error)
}

type SQLProjector struct {
	db dbx.Querier
}

func NewProjector(q dbx.Querier) *SQLProjector {
	return &SQLProjector{db: q}
}

// Project counts over the user's non-deleted reviews plus the helpful votes
// their reviews have collected.
func (p *SQLProjector) Project(ctx context.Context, userID int64) (Snapshot, error) {
	var snap Snapshot
	query := `
        SELECT
            COUNT(r.id),
            COUNT(DISTINCT r.venue_id),
            COUNT(DISTINCT r.band_id),
            COUNT(r.id) FILTER (WHERE r.event_date IS NOT NULL),
            COALESCE(SUM(r.helpful_count), 0)
        FROM reviews r
        WHERE r.user_id = $1 AND r.deleted_at IS NULL
    `
	err := p.db.QueryRow(ctx, query, userID).Scan(
		&snap.Reviews,
		&snap.DistinctVenues,
		&snap.DistinctBands,
		&snap.ReviewsWithEventDate,
		&snap.HelpfulVotesReceived,
	)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
