// Package badges holds the badge catalog and the achievement engine that
// turns user activity counters into idempotent badge grants.
package badges

import (
	"context"
	"fmt"

	"gigrate/internal/domain/stats"
)

// Engine evaluates the badge catalog against a user's activity snapshot.
// It is safe to run concurrently and repeatedly for the same user: each
// grant is its own atomic insert guarded by the (user, badge) uniqueness
// constraint, so racing evaluation passes cannot double-grant or fail.
type Engine struct {
	store     Store
	projector stats.Projector
}

func NewEngine(store Store, projector stats.Projector) *Engine {
	return &Engine{store: store, projector: projector}
}

// EvaluateAndAward grants every catalog badge whose threshold the user's
// snapshot meets and that they don't already hold, and returns only the
// badges granted by this call. When a counter jumps past several tiers at
// once, all newly eligible tiers are granted in the same pass. An empty
// result is the common case.
//
// Grants are deliberately not batched into one transaction: a failure
// partway through leaves earlier grants committed, and the next pass picks
// up the rest.
func (e *Engine) EvaluateAndAward(ctx context.Context, userID int64) ([]Badge, error) {
	snap, err := e.projector.Project(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot for user %d: %w", ErrEvaluation, userID, err)
	}

	catalog, err := e.store.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load catalog: %w", ErrEvaluation, err)
	}

	earned, err := e.store.EarnedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load earned set for user %d: %w", ErrEvaluation, userID, err)
	}

	granted := []Badge{}
	for _, b := range catalog {
		if _, held := earned[b.ID]; held {
			continue
		}
		if b.Type.Counter(snap) < b.Threshold {
			continue
		}
		inserted, err := e.store.Grant(ctx, userID, b.ID)
		if err != nil {
			// Earlier grants in this pass are already durable.
			return granted, fmt.Errorf("%w: grant badge %d to user %d: %w", ErrEvaluation, b.ID, userID, err)
		}
		if inserted {
			granted = append(granted, b)
		}
	}
	return granted, nil
}

// Progress reports, for every catalog badge, how close the user is.
func (e *Engine) Progress(ctx context.Context, userID int64) ([]Progress, error) {
	snap, err := e.projector.Project(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot for user %d: %w", ErrEvaluation, userID, err)
	}

	catalog, err := e.store.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load catalog: %w", ErrEvaluation, err)
	}

	earned, err := e.store.EarnedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load earned set for user %d: %w", ErrEvaluation, userID, err)
	}

	progress := make([]Progress, 0, len(catalog))
	for _, b := range catalog {
		_, isEarned := earned[b.ID]
		current := b.Type.Counter(snap)
		percent := PercentComplete(current, b.Threshold)
		progress = append(progress, Progress{
			Badge:           b,
			CurrentCount:    current,
			IsEarned:        isEarned,
			PercentComplete: percent,
			Tier:            TierLabel(percent, isEarned),
		})
	}
	return progress, nil
}
