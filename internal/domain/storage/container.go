package storage

import (
	"context"
	"fmt"

	"gigrate/internal/domain/badges"
	"gigrate/internal/domain/bands"
	"gigrate/internal/domain/helpfulness"
	"gigrate/internal/domain/pushtokens"
	"gigrate/internal/domain/ratings"
	"gigrate/internal/domain/reviews"
	"gigrate/internal/domain/stats"
	"gigrate/internal/domain/users"
	"gigrate/internal/domain/venues"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool        *pgxpool.Pool // needed so WithReviewTx can open transactions
	Users       users.Store
	Venues      venues.Store
	Bands       bands.Store
	Reviews     reviews.Store
	Helpfulness helpfulness.Store
	Ratings     *ratings.Aggregator
	Stats       stats.Projector
	Badges      badges.Store
	PushTokens  pushtokens.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:        db,
		Users:       users.NewRepository(db),
		Venues:      venues.NewRepository(db),
		Bands:       bands.NewRepository(db),
		Reviews:     reviews.NewRepository(db),
		Helpfulness: helpfulness.NewRepository(db),
		Ratings:     ratings.NewAggregator(db),
		Stats:       stats.NewProjector(db),
		Badges:      badges.NewRepository(db),
		PushTokens:  pushtokens.NewRepository(db),
	}
}

// ReviewTx is a tx-scoped set of repos for review mutations. A review
// write and the rating recompute it triggers live or die together here.
type ReviewTx struct {
	Reviews     *reviews.Repository
	Helpfulness *helpfulness.Repository
	Ratings     *ratings.Aggregator
}

// WithReviewTx runs a review unit-of-work atomically. Any error from fn
// rolls the whole thing back, including ratings.ErrAggregation: a review
// mutation whose aggregate update failed never commits.
func (c *Container) WithReviewTx(ctx context.Context, fn func(s *ReviewTx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	s := &ReviewTx{
		Reviews:     reviews.NewRepository(tx),
		Helpfulness: helpfulness.NewRepository(tx),
		Ratings:     ratings.NewAggregator(tx),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
