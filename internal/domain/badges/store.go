package badges

import (
	"context"
	"errors"

	"gigrate/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Catalog(ctx context.Context) ([]Badge, error)
	GetByID(ctx context.Context, badgeID int64) (*Badge, error)
	EarnedByUser(ctx context.Context, userID int64) ([]UserBadge, error)
	EarnedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	Grant(ctx context.Context, userID, badgeID int64) (bool, error)
	RecentlyActiveUsers(ctx context.Context, limit int) ([]int64, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Catalog(ctx context.Context) ([]Badge, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, description, badge_type, threshold, icon
        FROM badges
        ORDER BY badge_type, threshold, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var catalog []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Type, &b.Threshold, &b.Icon); err != nil {
			return nil, err
		}
		catalog = append(catalog, b)
	}
	return catalog, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, badgeID int64) (*Badge, error) {
	var b Badge
	err := r.db.QueryRow(ctx, `
        SELECT id, name, description, badge_type, threshold, icon
        FROM badges WHERE id = $1
    `, badgeID).Scan(&b.ID, &b.Name, &b.Description, &b.Type, &b.Threshold, &b.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repository) EarnedByUser(ctx context.Context, userID int64) ([]UserBadge, error) {
	rows, err := r.db.Query(ctx, `
        SELECT ub.user_id, ub.badge_id, ub.earned_at,
               b.id, b.name, b.description, b.badge_type, b.threshold, b.icon
        FROM user_badges ub
        JOIN badges b ON b.id = ub.badge_id
        WHERE ub.user_id = $1
        ORDER BY ub.earned_at DESC, ub.badge_id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earned []UserBadge
	for rows.Next() {
		var ub UserBadge
		var b Badge
		err := rows.Scan(&ub.UserID, &ub.BadgeID, &ub.EarnedAt,
			&b.ID, &b.Name, &b.Description, &b.Type, &b.Threshold, &b.Icon)
		if err != nil {
			return nil, err
		}
		ub.Badge = &b
		earned = append(earned, ub)
	}
	return earned, rows.Err()
}

func (r *Repository) EarnedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Grant inserts a (user, badge) row. The primary key on (user_id, badge_id)
// is the whole idempotency story: a concurrent or repeated grant hits
// ON CONFLICT DO NOTHING and reports false instead of erroring.
func (r *Repository) Grant(ctx context.Context, userID, badgeID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO user_badges (user_id, badge_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, badge_id) DO NOTHING
    `, userID, badgeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RecentlyActiveUsers lists authors of reviews touched in the last day, for
// the periodic badge reconciliation sweep.
func (r *Repository) RecentlyActiveUsers(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
        SELECT DISTINCT user_id FROM reviews
        WHERE updated_at > now() - interval '1 day'
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
