package helpfulness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB models just enough of the reviews and helpfulness_votes tables to
// drive the repository, dispatching on the statement text.
type fakeDB struct {
	authors map[int64]int64 // review id -> author id
	deleted map[int64]bool
	votes   map[voteKey]bool
	counts  map[int64]int
}

type voteKey struct {
	voter  int64
	review int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		authors: make(map[int64]int64),
		deleted: make(map[int64]bool),
		votes:   make(map[voteKey]bool),
		counts:  make(map[int64]int),
	}
}

type fakeRow struct {
	err  error
	vals []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan arity mismatch: %d dest, %d vals", len(dest), len(r.vals))
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = r.vals[i].(int64)
		case *int:
			*v = r.vals[i].(int)
		case *bool:
			*v = r.vals[i].(bool)
		case *time.Time:
			*v = r.vals[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan dest %T", d)
		}
	}
	return nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "FOR UPDATE"):
		id := args[0].(int64)
		author, ok := f.authors[id]
		if !ok || f.deleted[id] {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{vals: []any{author}}

	case strings.Contains(sql, "INSERT INTO helpfulness_votes"):
		voter, review := args[0].(int64), args[1].(int64)
		f.votes[voteKey{voter, review}] = args[2].(bool)
		return fakeRow{vals: []any{time.Now()}}

	case strings.Contains(sql, "SELECT helpful_count"):
		id := args[0].(int64)
		if _, ok := f.authors[id]; !ok || f.deleted[id] {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{vals: []any{f.counts[id]}}

	case strings.Contains(sql, "FROM helpfulness_votes"):
		review, voter := args[0].(int64), args[1].(int64)
		helpful, ok := f.votes[voteKey{voter, review}]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{vals: []any{voter, review, helpful, time.Now()}}
	}
	return fakeRow{err: fmt.Errorf("unexpected queryrow: %s", sql)}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "UPDATE reviews SET helpful_count") {
		id := args[0].(int64)
		count := 0
		for k, helpful := range f.votes {
			if k.review == id && helpful {
				count++
			}
		}
		f.counts[id] = count
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func TestMarkHelpfulRevoteReplaces(t *testing.T) {
	db := newFakeDB()
	db.authors[10] = 1
	repo := NewRepository(db)
	ctx := context.Background()

	vote, err := repo.MarkHelpful(ctx, 10, 2, true)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if !vote.IsHelpful {
		t.Fatal("expected helpful vote")
	}
	if count, _ := repo.HelpfulCount(ctx, 10); count != 1 {
		t.Fatalf("after helpful vote: count = %d, want 1", count)
	}

	// Revoting flips the same ledger row, it does not add a second vote.
	vote, err = repo.MarkHelpful(ctx, 10, 2, false)
	if err != nil {
		t.Fatalf("revote: %v", err)
	}
	if vote.IsHelpful {
		t.Fatal("expected not-helpful vote after revote")
	}
	if count, _ := repo.HelpfulCount(ctx, 10); count != 0 {
		t.Fatalf("after revote to not-helpful: count = %d, want 0", count)
	}

	// A second voter counts independently.
	if _, err := repo.MarkHelpful(ctx, 10, 3, true); err != nil {
		t.Fatalf("second voter: %v", err)
	}
	if count, _ := repo.HelpfulCount(ctx, 10); count != 1 {
		t.Fatalf("two voters, one helpful: count = %d, want 1", count)
	}
}

func TestMarkHelpfulRejectsSelfVote(t *testing.T) {
	db := newFakeDB()
	db.authors[10] = 1
	repo := NewRepository(db)

	_, err := repo.MarkHelpful(context.Background(), 10, 1, true)
	if !errors.Is(err, ErrSelfVote) {
		t.Fatalf("expected ErrSelfVote, got %v", err)
	}
	if len(db.votes) != 0 {
		t.Fatal("self-vote must not be recorded")
	}
}

func TestMarkHelpfulMissingOrDeletedReview(t *testing.T) {
	db := newFakeDB()
	db.authors[10] = 1
	db.deleted[10] = true
	repo := NewRepository(db)
	ctx := context.Background()

	if _, err := repo.MarkHelpful(ctx, 10, 2, true); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("deleted review: expected ErrReviewNotFound, got %v", err)
	}
	if _, err := repo.MarkHelpful(ctx, 99, 2, true); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("missing review: expected ErrReviewNotFound, got %v", err)
	}
}

func TestGetVote(t *testing.T) {
	db := newFakeDB()
	db.authors[10] = 1
	repo := NewRepository(db)
	ctx := context.Background()

	vote, err := repo.GetVote(ctx, 10, 2)
	if err != nil {
		t.Fatalf("no vote yet: %v", err)
	}
	if vote != nil {
		t.Fatalf("expected nil vote before voting, got %+v", vote)
	}

	if _, err := repo.MarkHelpful(ctx, 10, 2, true); err != nil {
		t.Fatalf("vote: %v", err)
	}

	vote, err = repo.GetVote(ctx, 10, 2)
	if err != nil {
		t.Fatalf("get vote: %v", err)
	}
	if vote == nil || !vote.IsHelpful || vote.VoterID != 2 || vote.ReviewID != 10 {
		t.Fatalf("unexpected vote %+v", vote)
	}
}
