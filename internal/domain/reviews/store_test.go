package reviews

import (
	"context"
	"errors"
	"testing"
)

// A nil Querier would panic on any query, so these tests prove validation
// short-circuits before the database is touched.

func TestCreateValidatesBeforeQuerying(t *testing.T) {
	repo := NewRepository(nil)
	venueID := int64(3)

	err := repo.Create(context.Background(), &Review{UserID: 1, VenueID: &venueID, Rating: 9})
	if !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}

	err = repo.Create(context.Background(), &Review{UserID: 1, Rating: 4})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestFindUserReviewForTargetRejectsBadTarget(t *testing.T) {
	repo := NewRepository(nil)

	for _, target := range []Target{
		{},
		{Kind: "album", ID: 5},
		VenueTarget(0),
	} {
		_, err := repo.FindUserReviewForTarget(context.Background(), 1, target)
		if !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("target %+v: expected ErrInvalidTarget, got %v", target, err)
		}
	}
}

func TestUpdateValidatesBeforeQuerying(t *testing.T) {
	repo := NewRepository(nil)

	bad := 0
	_, _, err := repo.Update(context.Background(), 1, 1, UpdateParams{Rating: &bad})
	if !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
}
