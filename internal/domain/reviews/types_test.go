package reviews

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRejectsBadRating(t *testing.T) {
	venueID := int64(3)
	for _, rating := range []int{0, -1, 6, 100} {
		rv := Review{UserID: 1, VenueID: &venueID, Rating: rating}
		if err := rv.Validate(); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
	for rating := 1; rating <= 5; rating++ {
		rv := Review{UserID: 1, VenueID: &venueID, Rating: rating}
		if err := rv.Validate(); err != nil {
			t.Errorf("rating %d: unexpected error %v", rating, err)
		}
	}
}

func TestValidateRejectsAmbiguousTarget(t *testing.T) {
	venueID, bandID := int64(3), int64(4)

	both := Review{UserID: 1, VenueID: &venueID, BandID: &bandID, Rating: 4}
	if err := both.Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("both targets set: expected ErrInvalidTarget, got %v", err)
	}

	neither := Review{UserID: 1, Rating: 4}
	if err := neither.Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("no target set: expected ErrInvalidTarget, got %v", err)
	}
}

func TestSetTarget(t *testing.T) {
	var rv Review
	if err := rv.SetTarget(BandTarget(9)); err != nil {
		t.Fatalf("set band target: %v", err)
	}
	if rv.BandID == nil || *rv.BandID != 9 || rv.VenueID != nil {
		t.Fatalf("expected band target only, got venue=%v band=%v", rv.VenueID, rv.BandID)
	}

	// Switching sides clears the old one.
	if err := rv.SetTarget(VenueTarget(2)); err != nil {
		t.Fatalf("set venue target: %v", err)
	}
	if rv.VenueID == nil || *rv.VenueID != 2 || rv.BandID != nil {
		t.Fatalf("expected venue target only, got venue=%v band=%v", rv.VenueID, rv.BandID)
	}

	if got := rv.Target(); got != VenueTarget(2) {
		t.Fatalf("round trip target mismatch: %v", got)
	}

	if err := rv.SetTarget(Target{Kind: "album", ID: 1}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for unknown kind, got %v", err)
	}
	if err := rv.SetTarget(VenueTarget(0)); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for zero id, got %v", err)
	}
}

func TestUpdateParamsValidate(t *testing.T) {
	bad := 7
	if err := (UpdateParams{Rating: &bad}).Validate(); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}

	good := 3
	title := "great sound"
	p := UpdateParams{Rating: &good, Title: &title}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Empty() {
		t.Fatal("params with fields should not be empty")
	}
	if !(UpdateParams{}).Empty() {
		t.Fatal("zero params should be empty")
	}
}

func TestUpdateParamsValidateLengthCaps(t *testing.T) {
	long := strings.Repeat("x", 500)
	if err := (UpdateParams{Title: &long}).Validate(); !errors.Is(err, ErrTitleTooLong) {
		t.Fatalf("500-char title: expected ErrTitleTooLong, got %v", err)
	}

	wall := strings.Repeat("y", 4001)
	if err := (UpdateParams{Content: &wall}).Validate(); !errors.Is(err, ErrContentTooLong) {
		t.Fatalf("4001-char content: expected ErrContentTooLong, got %v", err)
	}

	// Limits are counted in runes like varchar, not bytes.
	atCap := strings.Repeat("é", 120)
	body := strings.Repeat("ü", 4000)
	if err := (UpdateParams{Title: &atCap, Content: &body}).Validate(); err != nil {
		t.Fatalf("fields at the cap: unexpected error %v", err)
	}
}
