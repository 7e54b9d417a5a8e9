package reviews

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrDuplicateReview = errors.New("user already reviewed this target")
	ErrNotOwner        = errors.New("review does not belong to this user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidTarget   = errors.New("review needs exactly one of venue or band")
	ErrTargetMissing   = errors.New("review target does not exist")
	ErrTitleTooLong    = errors.New("title exceeds 120 characters")
	ErrContentTooLong  = errors.New("content exceeds 4000 characters")
)

// Column limits, matching the reviews table.
const (
	maxTitleLen   = 120
	maxContentLen = 4000
)

type TargetKind string

const (
	TargetVenue TargetKind = "venue"
	TargetBand  TargetKind = "band"
)

// Target points a review at exactly one venue or band.
type Target struct {
	Kind TargetKind
	ID   int64
}

func VenueTarget(id int64) Target { return Target{Kind: TargetVenue, ID: id} }
func BandTarget(id int64) Target  { return Target{Kind: TargetBand, ID: id} }

func (t Target) Validate() error {
	if t.ID <= 0 {
		return ErrInvalidTarget
	}
	switch t.Kind {
	case TargetVenue, TargetBand:
		return nil
	default:
		return ErrInvalidTarget
	}
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%d", t.Kind, t.ID)
}

type Review struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	VenueID      *int64     `json:"venue_id,omitempty"`
	BandID       *int64     `json:"band_id,omitempty"`
	Rating       int        `json:"rating"` // 1-5
	Title        string     `json:"title,omitempty"`
	Content      string     `json:"content,omitempty"`
	EventDate    *time.Time `json:"event_date,omitempty"`
	ImageURLs    []string   `json:"image_urls,omitempty"`
	HelpfulCount int        `json:"helpful_count"`
	IsVerified   bool       `json:"is_verified"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Joined fields
	UserName  string  `json:"user_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`

	// Derived, not persisted
	ShareCode string `json:"share_code,omitempty"`
}

// Target returns the review's venue-or-band reference. Rows persisted
// through Create always have exactly one side set.
func (r *Review) Target() Target {
	if r.VenueID != nil {
		return VenueTarget(*r.VenueID)
	}
	if r.BandID != nil {
		return BandTarget(*r.BandID)
	}
	return Target{}
}

// SetTarget writes the tagged union back into the two nullable columns.
func (r *Review) SetTarget(t Target) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.VenueID, r.BandID = nil, nil
	id := t.ID
	switch t.Kind {
	case TargetVenue:
		r.VenueID = &id
	case TargetBand:
		r.BandID = &id
	}
	return nil
}

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if (r.VenueID == nil) == (r.BandID == nil) {
		return ErrInvalidTarget
	}
	return nil
}

// UpdateParams carries the author-editable fields of a review. Nil means
// leave the field alone.
type UpdateParams struct {
	Rating    *int       `json:"rating"`
	Title     *string    `json:"title"`
	Content   *string    `json:"content"`
	EventDate *time.Time `json:"event_date"`
	ImageURLs []string   `json:"image_urls"`
}

func (p UpdateParams) Empty() bool {
	return p.Rating == nil && p.Title == nil && p.Content == nil &&
		p.EventDate == nil && p.ImageURLs == nil
}

func (p UpdateParams) Validate() error {
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 5) {
		return ErrInvalidRating
	}
	if p.Title != nil && utf8.RuneCountInString(*p.Title) > maxTitleLen {
		return ErrTitleTooLong
	}
	if p.Content != nil && utf8.RuneCountInString(*p.Content) > maxContentLen {
		return ErrContentTooLong
	}
	return nil
}
