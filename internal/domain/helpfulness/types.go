package helpfulness

import (
	"errors"
	"time"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrSelfVote       = errors.New("users cannot vote on their own review")
)

// Vote is one user's helpful/not-helpful verdict on a review. The
// (voter, review) pair is the identity; re-voting overwrites.
type Vote struct {
	VoterID   int64     `json:"voter_id"`
	ReviewID  int64     `json:"review_id"`
	IsHelpful bool      `json:"is_helpful"`
	CreatedAt time.Time `json:"created_at"`
}
