package badges

import (
	"errors"
	"time"

	"gigrate/internal/domain/stats"
)

var (
	ErrNotFound = errors.New("badge not found")
	// ErrEvaluation wraps catalog lookup or snapshot failures during a
	// badge evaluation pass.
	ErrEvaluation = errors.New("badge evaluation failed")
)

// Type names the activity counter a badge threshold is measured against.
type Type string

const (
	TypeReviewCount     Type = "review_count"
	TypeVenueExplorer   Type = "venue_explorer"
	TypeMusicLover      Type = "music_lover"
	TypeEventAttendance Type = "event_attendance"
	TypeHelpfulness     Type = "helpfulness"
)

// Counter picks the snapshot counter this badge type is measured by.
// Unknown types always read zero, so a stray catalog row can never be
// granted by accident.
func (t Type) Counter(snap stats.Snapshot) int {
	switch t {
	case TypeReviewCount:
		return snap.Reviews
	case TypeVenueExplorer:
		return snap.DistinctVenues
	case TypeMusicLover:
		return snap.DistinctBands
	case TypeEventAttendance:
		return snap.ReviewsWithEventDate
	case TypeHelpfulness:
		return snap.HelpfulVotesReceived
	default:
		return 0
	}
}

// Badge is a catalog entry. The catalog is seeded in the schema and
// immutable at runtime; several badges can share a Type at different
// thresholds (tiers).
type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        Type   `json:"badge_type"`
	Threshold   int    `json:"threshold"`
	Icon        string `json:"icon,omitempty"`
}

// UserBadge records a grant. (UserID, BadgeID) is unique forever; badges
// are never revoked.
type UserBadge struct {
	UserID   int64     `json:"user_id"`
	BadgeID  int64     `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`

	Badge *Badge `json:"badge,omitempty"`
}

// Progress reports how far a user is toward one catalog badge.
type Progress struct {
	Badge           Badge  `json:"badge"`
	CurrentCount    int    `json:"current_count"`
	IsEarned        bool   `json:"is_earned"`
	PercentComplete int    `json:"percent_complete"`
	Tier            string `json:"tier"`
}

// TierLabel is display-only and carries no persisted state.
func TierLabel(percent int, earned bool) string {
	switch {
	case earned:
		return "gold"
	case percent >= 50:
		return "silver"
	default:
		return "bronze"
	}
}

// PercentComplete is capped at 100 even when the counter overshoots the
// threshold before an evaluation pass runs.
func PercentComplete(current, threshold int) int {
	if threshold <= 0 {
		return 100
	}
	percent := current * 100 / threshold
	if percent > 100 {
		return 100
	}
	return percent
}
