package models

import "time"

// RoundStatus tracks a round from first tee to the clubhouse.
type RoundStatus string

const (
	RoundStatusInProgress RoundStatus = "in_progress"
	RoundStatusCompleted  RoundStatus = "completed"
)

// Round is one user's play-through of a course, optionally tied to an event.
type Round struct {
	ID         int         `json:"id" db:"id"`
	EventID    *int        `json:"event_id,omitempty" db:"event_id"`
	UserID     int         `json:"user_id" db:"user_id"`
	CourseID   int         `json:"course_id" db:"course_id"`
	TeeID      int         `json:"tee_id" db:"tee_id"`
	BagID      int         `json:"bag_id" db:"bag_id"`
	RoundDate  time.Time   `json:"round_date" db:"round_date"`
	Status     RoundStatus `json:"status" db:"status"`
	TotalScore *int        `json:"total_score,omitempty" db:"total_score"`
	Weather    *string     `json:"weather,omitempty" db:"weather"`
	Condition  *string     `json:"course_condition,omitempty" db:"course_condition"`
	Notes      *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`

	Scores []HoleScore `json:"scores,omitempty" db:"-"`
}

// HoleScore is one hole's result within a round. One row per (round, hole).
type HoleScore struct {
	ID                int   `json:"id" db:"id"`
	RoundID           int   `json:"round_id" db:"round_id"`
	HoleNumber        int   `json:"hole_number" db:"hole_number"`
	Strokes           int   `json:"strokes" db:"strokes"`
	Putts             *int  `json:"putts,omitempty" db:"putts"`
	FairwayHit        *bool `json:"fairway_hit,omitempty" db:"fairway_hit"`
	GreenInRegulation *bool `json:"green_in_regulation,omitempty" db:"green_in_regulation"`
	PenaltyStrokes    int   `json:"penalty_strokes" db:"penalty_strokes"`
}

// Bag is a set of clubs carrying its own handicap index. A user may keep
// separate bags (e.g. full set vs. travel set) with independent handicaps.
type Bag struct {
	ID            int       `json:"id" db:"id"`
	UserID        int       `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description,omitempty" db:"description"`
	HandicapIndex *float64  `json:"handicap_index,omitempty" db:"handicap_index"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
