package models

import "time"

// NoteResourceType tags what a note is attached to.
type NoteResourceType string

const (
	NoteResourceRound  NoteResourceType = "round"
	NoteResourceEvent  NoteResourceType = "event"
	NoteResourceSeries NoteResourceType = "series"
	NoteResourceCourse NoteResourceType = "course"
)

// UserNote is a free-text note scoped to its author, optionally linked to a
// round, event, series or course.
type UserNote struct {
	ID           int               `json:"id" db:"id"`
	UserID       int               `json:"user_id" db:"user_id"`
	NoteText     string            `json:"note_text" db:"note_text"`
	ResourceID   *int              `json:"resource_id,omitempty" db:"resource_id"`
	ResourceType *NoteResourceType `json:"resource_type,omitempty" db:"resource_type"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}
