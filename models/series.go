package models

import "time"

// SeriesStatus matches the series_status ENUM in the database.
type SeriesStatus string

const (
	SeriesStatusDraft     SeriesStatus = "draft"
	SeriesStatusActive    SeriesStatus = "active"
	SeriesStatusCompleted SeriesStatus = "completed"
	SeriesStatusCancelled SeriesStatus = "cancelled"
)

// SeriesParticipantRole is the role of a user within one series.
type SeriesParticipantRole string

const (
	SeriesRoleAdmin       SeriesParticipantRole = "admin"
	SeriesRoleParticipant SeriesParticipantRole = "participant"
)

// SeriesParticipantStatus tracks the invitation lifecycle of a participant.
type SeriesParticipantStatus string

const (
	SeriesParticipantInvited   SeriesParticipantStatus = "invited"
	SeriesParticipantActive    SeriesParticipantStatus = "active"
	SeriesParticipantDeclined  SeriesParticipantStatus = "declined"
	SeriesParticipantWithdrawn SeriesParticipantStatus = "withdrawn"
)

// Series is a season-long competition grouping multiple events.
type Series struct {
	ID          int          `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description *string      `json:"description,omitempty" db:"description"`
	StartDate   time.Time    `json:"start_date" db:"start_date"`
	EndDate     time.Time    `json:"end_date" db:"end_date"`
	Status      SeriesStatus `json:"status" db:"status"`
	CreatedBy   int          `json:"created_by" db:"created_by"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`

	Participants []SeriesParticipant `json:"participants,omitempty" db:"-"`
}

// SeriesParticipant is the (series, user) membership row, unique per pair.
type SeriesParticipant struct {
	ID       int                     `json:"id" db:"id"`
	SeriesID int                     `json:"series_id" db:"series_id"`
	UserID   int                     `json:"user_id" db:"user_id"`
	Role     SeriesParticipantRole   `json:"role" db:"role"`
	Status   SeriesParticipantStatus `json:"status" db:"status"`
	JoinedAt *time.Time              `json:"joined_at,omitempty" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}
