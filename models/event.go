package models

import "time"

// EventStatus matches the event_status ENUM in the database.
type EventStatus string

const (
	EventStatusScheduled  EventStatus = "scheduled"
	EventStatusUpcoming   EventStatus = "upcoming"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusCancelled  EventStatus = "cancelled"
)

// EventInviteStatus tracks a single user's invitation to one event.
type EventInviteStatus string

const (
	EventInviteInvited   EventInviteStatus = "invited"
	EventInviteConfirmed EventInviteStatus = "confirmed"
	EventInviteDeclined  EventInviteStatus = "declined"
	EventInviteWithdrawn EventInviteStatus = "withdrawn"
)

// Event is a single competitive occurrence, optionally part of a series.
type Event struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description *string     `json:"description,omitempty" db:"description"`
	EventDate   time.Time   `json:"event_date" db:"event_date"`
	Status      EventStatus `json:"status" db:"status"`
	SeriesID    *int        `json:"series_id,omitempty" db:"series_id"`
	CourseID    *int        `json:"course_id,omitempty" db:"course_id"`
	CreatedBy   int         `json:"created_by" db:"created_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	// EventOrder is populated from the series_events ordering row when the
	// event belongs to a series.
	EventOrder *int `json:"event_order,omitempty" db:"-"`

	Participants []EventParticipant `json:"participants,omitempty" db:"-"`
}

// SeriesEvent is the ordering row linking an event into its series.
type SeriesEvent struct {
	SeriesID   int `json:"series_id" db:"series_id"`
	EventID    int `json:"event_id" db:"event_id"`
	EventOrder int `json:"event_order" db:"event_order"`
}

// EventParticipant is the (event, user) invitation row, unique per pair.
type EventParticipant struct {
	ID             int               `json:"id" db:"id"`
	EventID        int               `json:"event_id" db:"event_id"`
	UserID         int               `json:"user_id" db:"user_id"`
	Status         EventInviteStatus `json:"status" db:"status"`
	InvitationDate time.Time         `json:"invitation_date" db:"invitation_date"`
	ResponseDate   *time.Time        `json:"response_date,omitempty" db:"response_date"`

	User *User `json:"user,omitempty" db:"-"`
}
