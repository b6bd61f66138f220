package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooWeak        = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrSeriesNameRequired     = errors.New("series name is required")
	ErrSeriesInvalidDateRange = errors.New("series end date must not be before its start date")
	ErrSeriesInvalidStatus    = errors.New("invalid series status provided")
	ErrEventNameRequired      = errors.New("event name is required")
	ErrEventInvalidStatus     = errors.New("invalid event status provided")
	ErrInvalidHoleNumber      = errors.New("hole number must be between 1 and 18")
	ErrInvalidPar             = errors.New("hole par must be between 3 and 6")
	ErrInvalidStrokes         = errors.New("strokes must be at least 1")
	ErrInvalidSlope           = errors.New("tee slope rating must be between 55 and 155")
	ErrInvitationNotPending   = errors.New("invitation has already been responded to")
	ErrRoundAlreadyCompleted  = errors.New("round is already completed")
	ErrNoteTextRequired       = errors.New("note text is required")

	// Conflicts
	ErrConflict            = errors.New("resource already exists")
	ErrEmailConflict       = errors.New("email address is already in use")
	ErrParticipantConflict = errors.New("user is already a participant")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors for clearer context
	ErrUserNotFound        = errors.New("user not found")
	ErrSeriesNotFound      = errors.New("series not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRoundNotFound       = errors.New("round not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrHoleNotFound        = errors.New("hole not found")
	ErrTeeNotFound         = errors.New("course tee not found")
	ErrBagNotFound         = errors.New("bag not found")
	ErrNoteNotFound        = errors.New("note not found")
)
