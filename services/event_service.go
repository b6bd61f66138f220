package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

type CreateEventInput struct {
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	EventDate   time.Time           `json:"event_date"`
	Status      *models.EventStatus `json:"status"`
	SeriesID    *int                `json:"series_id"`
	CourseID    *int                `json:"course_id"`
}

type UpdateEventInput struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	EventDate   *time.Time          `json:"event_date"`
	Status      *models.EventStatus `json:"status"`
	CourseID    *int                `json:"course_id"`
}

type EventService interface {
	CreateEvent(ctx context.Context, creatorID int, input CreateEventInput) (*models.Event, error)
	GetEvent(ctx context.Context, id int, includeParticipants bool) (*models.Event, error)
	ListEvents(ctx context.Context, filter repositories.EventFilter) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, actorID, id int, input UpdateEventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, actorID, id int) error
	InviteParticipant(ctx context.Context, actorID, eventID, inviteeID int) (*models.EventParticipant, error)
	RemoveParticipant(ctx context.Context, actorID, participantID int) error
	RespondToInvitation(ctx context.Context, actorID, participantID int, accept bool) (*models.EventParticipant, error)
	AutoUpdateEventStatusesByDates(ctx context.Context) error
}

type eventService struct {
	tx              TxRunner
	eventRepo       repositories.EventRepository
	participantRepo repositories.EventParticipantRepository
	seriesRepo      repositories.SeriesRepository
	seriesPartRepo  repositories.SeriesParticipantRepository
	guard           *Guard
	logger          *slog.Logger
}

func NewEventService(
	tx TxRunner,
	eventRepo repositories.EventRepository,
	participantRepo repositories.EventParticipantRepository,
	seriesRepo repositories.SeriesRepository,
	seriesPartRepo repositories.SeriesParticipantRepository,
	guard *Guard,
	logger *slog.Logger,
) EventService {
	return &eventService{
		tx:              tx,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		seriesRepo:      seriesRepo,
		seriesPartRepo:  seriesPartRepo,
		guard:           guard,
		logger:          logger,
	}
}

func validEventStatus(s models.EventStatus) bool {
	switch s {
	case models.EventStatusScheduled, models.EventStatusUpcoming, models.EventStatusInProgress,
		models.EventStatusCompleted, models.EventStatusCancelled:
		return true
	}
	return false
}

// CreateEvent creates a standalone event, or an event nested under a series.
// A nested event gets the next event_order in its series and every active
// series participant is fanned out as an invited event participant. All of
// it happens in one transaction, so a failed ordering insert or fan-out
// leaves no orphan event behind.
func (s *eventService) CreateEvent(ctx context.Context, creatorID int, input CreateEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, ErrEventNameRequired
	}

	status := models.EventStatusScheduled
	if input.Status != nil {
		if !validEventStatus(*input.Status) {
			return nil, ErrEventInvalidStatus
		}
		status = *input.Status
	}

	if input.SeriesID != nil {
		series, err := s.seriesRepo.GetByID(ctx, *input.SeriesID)
		if err != nil {
			if errors.Is(err, repositories.ErrSeriesNotFound) {
				return nil, ErrSeriesNotFound
			}
			return nil, fmt.Errorf("failed to get series %d: %w", *input.SeriesID, err)
		}
		allowed, err := s.guard.CanManageSeries(ctx, creatorID, series)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrForbiddenOperation
		}
	}

	event := &models.Event{
		Name:        input.Name,
		Description: input.Description,
		EventDate:   input.EventDate,
		Status:      status,
		SeriesID:    input.SeriesID,
		CourseID:    input.CourseID,
		CreatedBy:   creatorID,
	}

	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		er := s.eventRepo.WithTx(tx)
		epr := s.participantRepo.WithTx(tx)
		spr := s.seriesPartRepo.WithTx(tx)

		if err := er.Create(ctx, event); err != nil {
			return err
		}
		if event.SeriesID == nil {
			return nil
		}

		next, err := er.NextEventOrder(ctx, *event.SeriesID)
		if err != nil {
			return err
		}
		if err := er.CreateSeriesEvent(ctx, &models.SeriesEvent{
			SeriesID:   *event.SeriesID,
			EventID:    event.ID,
			EventOrder: next,
		}); err != nil {
			return err
		}
		event.EventOrder = &next

		active := models.SeriesParticipantActive
		members, err := spr.ListBySeries(ctx, *event.SeriesID, &active, false)
		if err != nil {
			return err
		}
		invites := make([]*models.EventParticipant, 0, len(members))
		now := time.Now()
		for _, m := range members {
			invites = append(invites, &models.EventParticipant{
				EventID:        event.ID,
				UserID:         m.UserID,
				Status:         models.EventInviteInvited,
				InvitationDate: now,
			})
		}
		return epr.CreateBatch(ctx, invites)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int, includeParticipants bool) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}

	if event.SeriesID != nil {
		order, err := s.eventRepo.GetEventOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		event.EventOrder = order
	}

	if includeParticipants {
		participants, err := s.participantRepo.ListByEvent(ctx, id, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load participants of event %d: %w", id, err)
		}
		event.Participants = make([]models.EventParticipant, 0, len(participants))
		for _, p := range participants {
			event.Participants = append(event.Participants, *p)
		}
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter repositories.EventFilter) ([]*models.Event, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.eventRepo.List(ctx, filter)
}

func (s *eventService) UpdateEvent(ctx context.Context, actorID, id int, input UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}

	allowed, err := s.guard.CanManageEvent(ctx, actorID, event)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrEventNameRequired
		}
		event.Name = *input.Name
	}
	if input.Description != nil {
		event.Description = input.Description
	}
	if input.EventDate != nil {
		event.EventDate = *input.EventDate
	}
	if input.Status != nil {
		if !validEventStatus(*input.Status) {
			return nil, ErrEventInvalidStatus
		}
		event.Status = *input.Status
	}
	if input.CourseID != nil {
		event.CourseID = input.CourseID
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	return event, nil
}

// DeleteEvent removes the event with its invitations and its series
// ordering row in one transaction.
func (s *eventService) DeleteEvent(ctx context.Context, actorID, id int) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event %d: %w", id, err)
	}

	allowed, err := s.guard.CanManageEvent(ctx, actorID, event)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbiddenOperation
	}

	return s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.participantRepo.WithTx(tx).DeleteByEvent(ctx, id); err != nil {
			return err
		}
		if err := s.eventRepo.WithTx(tx).DeleteSeriesEvent(ctx, id); err != nil {
			return err
		}
		return s.eventRepo.WithTx(tx).Delete(ctx, id)
	})
}

func (s *eventService) InviteParticipant(ctx context.Context, actorID, eventID, inviteeID int) (*models.EventParticipant, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}

	allowed, err := s.guard.CanManageEvent(ctx, actorID, event)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}

	participant := &models.EventParticipant{
		EventID:        eventID,
		UserID:         inviteeID,
		Status:         models.EventInviteInvited,
		InvitationDate: time.Now(),
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrEventParticipantConflict) {
			return nil, ErrParticipantConflict
		}
		return nil, fmt.Errorf("failed to create event invitation: %w", err)
	}
	return participant, nil
}

func (s *eventService) RemoveParticipant(ctx context.Context, actorID, participantID int) error {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to get event participant %d: %w", participantID, err)
	}

	event, err := s.eventRepo.GetByID(ctx, participant.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event %d: %w", participant.EventID, err)
	}

	// Participants may remove themselves; otherwise event management rules apply.
	if participant.UserID != actorID {
		allowed, err := s.guard.CanManageEvent(ctx, actorID, event)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrForbiddenOperation
		}
	}
	return s.participantRepo.Delete(ctx, participantID)
}

func (s *eventService) RespondToInvitation(ctx context.Context, actorID, participantID int, accept bool) (*models.EventParticipant, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get event participant %d: %w", participantID, err)
	}

	if participant.UserID != actorID {
		return nil, ErrForbiddenOperation
	}
	if participant.Status != models.EventInviteInvited {
		return nil, ErrInvitationNotPending
	}

	now := time.Now()
	if accept {
		participant.Status = models.EventInviteConfirmed
	} else {
		participant.Status = models.EventInviteDeclined
	}
	participant.ResponseDate = &now

	if err := s.participantRepo.UpdateStatus(ctx, participantID, participant.Status, participant.ResponseDate); err != nil {
		return nil, fmt.Errorf("failed to update event invitation %d: %w", participantID, err)
	}
	return participant, nil
}

// AutoUpdateEventStatusesByDates advances event statuses on a timer:
// scheduled/upcoming events whose date has arrived become in_progress, and
// in_progress events older than a day become completed. Cancelled events are
// never touched.
func (s *eventService) AutoUpdateEventStatusesByDates(ctx context.Context) error {
	now := time.Now()
	due, err := s.eventRepo.ListDueForStatus(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list events due for status update: %w", err)
	}

	for _, event := range due {
		var next models.EventStatus
		switch event.Status {
		case models.EventStatusScheduled, models.EventStatusUpcoming:
			next = models.EventStatusInProgress
		case models.EventStatusInProgress:
			next = models.EventStatusCompleted
		default:
			continue
		}
		if err := s.eventRepo.UpdateStatus(ctx, event.ID, next); err != nil {
			s.logger.Error("failed to advance event status",
				slog.Int("event_id", event.ID), slog.String("to", string(next)), slog.Any("error", err))
			continue
		}
		s.logger.Info("event status advanced",
			slog.Int("event_id", event.ID),
			slog.String("from", string(event.Status)),
			slog.String("to", string(next)))
	}
	return nil
}
