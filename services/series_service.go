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

type CreateSeriesInput struct {
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	StartDate   time.Time            `json:"start_date"`
	EndDate     time.Time            `json:"end_date"`
	Status      *models.SeriesStatus `json:"status"`
}

// UpdateSeriesInput carries the whitelisted updatable fields. Owner, id and
// timestamps are deliberately absent.
type UpdateSeriesInput struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	Status      *models.SeriesStatus `json:"status"`
}

type SeriesService interface {
	CreateSeries(ctx context.Context, creatorID int, input CreateSeriesInput) (*models.Series, error)
	GetSeries(ctx context.Context, id int, includeParticipants bool) (*models.Series, error)
	ListSeries(ctx context.Context, filter repositories.SeriesFilter) ([]*models.Series, error)
	UpdateSeries(ctx context.Context, actorID, id int, input UpdateSeriesInput) (*models.Series, error)
	DeleteSeries(ctx context.Context, actorID, id int) error
	InviteParticipant(ctx context.Context, actorID, seriesID, inviteeID int) (*models.SeriesParticipant, error)
	RespondToInvitation(ctx context.Context, actorID, participantID int, accept bool) (*models.SeriesParticipant, error)
}

type seriesService struct {
	tx              TxRunner
	seriesRepo      repositories.SeriesRepository
	participantRepo repositories.SeriesParticipantRepository
	eventRepo       repositories.EventRepository
	userRepo        repositories.UserRepository
	guard           *Guard
	email           *EmailService
	logger          *slog.Logger
}

func NewSeriesService(
	tx TxRunner,
	seriesRepo repositories.SeriesRepository,
	participantRepo repositories.SeriesParticipantRepository,
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	guard *Guard,
	email *EmailService,
	logger *slog.Logger,
) SeriesService {
	return &seriesService{
		tx:              tx,
		seriesRepo:      seriesRepo,
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		guard:           guard,
		email:           email,
		logger:          logger,
	}
}

func validSeriesStatus(s models.SeriesStatus) bool {
	switch s {
	case models.SeriesStatusDraft, models.SeriesStatusActive, models.SeriesStatusCompleted, models.SeriesStatusCancelled:
		return true
	}
	return false
}

// CreateSeries inserts the series and its creator's admin membership in one
// transaction: either both rows exist afterwards or neither does.
func (s *seriesService) CreateSeries(ctx context.Context, creatorID int, input CreateSeriesInput) (*models.Series, error) {
	if input.Name == "" {
		return nil, ErrSeriesNameRequired
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrSeriesInvalidDateRange
	}

	status := models.SeriesStatusDraft
	if input.Status != nil {
		if !validSeriesStatus(*input.Status) {
			return nil, ErrSeriesInvalidStatus
		}
		status = *input.Status
	}

	series := &models.Series{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
		CreatedBy:   creatorID,
	}

	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		sr := s.seriesRepo.WithTx(tx)
		pr := s.participantRepo.WithTx(tx)

		if err := sr.Create(ctx, series); err != nil {
			return err
		}

		now := time.Now()
		creator := &models.SeriesParticipant{
			SeriesID: series.ID,
			UserID:   creatorID,
			Role:     models.SeriesRoleAdmin,
			Status:   models.SeriesParticipantActive,
			JoinedAt: &now,
		}
		return pr.Create(ctx, creator)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap series: %w", err)
	}
	return series, nil
}

func (s *seriesService) GetSeries(ctx context.Context, id int, includeParticipants bool) (*models.Series, error) {
	series, err := s.seriesRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeriesNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to get series %d: %w", id, err)
	}

	if includeParticipants {
		participants, err := s.participantRepo.ListBySeries(ctx, id, nil, true)
		if err != nil {
			return nil, fmt.Errorf("failed to load participants of series %d: %w", id, err)
		}
		series.Participants = make([]models.SeriesParticipant, 0, len(participants))
		for _, p := range participants {
			series.Participants = append(series.Participants, *p)
		}
	}
	return series, nil
}

func (s *seriesService) ListSeries(ctx context.Context, filter repositories.SeriesFilter) ([]*models.Series, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.seriesRepo.List(ctx, filter)
}

func (s *seriesService) UpdateSeries(ctx context.Context, actorID, id int, input UpdateSeriesInput) (*models.Series, error) {
	series, err := s.seriesRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeriesNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to get series %d: %w", id, err)
	}

	allowed, err := s.guard.CanManageSeries(ctx, actorID, series)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrSeriesNameRequired
		}
		series.Name = *input.Name
	}
	if input.Description != nil {
		series.Description = input.Description
	}
	if input.StartDate != nil {
		series.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		series.EndDate = *input.EndDate
	}
	if series.EndDate.Before(series.StartDate) {
		return nil, ErrSeriesInvalidDateRange
	}
	if input.Status != nil {
		if !validSeriesStatus(*input.Status) {
			return nil, ErrSeriesInvalidStatus
		}
		series.Status = *input.Status
	}

	if err := s.seriesRepo.Update(ctx, series); err != nil {
		if errors.Is(err, repositories.ErrSeriesNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to update series %d: %w", id, err)
	}
	return series, nil
}

// DeleteSeries removes the series together with its memberships and its
// event ordering rows; nested events survive but are detached.
func (s *seriesService) DeleteSeries(ctx context.Context, actorID, id int) error {
	series, err := s.seriesRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeriesNotFound) {
			return ErrSeriesNotFound
		}
		return fmt.Errorf("failed to get series %d: %w", id, err)
	}

	allowed, err := s.guard.CanManageSeries(ctx, actorID, series)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbiddenOperation
	}

	return s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.eventRepo.WithTx(tx).DetachSeries(ctx, id); err != nil {
			return err
		}
		if err := s.participantRepo.WithTx(tx).DeleteBySeries(ctx, id); err != nil {
			return err
		}
		return s.seriesRepo.WithTx(tx).Delete(ctx, id)
	})
}

func (s *seriesService) InviteParticipant(ctx context.Context, actorID, seriesID, inviteeID int) (*models.SeriesParticipant, error) {
	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeriesNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to get series %d: %w", seriesID, err)
	}

	allowed, err := s.guard.CanManageSeries(ctx, actorID, series)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}

	invitee, err := s.userRepo.GetByID(ctx, inviteeID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", inviteeID, err)
	}

	participant := &models.SeriesParticipant{
		SeriesID: seriesID,
		UserID:   inviteeID,
		Role:     models.SeriesRoleParticipant,
		Status:   models.SeriesParticipantInvited,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrSeriesParticipantConflict) {
			return nil, ErrParticipantConflict
		}
		return nil, fmt.Errorf("failed to create series invitation: %w", err)
	}

	// Invitation email is best-effort; the membership row is authoritative.
	if err := s.email.SendSeriesInviteEmail(invitee.Email, series.Name, seriesID); err != nil {
		s.logger.Error("failed to send series invitation email",
			slog.Int("series_id", seriesID), slog.Int("user_id", inviteeID), slog.Any("error", err))
	}
	return participant, nil
}

// RespondToInvitation lets the invited user accept or decline. Accepting
// sets joined_at; declining clears it. Only pending invitations may be
// responded to.
func (s *seriesService) RespondToInvitation(ctx context.Context, actorID, participantID int, accept bool) (*models.SeriesParticipant, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeriesParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get series participant %d: %w", participantID, err)
	}

	if participant.UserID != actorID {
		return nil, ErrForbiddenOperation
	}
	if participant.Status != models.SeriesParticipantInvited {
		return nil, ErrInvitationNotPending
	}

	if accept {
		now := time.Now()
		participant.Status = models.SeriesParticipantActive
		participant.JoinedAt = &now
	} else {
		participant.Status = models.SeriesParticipantDeclined
		participant.JoinedAt = nil
	}

	if err := s.participantRepo.UpdateStatus(ctx, participantID, participant.Status, participant.JoinedAt); err != nil {
		return nil, fmt.Errorf("failed to update invitation %d: %w", participantID, err)
	}
	return participant, nil
}
