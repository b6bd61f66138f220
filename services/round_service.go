package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

// LiveBroadcaster pushes score updates to websocket viewers of an event.
type LiveBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type StartRoundInput struct {
	EventID   *int       `json:"event_id"`
	CourseID  int        `json:"course_id"`
	TeeID     int        `json:"tee_id"`
	BagID     int        `json:"bag_id"`
	RoundDate *time.Time `json:"round_date"`
	Weather   *string    `json:"weather"`
	Condition *string    `json:"course_condition"`
	Notes     *string    `json:"notes"`
}

type AddHoleScoreInput struct {
	HoleNumber        int   `json:"hole_number"`
	Strokes           int   `json:"strokes"`
	Putts             *int  `json:"putts"`
	FairwayHit        *bool `json:"fairway_hit"`
	GreenInRegulation *bool `json:"green_in_regulation"`
	PenaltyStrokes    int   `json:"penalty_strokes"`
}

type RoundService interface {
	StartRound(ctx context.Context, userID int, input StartRoundInput) (*models.Round, error)
	GetRound(ctx context.Context, id int, includeScores bool) (*models.Round, error)
	ListRounds(ctx context.Context, userID, limit, offset int) ([]*models.Round, error)
	AddHoleScore(ctx context.Context, actorID, roundID int, input AddHoleScoreInput) (*models.Round, error)
	CompleteRound(ctx context.Context, actorID, roundID, totalScore int) (*models.Round, error)
	DeleteRound(ctx context.Context, actorID, roundID int) error
}

type roundService struct {
	roundRepo repositories.RoundRepository
	scoreRepo repositories.ScoreRepository
	bagRepo   repositories.BagRepository
	guard     *Guard
	handicap  *HandicapService
	live      LiveBroadcaster
	logger    *slog.Logger
}

func NewRoundService(
	roundRepo repositories.RoundRepository,
	scoreRepo repositories.ScoreRepository,
	bagRepo repositories.BagRepository,
	guard *Guard,
	handicap *HandicapService,
	live LiveBroadcaster,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		roundRepo: roundRepo,
		scoreRepo: scoreRepo,
		bagRepo:   bagRepo,
		guard:     guard,
		handicap:  handicap,
		live:      live,
		logger:    logger,
	}
}

func (s *roundService) StartRound(ctx context.Context, userID int, input StartRoundInput) (*models.Round, error) {
	bag, err := s.bagRepo.GetByID(ctx, input.BagID)
	if err != nil {
		if errors.Is(err, repositories.ErrBagNotFound) {
			return nil, ErrBagNotFound
		}
		return nil, fmt.Errorf("failed to get bag %d: %w", input.BagID, err)
	}
	if bag.UserID != userID {
		return nil, ErrForbiddenOperation
	}

	roundDate := time.Now()
	if input.RoundDate != nil {
		roundDate = *input.RoundDate
	}

	round := &models.Round{
		EventID:   input.EventID,
		UserID:    userID,
		CourseID:  input.CourseID,
		TeeID:     input.TeeID,
		BagID:     input.BagID,
		RoundDate: roundDate,
		Status:    models.RoundStatusInProgress,
		Weather:   input.Weather,
		Condition: input.Condition,
		Notes:     input.Notes,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoundEventInvalid):
			return nil, ErrEventNotFound
		case errors.Is(err, repositories.ErrRoundCourseInvalid):
			return nil, ErrCourseNotFound
		case errors.Is(err, repositories.ErrRoundBagInvalid):
			return nil, ErrBagNotFound
		}
		return nil, fmt.Errorf("failed to start round: %w", err)
	}
	return round, nil
}

func (s *roundService) GetRound(ctx context.Context, id int, includeScores bool) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}

	if includeScores {
		scores, err := s.scoreRepo.ListByRound(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load scores of round %d: %w", id, err)
		}
		// Scores are stored in insertion order; present them by hole.
		sort.Slice(scores, func(i, j int) bool { return scores[i].HoleNumber < scores[j].HoleNumber })
		round.Scores = scores
	}
	return round, nil
}

func (s *roundService) ListRounds(ctx context.Context, userID, limit, offset int) ([]*models.Round, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.roundRepo.ListByUser(ctx, userID, limit, offset)
}

// AddHoleScore records one hole and recomputes the round total as the sum
// of strokes across every stored score. The total is always derived from
// the stored rows, never incremented in place.
func (s *roundService) AddHoleScore(ctx context.Context, actorID, roundID int, input AddHoleScoreInput) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", roundID, err)
	}
	if round.UserID != actorID {
		return nil, ErrForbiddenOperation
	}
	if round.Status == models.RoundStatusCompleted {
		return nil, ErrRoundAlreadyCompleted
	}
	if input.HoleNumber < 1 || input.HoleNumber > 18 {
		return nil, ErrInvalidHoleNumber
	}
	if input.Strokes < 1 {
		return nil, ErrInvalidStrokes
	}

	score := &models.HoleScore{
		RoundID:           roundID,
		HoleNumber:        input.HoleNumber,
		Strokes:           input.Strokes,
		Putts:             input.Putts,
		FairwayHit:        input.FairwayHit,
		GreenInRegulation: input.GreenInRegulation,
		PenaltyStrokes:    input.PenaltyStrokes,
	}
	if err := s.scoreRepo.Create(ctx, score); err != nil {
		if errors.Is(err, repositories.ErrHoleScoreConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to record hole score: %w", err)
	}

	scores, err := s.scoreRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload scores of round %d: %w", roundID, err)
	}
	total := 0
	for _, sc := range scores {
		total += sc.Strokes
	}
	if err := s.roundRepo.UpdateTotalScore(ctx, roundID, &total); err != nil {
		return nil, fmt.Errorf("failed to update total of round %d: %w", roundID, err)
	}
	round.TotalScore = &total
	sort.Slice(scores, func(i, j int) bool { return scores[i].HoleNumber < scores[j].HoleNumber })
	round.Scores = scores

	s.broadcastScoreUpdate(round, "SCORE_RECORDED")
	return round, nil
}

// CompleteRound finalizes a round with the player-entered total and kicks
// off a handicap recompute for the bag used. A handicap failure is logged,
// not surfaced: the round completion itself already succeeded.
func (s *roundService) CompleteRound(ctx context.Context, actorID, roundID, totalScore int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", roundID, err)
	}
	if round.UserID != actorID {
		return nil, ErrForbiddenOperation
	}
	if round.Status == models.RoundStatusCompleted {
		return nil, ErrRoundAlreadyCompleted
	}
	if totalScore < 1 {
		return nil, ErrInvalidStrokes
	}

	if err := s.roundRepo.Complete(ctx, roundID, totalScore); err != nil {
		return nil, fmt.Errorf("failed to complete round %d: %w", roundID, err)
	}
	round.Status = models.RoundStatusCompleted
	round.TotalScore = &totalScore

	if err := s.handicap.RecomputeForBag(ctx, round.BagID); err != nil {
		s.logger.Error("handicap recompute failed after round completion",
			slog.Int("round_id", roundID), slog.Int("bag_id", round.BagID), slog.Any("error", err))
	}

	s.broadcastScoreUpdate(round, "ROUND_COMPLETED")
	return round, nil
}

func (s *roundService) DeleteRound(ctx context.Context, actorID, roundID int) error {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to get round %d: %w", roundID, err)
	}
	if round.UserID != actorID {
		admin, err := s.guard.IsSiteAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrForbiddenOperation
		}
	}
	return s.roundRepo.Delete(ctx, roundID)
}

func (s *roundService) broadcastScoreUpdate(round *models.Round, msgType string) {
	if s.live == nil || round.EventID == nil {
		return
	}
	s.live.BroadcastToRoom(fmt.Sprintf("event-%d", *round.EventID), map[string]interface{}{
		"type":    msgType,
		"payload": round,
	})
}
