package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/golfcompete/golfcompete/repositories"
)

const (
	// standardSlope is the USGA baseline slope rating.
	standardSlope = 113

	// Handicap index uses the best differentials of the most recent rounds.
	handicapWindow        = 20
	handicapBestCount     = 8
	handicapMinimumRounds = 3
)

// Differential computes the USGA-style handicap contribution of one round:
// (adjusted gross score − course rating) × 113 / slope rating.
func Differential(score int, courseRating float64, slopeRating int) float64 {
	return (float64(score) - courseRating) * standardSlope / float64(slopeRating)
}

// RoundDifferential rounds a differential to one decimal place for display
// and storage.
func RoundDifferential(d float64) float64 {
	return math.Round(d*10) / 10
}

// HandicapService recomputes a bag's handicap index from its completed
// rounds: the average of the best 8 differentials of the last 20 rounds,
// rounded to one decimal place. Fewer than 8 rounds average what exists;
// fewer than 3 leaves the index unset.
type HandicapService struct {
	roundRepo repositories.RoundRepository
	bagRepo   repositories.BagRepository
	logger    *slog.Logger
}

func NewHandicapService(roundRepo repositories.RoundRepository, bagRepo repositories.BagRepository, logger *slog.Logger) *HandicapService {
	return &HandicapService{
		roundRepo: roundRepo,
		bagRepo:   bagRepo,
		logger:    logger,
	}
}

// RecomputeForBag refreshes the bag's handicap index. Repeated calls with the
// same stored rounds yield the same index.
func (s *HandicapService) RecomputeForBag(ctx context.Context, bagID int) error {
	rounds, err := s.roundRepo.ListCompletedByBag(ctx, bagID, handicapWindow)
	if err != nil {
		return fmt.Errorf("failed to load rounds for bag %d: %w", bagID, err)
	}

	if len(rounds) < handicapMinimumRounds {
		s.logger.Info("not enough completed rounds for handicap",
			slog.Int("bag_id", bagID), slog.Int("rounds", len(rounds)))
		return s.bagRepo.UpdateHandicapIndex(ctx, bagID, nil)
	}

	diffs := make([]float64, 0, len(rounds))
	for _, r := range rounds {
		if r.TeeSlope <= 0 {
			continue
		}
		diffs = append(diffs, Differential(r.TotalScore, r.TeeRating, r.TeeSlope))
	}
	if len(diffs) < handicapMinimumRounds {
		return s.bagRepo.UpdateHandicapIndex(ctx, bagID, nil)
	}

	sort.Float64s(diffs)
	n := handicapBestCount
	if len(diffs) < n {
		n = len(diffs)
	}

	var sum float64
	for _, d := range diffs[:n] {
		sum += d
	}
	index := RoundDifferential(sum / float64(n))

	if err := s.bagRepo.UpdateHandicapIndex(ctx, bagID, &index); err != nil {
		return fmt.Errorf("failed to store handicap index for bag %d: %w", bagID, err)
	}
	s.logger.Info("handicap index updated", slog.Int("bag_id", bagID), slog.Float64("index", index))
	return nil
}
