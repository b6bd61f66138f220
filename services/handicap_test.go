package services

import (
	"context"
	"testing"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

func TestDifferential(t *testing.T) {
	tests := []struct {
		name   string
		score  int
		rating float64
		slope  int
		want   float64
	}{
		{"standard slope", 90, 72.0, 113, 18.0},
		{"scratch round", 72, 72.0, 113, 0.0},
		{"steep slope shrinks differential", 90, 72.0, 155, 13.1},
		{"under rating goes negative", 70, 72.0, 113, -2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundDifferential(Differential(tt.score, tt.rating, tt.slope))
			if got != tt.want {
				t.Errorf("Differential(%d, %v, %d) = %v, want %v", tt.score, tt.rating, tt.slope, got, tt.want)
			}
		})
	}
}

func TestRoundDifferential(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{18.04, 18.0},
		{18.05, 18.1},
		{-2.35, -2.3},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundDifferential(tt.in); got != tt.want {
			t.Errorf("RoundDifferential(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func completedRound(total int, rating float64, slope int) *repositories.RoundWithTee {
	return &repositories.RoundWithTee{TotalScore: total, TeeRating: rating, TeeSlope: slope}
}

func TestRecomputeForBagTooFewRounds(t *testing.T) {
	bagRepo := newFakeBagRepo(&models.Bag{ID: 1, UserID: 1, Name: "Full set"})
	roundRepo := newFakeRoundRepo()
	roundRepo.completedByBag = []*repositories.RoundWithTee{
		completedRound(90, 72.0, 113),
		completedRound(88, 72.0, 113),
	}

	svc := NewHandicapService(roundRepo, bagRepo, testLogger())
	if err := svc.RecomputeForBag(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeForBag: %v", err)
	}

	bag, _ := bagRepo.GetByID(context.Background(), 1)
	if bag.HandicapIndex != nil {
		t.Errorf("handicap index = %v, want nil with fewer than 3 rounds", *bag.HandicapIndex)
	}
}

func TestRecomputeForBagAveragesAll(t *testing.T) {
	// Three rounds, all below the best-8 cutoff, so all three average.
	bagRepo := newFakeBagRepo(&models.Bag{ID: 1, UserID: 1, Name: "Full set"})
	roundRepo := newFakeRoundRepo()
	roundRepo.completedByBag = []*repositories.RoundWithTee{
		completedRound(90, 72.0, 113), // 18.0
		completedRound(87, 72.0, 113), // 15.0
		completedRound(84, 72.0, 113), // 12.0
	}

	svc := NewHandicapService(roundRepo, bagRepo, testLogger())
	if err := svc.RecomputeForBag(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeForBag: %v", err)
	}

	bag, _ := bagRepo.GetByID(context.Background(), 1)
	if bag.HandicapIndex == nil {
		t.Fatal("handicap index not set")
	}
	if *bag.HandicapIndex != 15.0 {
		t.Errorf("handicap index = %v, want 15.0", *bag.HandicapIndex)
	}
}

func TestRecomputeForBagBestEight(t *testing.T) {
	bagRepo := newFakeBagRepo(&models.Bag{ID: 1, UserID: 1, Name: "Full set"})
	roundRepo := newFakeRoundRepo()

	// Eight rounds at 85 (13.0) buried under twelve at 100 (28.0); only the
	// best eight should count.
	rounds := make([]*repositories.RoundWithTee, 0, 20)
	for i := 0; i < 12; i++ {
		rounds = append(rounds, completedRound(100, 72.0, 113))
	}
	for i := 0; i < 8; i++ {
		rounds = append(rounds, completedRound(85, 72.0, 113))
	}
	roundRepo.completedByBag = rounds

	svc := NewHandicapService(roundRepo, bagRepo, testLogger())
	if err := svc.RecomputeForBag(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeForBag: %v", err)
	}

	bag, _ := bagRepo.GetByID(context.Background(), 1)
	if bag.HandicapIndex == nil {
		t.Fatal("handicap index not set")
	}
	if *bag.HandicapIndex != 13.0 {
		t.Errorf("handicap index = %v, want 13.0", *bag.HandicapIndex)
	}
}

func TestRecomputeForBagSkipsInvalidSlope(t *testing.T) {
	bagRepo := newFakeBagRepo(&models.Bag{ID: 1, UserID: 1, Name: "Full set"})
	roundRepo := newFakeRoundRepo()
	roundRepo.completedByBag = []*repositories.RoundWithTee{
		completedRound(90, 72.0, 113),
		completedRound(90, 72.0, 0), // unusable
		completedRound(90, 72.0, 113),
	}

	svc := NewHandicapService(roundRepo, bagRepo, testLogger())
	if err := svc.RecomputeForBag(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeForBag: %v", err)
	}

	// Only two usable differentials remain, below the minimum.
	bag, _ := bagRepo.GetByID(context.Background(), 1)
	if bag.HandicapIndex != nil {
		t.Errorf("handicap index = %v, want nil when usable rounds drop below minimum", *bag.HandicapIndex)
	}
}

func TestRecomputeForBagIdempotent(t *testing.T) {
	bagRepo := newFakeBagRepo(&models.Bag{ID: 1, UserID: 1, Name: "Full set"})
	roundRepo := newFakeRoundRepo()
	roundRepo.completedByBag = []*repositories.RoundWithTee{
		completedRound(90, 72.0, 113),
		completedRound(88, 71.5, 120),
		completedRound(95, 73.2, 130),
		completedRound(82, 70.0, 110),
	}

	svc := NewHandicapService(roundRepo, bagRepo, testLogger())
	ctx := context.Background()
	if err := svc.RecomputeForBag(ctx, 1); err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	first, _ := bagRepo.GetByID(ctx, 1)
	if err := svc.RecomputeForBag(ctx, 1); err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	second, _ := bagRepo.GetByID(ctx, 1)

	if first.HandicapIndex == nil || second.HandicapIndex == nil {
		t.Fatal("handicap index not set")
	}
	if *first.HandicapIndex != *second.HandicapIndex {
		t.Errorf("recompute not idempotent: %v then %v", *first.HandicapIndex, *second.HandicapIndex)
	}
}
