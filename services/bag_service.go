package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

type CreateBagInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// BagService manages a player's equipment sets. The handicap index lives on
// the bag, so a player can carry separate indexes per setup.
type BagService interface {
	CreateBag(ctx context.Context, userID int, input CreateBagInput) (*models.Bag, error)
	GetBag(ctx context.Context, userID, bagID int) (*models.Bag, error)
	ListBags(ctx context.Context, userID int) ([]*models.Bag, error)
	UpdateBag(ctx context.Context, userID, bagID int, input CreateBagInput) (*models.Bag, error)
	DeleteBag(ctx context.Context, userID, bagID int) error
}

type bagService struct {
	bagRepo repositories.BagRepository
}

func NewBagService(bagRepo repositories.BagRepository) BagService {
	return &bagService{bagRepo: bagRepo}
}

func (s *bagService) CreateBag(ctx context.Context, userID int, input CreateBagInput) (*models.Bag, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}

	bag := &models.Bag{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.bagRepo.Create(ctx, bag); err != nil {
		if errors.Is(err, repositories.ErrBagUserInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create bag: %w", err)
	}
	return bag, nil
}

func (s *bagService) GetBag(ctx context.Context, userID, bagID int) (*models.Bag, error) {
	bag, err := s.bagRepo.GetByID(ctx, bagID)
	if err != nil {
		if errors.Is(err, repositories.ErrBagNotFound) {
			return nil, ErrBagNotFound
		}
		return nil, fmt.Errorf("failed to get bag %d: %w", bagID, err)
	}
	if bag.UserID != userID {
		return nil, ErrBagNotFound
	}
	return bag, nil
}

func (s *bagService) ListBags(ctx context.Context, userID int) ([]*models.Bag, error) {
	return s.bagRepo.ListByUser(ctx, userID)
}

func (s *bagService) UpdateBag(ctx context.Context, userID, bagID int, input CreateBagInput) (*models.Bag, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}

	bag, err := s.GetBag(ctx, userID, bagID)
	if err != nil {
		return nil, err
	}

	bag.Name = input.Name
	bag.Description = input.Description
	if err := s.bagRepo.Update(ctx, bag); err != nil {
		return nil, fmt.Errorf("failed to update bag %d: %w", bagID, err)
	}
	return bag, nil
}

func (s *bagService) DeleteBag(ctx context.Context, userID, bagID int) error {
	if _, err := s.GetBag(ctx, userID, bagID); err != nil {
		return err
	}
	return s.bagRepo.Delete(ctx, bagID)
}
