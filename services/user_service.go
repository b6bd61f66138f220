package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
	"github.com/golfcompete/golfcompete/storage"
)

type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

type UserService interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
	ListUsers(ctx context.Context, actorID, limit, offset int) ([]*models.User, error)
	UpdateUser(ctx context.Context, actorID, id int, input UpdateUserInput) (*models.User, error)
	UpdateUserRole(ctx context.Context, actorID, id int, role models.UserRole) error
	DeleteUser(ctx context.Context, actorID, id int) error
	UploadAvatar(ctx context.Context, actorID, userID int, contentType string, file io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	guard    *Guard
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, guard *Guard, uploader storage.FileUploader, logger *slog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		guard:    guard,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *userService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	s.fillAvatarURL(user)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, actorID, limit, offset int) ([]*models.User, error) {
	admin, err := s.guard.IsSiteAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrForbiddenOperation
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		s.fillAvatarURL(u)
	}
	return users, nil
}

// UpdateUser lets users edit their own profile; site admins may edit anyone.
func (s *userService) UpdateUser(ctx context.Context, actorID, id int, input UpdateUserInput) (*models.User, error) {
	if actorID != id {
		admin, err := s.guard.IsSiteAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, ErrForbiddenOperation
		}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, ErrValidationFailed
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		if *input.Email == "" {
			return nil, ErrValidationFailed
		}
		user.Email = *input.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	user.PasswordHash = ""
	s.fillAvatarURL(user)
	return user, nil
}

func (s *userService) UpdateUserRole(ctx context.Context, actorID, id int, role models.UserRole) error {
	admin, err := s.guard.IsSiteAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbiddenOperation
	}

	if role != models.RoleAdmin && role != models.RolePlayer {
		return ErrValidationFailed
	}

	err = s.userRepo.UpdateRole(ctx, id, role)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id int) error {
	if actorID != id {
		admin, err := s.guard.IsSiteAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrForbiddenOperation
		}
	}

	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *userService) UploadAvatar(ctx context.Context, actorID, userID int, contentType string, file io.Reader) (*models.User, error) {
	if actorID != userID {
		admin, err := s.guard.IsSiteAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, ErrForbiddenOperation
		}
	}
	if s.uploader == nil {
		return nil, ErrValidationFailed
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	key := fmt.Sprintf("avatars/%d/avatar-%d", userID, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store avatar key of user %d: %w", userID, err)
	}
	user.AvatarKey = &result.Key
	user.AvatarURL = &result.Location

	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar",
				slog.Int("user_id", userID), slog.String("key", *oldKey), slog.Any("error", err))
		}
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) fillAvatarURL(user *models.User) {
	if s.uploader != nil && user.AvatarKey != nil {
		url := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &url
	}
}
