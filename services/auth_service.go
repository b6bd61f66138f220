package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/golfcompete/golfcompete/config"
	"github.com/golfcompete/golfcompete/models"
	"github.com/golfcompete/golfcompete/repositories"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
)

type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthToken is the token response of the external provider's token
// endpoint.
type OAuthToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int, currentPassword, newPassword string) error
	GeneratePasswordResetToken(ctx context.Context, email string) error
	ResetPasswordByToken(ctx context.Context, token, newPassword string) error

	GenerateOAuthURL(state string) (string, error)
	ExchangeOAuthCode(ctx context.Context, code string) (*OAuthToken, error)
}

type authService struct {
	cfg        *config.Config
	userRepo   repositories.UserRepository
	email      *EmailService
	httpClient *http.Client
	logger     *slog.Logger
}

func NewAuthService(cfg *config.Config, userRepo repositories.UserRepository, email *EmailService, logger *slog.Logger) AuthService {
	return &authService{
		cfg:        cfg,
		userRepo:   userRepo,
		email:      email,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.FirstName == "" || input.Email == "" {
		return nil, ErrValidationFailed
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooWeak
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hashed),
		Role:         models.RolePlayer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.email.SendWelcomeEmail(user.Email, user.FirstName); err != nil {
		s.logger.Error("failed to send welcome email",
			slog.Int("user_id", user.ID), slog.Any("error", err))
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) UpdatePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooWeak
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// GeneratePasswordResetToken stores a one-hour reset token and mails it.
// An unknown email returns success to keep registered addresses private.
func (s *authService) GeneratePasswordResetToken(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user by email: %w", err)
	}

	token := generateRandomToken(32)
	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.email.SendPasswordResetEmail(user.Email, token); err != nil {
		s.logger.Error("failed to send password reset email",
			slog.Int("user_id", user.ID), slog.Any("error", err))
	}
	return nil
}

func (s *authService) ResetPasswordByToken(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooWeak
	}

	user, err := s.userRepo.GetByPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrAuthenticationFailed
		}
		return fmt.Errorf("failed to find user by reset token: %w", err)
	}
	if user.PasswordResetExpiresAt == nil || user.PasswordResetExpiresAt.Before(time.Now()) {
		return ErrAuthenticationFailed
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	user.PasswordResetToken = nil
	user.PasswordResetExpiresAt = nil
	return s.userRepo.Update(ctx, user)
}

// GenerateOAuthURL builds the provider's authorization URL for the
// authorization-code flow.
func (s *authService) GenerateOAuthURL(state string) (string, error) {
	if s.cfg.OAuthClientID == "" || s.cfg.OAuthAuthURL == "" {
		return "", ErrValidationFailed
	}

	q := url.Values{}
	q.Set("client_id", s.cfg.OAuthClientID)
	q.Set("redirect_uri", s.cfg.SiteURL+"/api/auth/oauth/callback")
	q.Set("response_type", "code")
	q.Set("state", state)
	return s.cfg.OAuthAuthURL + "?" + q.Encode(), nil
}

func (s *authService) ExchangeOAuthCode(ctx context.Context, code string) (*OAuthToken, error) {
	if s.cfg.OAuthClientID == "" || s.cfg.OAuthTokenURL == "" {
		return nil, ErrValidationFailed
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", s.cfg.OAuthClientID)
	form.Set("client_secret", s.cfg.OAuthClientSecret)
	form.Set("redirect_uri", s.cfg.SiteURL+"/api/auth/oauth/callback")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.OAuthTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var token OAuthToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrAuthenticationFailed
	}
	return &token, nil
}

func generateRandomToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	b := make([]byte, length)
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b)
}
