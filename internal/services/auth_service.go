package services

import (
	"context"
	"errors"
	"fmt"

	"contactbook/internal/models"
	"contactbook/internal/repositories"

	"github.com/rs/zerolog/log"
)

// TokenPair is returned on successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService handles registration, login and resolving access tokens to users.
type AuthService struct {
	userRepo    repositories.UserRepository
	credentials *CredentialService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, credentials *CredentialService) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		credentials: credentials,
	}
}

// RegisterUser creates a user with a hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, email, password string) (*models.User, error) {
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", email, ErrConflict)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := s.credentials.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: hashed}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email '%s' already registered: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// LoginUser checks the credentials, issues a token pair and stores the
// refresh token on the user.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !s.credentials.VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.credentials.IssueAccessToken(user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.credentials.IssueRefreshToken(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Authenticate resolves an access token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	email, err := s.credentials.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}
