package services_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"contactbook/internal/logging"
	"contactbook/internal/models"
	"contactbook/internal/repositories"
	"contactbook/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, id string, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

// TestMain silences logging for the package tests.
func TestMain(m *testing.M) {
	logging.Discard()
	os.Exit(m.Run())
}

func newCredentials() *services.CredentialService {
	return services.NewCredentialService("test_access_secret", "test_refresh_secret", 15*time.Minute, 7*24*time.Hour)
}

func notFound(email string) error {
	return fmt.Errorf("user with email %s: %w", email, repositories.ErrNotFound)
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, newCredentials())

	// Test successful registration
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, notFound("test@example.com")).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "test@example.com" && u.Password != "password123" && u.Password != ""
	})).Return(nil).Once()

	user, err := authService.RegisterUser(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "generated-id", user.ID)
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: "1", Email: "test@example.com"}, nil).Once()
	_, err = authService.RegisterUser(ctx, "test@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")
	mockRepo.AssertExpectations(t)

	// Test unique constraint hit by a concurrent registration
	mockRepo.On("GetByEmail", ctx, "race@example.com").Return(nil, notFound("race@example.com")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicate).Once()
	_, err = authService.RegisterUser(ctx, "race@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	creds := newCredentials()
	authService := services.NewAuthService(mockRepo, creds)

	hashedPassword, err := creds.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Password: hashedPassword,
	}

	// Test successful login
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	mockRepo.On("UpdateRefreshToken", ctx, user.ID, mock.AnythingOfType("string")).Return(nil).Once()

	pair, err := authService.LoginUser(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	subject, err := creds.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.Email, subject)

	subject, err = creds.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.Email, subject)
	mockRepo.AssertCalled(t, "UpdateRefreshToken", ctx, user.ID, pair.RefreshToken)
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "test@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, notFound("nobody@example.com")).Once()
	_, err = authService.LoginUser(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials) // Should not reveal which check failed
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	creds := newCredentials()
	authService := services.NewAuthService(mockRepo, creds)

	user := &models.User{ID: "user-123", Email: "test@example.com"}
	access, err := creds.IssueAccessToken(user.Email)
	require.NoError(t, err)

	// Test valid token
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	got, err := authService.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	// Test user deleted after the token was issued
	mockRepo.On("GetByEmail", ctx, user.Email).Return(nil, notFound(user.Email)).Once()
	_, err = authService.Authenticate(ctx, access)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	// Test refresh token presented as access token
	refresh, err := creds.IssueRefreshToken(user.Email)
	require.NoError(t, err)
	_, err = authService.Authenticate(ctx, refresh)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Test garbage
	_, err = authService.Authenticate(ctx, "invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
	mockRepo.AssertExpectations(t)
}
