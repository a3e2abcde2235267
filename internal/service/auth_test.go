package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/security"
)

func newAuthService(repo domain.UserRepository, admins ...string) *AuthService {
	jwt := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, time.Hour)
	return NewAuthService(repo, jwt, security.NewAdminList(admins), nil)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("EmailExists", ctx, "new@example.com").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := newAuthService(repo).Register(ctx, domain.UserCreate{Email: " New@Example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
		repo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("EmailExists", ctx, "old@example.com").Return(true, nil)

		_, err := newAuthService(repo).Register(ctx, domain.UserCreate{Email: "old@example.com", Password: "password123"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("EmailExists", ctx, "x@example.com").Return(false, errors.New("connection refused"))

		_, err := newAuthService(repo).Register(ctx, domain.UserCreate{Email: "x@example.com", Password: "password123"})
		assert.ErrorContains(t, err, "failed to check email")
	})
}

func TestAuthService_LoginRefreshProfile(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), Email: "ops@example.com", PasswordHash: string(hash)}

	repo := new(MockUserRepository)
	repo.On("GetByEmail", ctx, "ops@example.com").Return(user, nil)
	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	svc := newAuthService(repo, "OPS@example.com")

	_, err = svc.Login(ctx, domain.UserLogin{Email: "ops@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, domain.UserLogin{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	pair, err := svc.Login(ctx, domain.UserLogin{Email: "ops@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsAdmin)
}
