package service

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB := newTestDB(t)
	return NewAuthService(
		repository.NewUserRepository(testDB),
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{
			name:     "Valid registration",
			email:    "test@example.com",
			password: "password123",
			userName: "Test User",
		},
		{
			name:     "Duplicate email",
			email:    "test@example.com",
			password: "password456",
			userName: "Another User",
			wantErr:  ErrEmailAlreadyExists,
		},
		{
			name:     "Duplicate email with different case",
			email:    "  TEST@example.com ",
			password: "password456",
			userName: "Shouting User",
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.email, tt.password, tt.userName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tokens)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, tt.userName, user.Name)
			assert.Equal(t, model.RoleUser, user.Role)
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	registered, _, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid login", email: "test@example.com", password: "password123"},
		{name: "Email is case-insensitive", email: "Test@Example.com", password: "password123"},
		{name: "Wrong password", email: "test@example.com", password: "wrongpassword", wantErr: ErrInvalidCredentials},
		{name: "Unknown user", email: "notfound@example.com", password: "password123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)

			claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
			require.NoError(t, err)
			assert.Equal(t, registered.ID, claims.UserID)
			assert.Equal(t, string(model.RoleUser), claims.Role)
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	found, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Refresh(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	refreshed, err := authService.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	claims, err := util.ValidateTokenOfType(refreshed.AccessToken, testJWTSecret, util.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", claims.Email)

	_, err = authService.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	_, err = authService.Refresh("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	tests := []struct {
		name     string
		userID   uint
		newName  string
		wantName string
		wantErr  error
	}{
		{name: "Rename", userID: user.ID, newName: "  Renamed User ", wantName: "Renamed User"},
		{name: "Blank name keeps profile", userID: user.ID, newName: "   ", wantName: "Renamed User"},
		{name: "Unknown user", userID: 9999, newName: "Ghost", wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := authService.UpdateProfile(tt.userID, tt.newName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, updated.Name)

			stored, err := authService.GetUserByID(tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, stored.Name)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	tests := []struct {
		name        string
		userID      uint
		oldPassword string
		newPassword string
		wantErr     error
	}{
		{name: "Wrong current password", userID: user.ID, oldPassword: "nope", newPassword: "newpassword1", wantErr: ErrWrongPassword},
		{name: "Same password", userID: user.ID, oldPassword: "password123", newPassword: "password123", wantErr: ErrSamePassword},
		{name: "Unknown user", userID: 9999, oldPassword: "password123", newPassword: "newpassword1", wantErr: ErrUserNotFound},
		{name: "Valid change", userID: user.ID, oldPassword: "password123", newPassword: "newpassword1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authService.ChangePassword(tt.userID, tt.oldPassword, tt.newPassword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	_, _, err = authService.Login("test@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("test@example.com", "newpassword1")
	assert.NoError(t, err)
}
