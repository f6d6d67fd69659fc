package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/storage"
)

type mockUserStorage struct {
	users map[string]*models.User
	err   error
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	return errors.New("not implemented")
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func testConfig() JWTConfig {
	return JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}
}

func TestValidator_GenerateAndValidate(t *testing.T) {
	v := NewValidator(testConfig(), nil)

	token, expiresIn, err := v.GenerateAccessToken("u1", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := v.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestValidator_ValidateAccessToken_Invalid(t *testing.T) {
	v := NewValidator(testConfig(), nil)

	other := NewValidator(JWTConfig{Secret: []byte("other"), AccessTokenTTL: time.Hour}, nil)
	foreign, _, err := other.GenerateAccessToken("u1", "alice")
	require.NoError(t, err)

	expired := NewValidator(JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: -time.Minute}, nil)
	stale, _, err := expired.GenerateAccessToken("u1", "alice")
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: stale},
		{name: "wrong issuer", token: wrongIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		wantErr error
		header  string
		url     string
		name    string
		want    string
	}{
		{name: "bearer header", header: "Bearer abc", url: "/ws", want: "abc"},
		{name: "lowercase bearer", header: "bearer abc", url: "/ws", want: "abc"},
		{name: "query parameter", url: "/ws?token=xyz", want: "xyz"},
		{name: "header wins over query", header: "Bearer abc", url: "/ws?token=xyz", want: "abc"},
		{name: "missing", url: "/ws", wantErr: ErrMissingToken},
		{name: "basic auth", header: "Basic abc", url: "/ws", wantErr: ErrInvalidToken},
		{name: "no token after bearer", header: "Bearer ", url: "/ws", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := TokenFromRequest(r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidator_ValidateRequest(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice"},
	}}
	v := NewValidator(testConfig(), users)

	token, _, err := v.GenerateAccessToken("u1", "alice")
	require.NoError(t, err)
	ghostToken, _, err := v.GenerateAccessToken("ghost", "ghost")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	user, err := v.ValidateRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	_, err = v.ValidateRequest(r)
	assert.True(t, apperr.Is(err, apperr.ErrAuthentication))
	assert.ErrorIs(t, err, ErrMissingToken)

	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+ghostToken)
	_, err = v.ValidateRequest(r)
	assert.True(t, apperr.Is(err, apperr.ErrAuthentication))
	assert.ErrorIs(t, err, ErrUnknownUser)

	users.err = errors.New("db is down")
	r = httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, err = v.ValidateRequest(r)
	require.Error(t, err)
	assert.False(t, apperr.Is(err, apperr.ErrAuthentication))
}

func TestValidator_ValidateRequest_ClaimsOnly(t *testing.T) {
	v := NewValidator(testConfig(), nil)
	token, _, err := v.GenerateAccessToken("u7", "bob")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	user, err := v.ValidateRequest(r)
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "u7", Username: "bob"}, user)
}

func TestUserContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), &models.User{ID: "u1"})
	user, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}
