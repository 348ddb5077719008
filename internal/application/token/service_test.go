package token

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/jwtinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Put(ctx context.Context, t *domain.RefreshToken) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTokenStore) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, token)
	if t, _ := args.Get(0).(*domain.RefreshToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenStore) Revoke(ctx context.Context, tokenID string, at time.Time) error {
	return m.Called(ctx, tokenID, at).Error(0)
}
func (m *mockTokenStore) ListActiveByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.RefreshToken), args.Error(1)
}
func (m *mockTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(user *domain.User) (string, string, error) {
	args := m.Called(user)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *mockSigner) Verify(tokenStr string) (*jwtinfra.Claims, error) {
	args := m.Called(tokenStr)
	if c, _ := args.Get(0).(*jwtinfra.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSigner) Expiry() time.Duration { return 15 * time.Minute }

// --- helpers ---

func newTestService(store *mockTokenStore, signer *mockSigner) Service {
	return NewService(ServiceDeps{
		TokenRepo: store,
		Signer:    signer,
		Settings:  config.JWTSettings{RefreshTokenExpiry: 7 * 24 * time.Hour},
	})
}

func testUser() *domain.User {
	return &domain.User{UserID: "user-1", Phone: "+15550001111", Roles: []string{domain.RoleBuyer}}
}

// --- tests ---

func TestIssuePair(t *testing.T) {
	store := new(mockTokenStore)
	signer := new(mockSigner)
	signer.On("Sign", mock.Anything).Return("signed-access", "jti-1", nil)

	var stored *domain.RefreshToken
	store.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.RefreshToken)
	}).Return(nil)

	svc := newTestService(store, signer)
	out, err := svc.IssuePair(context.Background(), testUser())
	require.NoError(t, err)

	assert.Equal(t, "signed-access", out.AccessToken)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, 900, out.ExpiresIn)

	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, "jti-1", stored.AccessTokenID)
	assert.Equal(t, out.RefreshToken, stored.Token)
	assert.WithinDuration(t, stored.CreatedAt.Add(7*24*time.Hour), stored.ExpiresAt, time.Second)

	raw, err := base64.StdEncoding.DecodeString(out.RefreshToken)
	require.NoError(t, err)
	assert.Len(t, raw, 64)
}

func TestIssuePairTokensAreUnique(t *testing.T) {
	store := new(mockTokenStore)
	signer := new(mockSigner)
	signer.On("Sign", mock.Anything).Return("signed-access", "jti", nil)
	store.On("Put", mock.Anything, mock.Anything).Return(nil)
	svc := newTestService(store, signer)

	a, err := svc.IssuePair(context.Background(), testUser())
	require.NoError(t, err)
	b, err := svc.IssuePair(context.Background(), testUser())
	require.NoError(t, err)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
}

func TestVerifyRefreshTokenHappyPath(t *testing.T) {
	now := time.Now().UTC()
	record := &domain.RefreshToken{
		TokenID:   "tok-1",
		UserID:    "user-1",
		Token:     "opaque",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	store := new(mockTokenStore)
	store.On("GetByToken", mock.Anything, "opaque").Return(record, nil)
	svc := newTestService(store, new(mockSigner))

	out, err := svc.VerifyRefreshToken(context.Background(), "opaque")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", out.TokenID)
}

func TestVerifyRefreshTokenUnknown(t *testing.T) {
	store := new(mockTokenStore)
	store.On("GetByToken", mock.Anything, "nope").Return(nil, domain.ErrNotFound)
	svc := newTestService(store, new(mockSigner))

	_, err := svc.VerifyRefreshToken(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "Invalid refresh token.", err.Error())
}

func TestVerifyRefreshTokenRevoked(t *testing.T) {
	now := time.Now().UTC()
	revokedAt := now.Add(-time.Minute)
	record := &domain.RefreshToken{
		TokenID:   "tok-1",
		Token:     "opaque",
		ExpiresAt: now.Add(time.Hour),
		RevokedAt: &revokedAt,
	}
	store := new(mockTokenStore)
	store.On("GetByToken", mock.Anything, "opaque").Return(record, nil)
	svc := newTestService(store, new(mockSigner))

	_, err := svc.VerifyRefreshToken(context.Background(), "opaque")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "Refresh token has been revoked.", err.Error())
}

func TestVerifyRefreshTokenExpired(t *testing.T) {
	record := &domain.RefreshToken{
		TokenID:   "tok-1",
		Token:     "opaque",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	store := new(mockTokenStore)
	store.On("GetByToken", mock.Anything, "opaque").Return(record, nil)
	svc := newTestService(store, new(mockSigner))

	_, err := svc.VerifyRefreshToken(context.Background(), "opaque")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, "Refresh token has expired.", err.Error())
}

func TestValidateAccessTokenWrapsUnauthorized(t *testing.T) {
	signer := new(mockSigner)
	signer.On("Verify", "bad").Return(nil, assert.AnError)
	svc := newTestService(new(mockTokenStore), signer)

	_, err := svc.ValidateAccessToken("bad")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRevokeAllForUser(t *testing.T) {
	store := new(mockTokenStore)
	store.On("ListActiveByUser", mock.Anything, "user-1").Return([]domain.RefreshToken{
		{TokenID: "tok-1"}, {TokenID: "tok-2"},
	}, nil)
	store.On("Revoke", mock.Anything, "tok-1", mock.Anything).Return(nil)
	store.On("Revoke", mock.Anything, "tok-2", mock.Anything).Return(nil)
	svc := newTestService(store, new(mockSigner))

	n, err := svc.RevokeAllForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	store.AssertExpectations(t)
}

func TestCleanupExpired(t *testing.T) {
	store := new(mockTokenStore)
	store.On("DeleteExpired", mock.Anything, mock.Anything).Return(3, nil)
	svc := newTestService(store, new(mockSigner))

	n, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
