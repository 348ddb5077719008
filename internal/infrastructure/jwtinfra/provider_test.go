package jwtinfra

import (
	"testing"
	"time"

	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() config.JWTSettings {
	return config.JWTSettings{
		Secret:            "test-secret-at-least-32-bytes-long!",
		Issuer:            "marketplace-api",
		Audience:          "marketplace-users",
		AccessTokenExpiry: 15 * time.Minute,
	}
}

func testUser() *domain.User {
	email := "vendor@example.com"
	return &domain.User{
		UserID:        "01J0000000000000000000USER",
		FullName:      "Asha Vendor",
		Phone:         "+15550001111",
		Email:         &email,
		PhoneVerified: true,
		Roles:         []string{domain.RoleVendor},
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	p, err := NewProvider(testSettings())
	require.NoError(t, err)

	tokenStr, jti, err := p.Sign(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := p.Verify(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "01J0000000000000000000USER", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "+15550001111", claims.Phone)
	assert.True(t, claims.PhoneVerified)
	assert.Equal(t, []string{domain.RoleVendor}, claims.Roles)
	assert.Equal(t, "vendor@example.com", claims.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	p1, err := NewProvider(testSettings())
	require.NoError(t, err)

	other := testSettings()
	other.Secret = "a-completely-different-secret-value!"
	p2, err := NewProvider(other)
	require.NoError(t, err)

	tokenStr, _, err := p1.Sign(testUser())
	require.NoError(t, err)

	_, err = p2.Verify(tokenStr)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testSettings()
	cfg.AccessTokenExpiry = -time.Minute
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	tokenStr, _, err := p.Sign(testUser())
	require.NoError(t, err)

	_, err = p.Verify(tokenStr)
	assert.Error(t, err, "expired tokens fail validation immediately, no leeway")
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	cfg := testSettings()
	cfg.Issuer = "someone-else"
	issuer, err := NewProvider(cfg)
	require.NoError(t, err)

	verifier, err := NewProvider(testSettings())
	require.NoError(t, err)

	tokenStr, _, err := issuer.Sign(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(tokenStr)
	assert.Error(t, err)
}

func TestNewProviderRequiresSecret(t *testing.T) {
	cfg := testSettings()
	cfg.Secret = ""
	_, err := NewProvider(cfg)
	assert.Error(t, err)
}
