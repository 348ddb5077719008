package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/jwtinfra"
	"github.com/marketplace-api/internal/pkg/id"
)

const refreshTokenBytes = 64

type Service interface {
	// IssuePair signs an access token for the user and mints a linked
	// refresh token, persisting the latter.
	IssuePair(ctx context.Context, user *domain.User) (*domain.TokenResponse, error)
	// ValidateAccessToken parses and validates an access token.
	ValidateAccessToken(tokenStr string) (*jwtinfra.Claims, error)
	// VerifyRefreshToken resolves an opaque refresh token to its record,
	// rejecting revoked or expired ones.
	VerifyRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	// RevokeRefreshToken marks a stored token revoked. Idempotent.
	RevokeRefreshToken(ctx context.Context, tokenID string) error
	// RevokeAllForUser revokes every active refresh token of a user.
	RevokeAllForUser(ctx context.Context, userID string) (int, error)
	// CleanupExpired purges refresh tokens past their expiry.
	CleanupExpired(ctx context.Context) (int, error)
}

type tokenStore interface {
	Put(ctx context.Context, t *domain.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, tokenID string, at time.Time) error
	ListActiveByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type accessSigner interface {
	Sign(user *domain.User) (token, jti string, err error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}

type service struct {
	repo       tokenStore
	signer     accessSigner
	refreshTTL time.Duration
	now        func() time.Time
}

type ServiceDeps struct {
	TokenRepo tokenStore
	Signer    accessSigner
	Settings  config.JWTSettings
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.TokenRepo,
		signer:     deps.Signer,
		refreshTTL: deps.Settings.RefreshTokenExpiry,
		now:        time.Now,
	}
}

func (s *service) IssuePair(ctx context.Context, user *domain.User) (*domain.TokenResponse, error) {
	access, jti, err := s.signer.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := newRefreshTokenValue()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &domain.RefreshToken{
		TokenID:       id.New(),
		UserID:        user.UserID,
		Token:         refresh,
		AccessTokenID: jti,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.refreshTTL),
	}
	if err := s.repo.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.signer.Expiry().Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (s *service) ValidateAccessToken(tokenStr string) (*jwtinfra.Claims, error) {
	claims, err := s.signer.Verify(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}

func (s *service) VerifyRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	record, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, domain.E(domain.ErrUnauthorized, "Invalid refresh token.")
	}
	if record.Revoked() {
		return nil, domain.E(domain.ErrUnauthorized, "Refresh token has been revoked.")
	}
	if record.Expired(s.now().UTC()) {
		return nil, domain.E(domain.ErrUnauthorized, "Refresh token has expired.")
	}
	return record, nil
}

func (s *service) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	return s.repo.Revoke(ctx, tokenID, s.now().UTC())
}

func (s *service) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	active, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC()
	revoked := 0
	for i := range active {
		if err := s.repo.Revoke(ctx, active[i].TokenID, now); err != nil {
			return revoked, err
		}
		revoked++
	}
	return revoked, nil
}

func (s *service) CleanupExpired(ctx context.Context) (int, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}

// newRefreshTokenValue mints an opaque 64-byte random token, base64 encoded.
func newRefreshTokenValue() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
