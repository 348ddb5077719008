package jwtinfra

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
)

// Claims holds the JWT payload fields carried by access tokens.
type Claims struct {
	Name          string   `json:"name,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone"`
	PhoneVerified bool     `json:"phone_verified"`
	KycVerified   bool     `json:"kyc_verified"`
	Roles         []string `json:"roles"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a shared symmetric secret.
type Provider struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
}

func NewProvider(cfg config.JWTSettings) (*Provider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &Provider{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   cfg.AccessTokenExpiry,
	}, nil
}

// Expiry returns the configured access token lifetime.
func (p *Provider) Expiry() time.Duration { return p.expiry }

// Sign issues an access token for the user and returns the compact token
// string together with its token ID (jti).
func (p *Provider) Sign(user *domain.User) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		Name:          user.FullName,
		Phone:         user.Phone,
		PhoneVerified: user.PhoneVerified,
		KycVerified:   user.KycVerified,
		Roles:         user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.UserID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}
	if user.Email != nil {
		claims.Email = *user.Email
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Verify parses and validates an access token. Expiry is enforced with zero
// leeway.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
