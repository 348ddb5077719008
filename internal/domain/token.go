package domain

import "time"

// RefreshToken is an opaque long-lived credential exchanged for new token
// pairs. PK: token_id. GSI token-index on the unique token value,
// GSI user_id-index for bulk revocation on logout.
type RefreshToken struct {
	TokenID       string     `json:"id" dynamodbav:"token_id"`
	UserID        string     `json:"user_id" dynamodbav:"user_id"`
	Token         string     `json:"-" dynamodbav:"token"`
	AccessTokenID string     `json:"access_token_id" dynamodbav:"access_token_id"` // jti of the linked access token
	CreatedAt     time.Time  `json:"created_at" dynamodbav:"created_at,unixtime"`
	ExpiresAt     time.Time  `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty" dynamodbav:"revoked_at"`
}

// Revoked reports whether the token has been explicitly revoked.
func (t *RefreshToken) Revoked() bool { return t.RevokedAt != nil }

// Expired reports whether the token is past its expiry.
func (t *RefreshToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

// Valid reports whether the token is neither revoked nor expired.
func (t *RefreshToken) Valid(now time.Time) bool { return !t.Revoked() && !t.Expired(now) }

// TokenResponse is the credential pair handed to a caller after a successful
// login or refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds until the access token expires
	TokenType    string `json:"token_type"` // always "Bearer"
}
