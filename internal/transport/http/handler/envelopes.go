package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marketplace-api/internal/application/auth"
	"github.com/marketplace-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps registration/login/refresh responses.
type AuthEnvelope struct {
	AccessToken  string              `json:"access_token,omitempty"`
	RefreshToken string              `json:"refresh_token,omitempty"`
	TokenType    string              `json:"token_type,omitempty"`
	ExpiresIn    int                 `json:"expires_in,omitempty"`
	User         *domain.UserProfile `json:"user,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// AlreadyRegisteredEnvelope is the conflict response for registration against
// a phone that already has an account. It carries the existing identity so
// clients can offer login directly.
type AlreadyRegisteredEnvelope struct {
	Error  string              `json:"error"`
	UserID string              `json:"user_id"`
	User   *domain.UserProfile `json:"user"`
}

// OTPEnvelope wraps passcode request responses.
type OTPEnvelope struct {
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	// Code is set only in development with debug exposure enabled.
	Code string `json:"code,omitempty"`
}

// PaginatedListingsEnvelope wraps paginated listing responses.
type PaginatedListingsEnvelope struct {
	Data       []domain.VendorListing `json:"data"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a service error to the right status code and writes it.
func httpError(w http.ResponseWriter, err error) {
	var dup *auth.AlreadyRegisteredError
	if errors.As(err, &dup) {
		writeJSON(w, http.StatusConflict, AlreadyRegisteredEnvelope{
			Error:  dup.Error(),
			UserID: dup.Profile.UserID,
			User:   dup.Profile,
		})
		return
	}
	writeError(w, errStatus(err), err.Error())
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
