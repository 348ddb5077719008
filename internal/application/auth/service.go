package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/pkg/id"
	"github.com/marketplace-api/internal/pkg/validate"
)

type RegisterRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2"`
	Phone    string  `json:"phone" validate:"required,min=10"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     string  `json:"role" validate:"required"`
}

type VerifyRegistrationRequest struct {
	RegisterRequest
	Code string `json:"code" validate:"required"`
}

// OTPIssued describes a successfully requested passcode. Code is populated
// only when debug exposure applies.
type OTPIssued struct {
	Provider  domain.SMSProvider `json:"provider"`
	ExpiresAt time.Time          `json:"expires_at"`
	Code      string             `json:"code,omitempty"`
}

// AlreadyRegisteredError reports a registration attempt against a phone that
// already has an account. It carries the existing identity so the client can
// route the user to login instead of retrying.
type AlreadyRegisteredError struct {
	Profile *domain.UserProfile
}

func (e *AlreadyRegisteredError) Error() string { return "Phone number already registered." }
func (e *AlreadyRegisteredError) Unwrap() error { return domain.ErrConflict }

type Service interface {
	// Register starts phone-based registration by sending a Registration
	// passcode. Fails when the phone already has an account.
	Register(ctx context.Context, req RegisterRequest) (*OTPIssued, error)
	// CompleteRegistration verifies the Registration passcode, creates the
	// account and signs the user in.
	CompleteRegistration(ctx context.Context, req VerifyRegistrationRequest) (*domain.TokenResponse, *domain.UserProfile, error)
	// RequestLoginOTP sends a Login passcode to an existing active account.
	RequestLoginOTP(ctx context.Context, phone string) (*OTPIssued, error)
	// CompleteLogin verifies the Login passcode and issues a token pair.
	CompleteLogin(ctx context.Context, phone, code string) (*domain.TokenResponse, *domain.UserProfile, error)
	// VerifyOTP checks a passcode without completing a login or
	// registration, for flows that stage verification separately.
	VerifyOTP(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.UserOTP, error)
	// Refresh rotates a refresh token: the presented token is revoked and a
	// fresh pair is issued.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
	// Logout revokes every active refresh token of the user.
	Logout(ctx context.Context, userID string) error
	// GetProfile returns the public profile of a user.
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	RecordLogin(ctx context.Context, userID string, at time.Time) error
}

type otpService interface {
	Send(ctx context.Context, phone string, purpose domain.OTPPurpose, userID string) (*otp.SendResult, error)
	Verify(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.UserOTP, error)
}

type tokenService interface {
	IssuePair(ctx context.Context, user *domain.User) (*domain.TokenResponse, error)
	VerifyRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID string) error
	RevokeAllForUser(ctx context.Context, userID string) (int, error)
}

type service struct {
	users  userStore
	otps   otpService
	tokens tokenService
	now    func() time.Time
}

type ServiceDeps struct {
	UserRepo userStore
	OTPs     otpService
	Tokens   tokenService
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:  deps.UserRepo,
		otps:   deps.OTPs,
		tokens: deps.Tokens,
		now:    time.Now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*OTPIssued, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := checkRegisterRole(req.Role); err != nil {
		return nil, err
	}
	if existing, err := s.users.GetByPhone(ctx, req.Phone); err == nil {
		return nil, &AlreadyRegisteredError{Profile: existing.Profile()}
	}

	res, err := s.otps.Send(ctx, req.Phone, domain.PurposeRegistration, "")
	if err != nil {
		return nil, err
	}
	return issued(res), nil
}

func (s *service) CompleteRegistration(ctx context.Context, req VerifyRegistrationRequest) (*domain.TokenResponse, *domain.UserProfile, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := checkRegisterRole(req.Role); err != nil {
		return nil, nil, err
	}
	if _, err := s.otps.Verify(ctx, req.Phone, req.Code, domain.PurposeRegistration); err != nil {
		return nil, nil, err
	}
	// The passcode proves phone ownership but a parallel registration may
	// have completed first.
	if existing, err := s.users.GetByPhone(ctx, req.Phone); err == nil {
		return nil, nil, &AlreadyRegisteredError{Profile: existing.Profile()}
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:        id.New(),
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		IsActive:      true,
		PhoneVerified: true,
		Roles:         []string{req.Role},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, nil, err
	}
	slog.Info("user registered", "user_id", u.UserID, "role", req.Role)

	tokens, err := s.tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return tokens, u.Profile(), nil
}

func (s *service) RequestLoginOTP(ctx context.Context, phone string) (*OTPIssued, error) {
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, domain.E(domain.ErrNotFound, "No account found with this phone number.")
	}
	if !u.IsActive {
		return nil, domain.E(domain.ErrForbidden, "Account is deactivated.")
	}

	res, err := s.otps.Send(ctx, phone, domain.PurposeLogin, u.UserID)
	if err != nil {
		return nil, err
	}
	return issued(res), nil
}

func (s *service) CompleteLogin(ctx context.Context, phone, code string) (*domain.TokenResponse, *domain.UserProfile, error) {
	if _, err := s.otps.Verify(ctx, phone, code, domain.PurposeLogin); err != nil {
		return nil, nil, err
	}
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, nil, domain.E(domain.ErrNotFound, "No account found with this phone number.")
	}
	if !u.IsActive {
		return nil, nil, domain.E(domain.ErrForbidden, "Account is deactivated.")
	}
	if !u.PhoneVerified {
		return nil, nil, domain.E(domain.ErrForbidden, "Phone number is not verified.")
	}

	now := s.now().UTC()
	u.LastLoginAt = &now
	if err := s.users.RecordLogin(ctx, u.UserID, now); err != nil {
		slog.Warn("failed to record last login", "user_id", u.UserID, "err", err)
	}

	tokens, err := s.tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("user logged in", "user_id", u.UserID)
	return tokens, u.Profile(), nil
}

func (s *service) VerifyOTP(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.UserOTP, error) {
	if !domain.ValidPurpose(purpose) {
		return nil, domain.E(domain.ErrBadRequest, "Invalid OTP purpose.")
	}
	return s.otps.Verify(ctx, phone, code, purpose)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	record, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, record.UserID)
	if err != nil {
		return nil, domain.E(domain.ErrUnauthorized, "Invalid refresh token.")
	}
	if !u.IsActive {
		return nil, domain.E(domain.ErrForbidden, "Account is deactivated.")
	}

	// Rotation: the presented token dies before its replacement is born, so
	// a replayed token can never mint a second pair.
	if err := s.tokens.RevokeRefreshToken(ctx, record.TokenID); err != nil {
		return nil, err
	}
	return s.tokens.IssuePair(ctx, u)
}

func (s *service) Logout(ctx context.Context, userID string) error {
	n, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	slog.Info("user logged out", "user_id", userID, "revoked", n)
	return nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u.Profile(), nil
}

func checkRegisterRole(role string) error {
	if !domain.ValidRole(role) {
		return domain.E(domain.ErrBadRequest, "Invalid role.")
	}
	if role == domain.RoleAdmin {
		return domain.E(domain.ErrForbidden, "Cannot self-register as admin.")
	}
	return nil
}

func issued(res *otp.SendResult) *OTPIssued {
	return &OTPIssued{
		Provider:  res.OTP.Provider,
		ExpiresAt: res.OTP.ExpiresAt,
		Code:      res.DebugCode,
	}
}
