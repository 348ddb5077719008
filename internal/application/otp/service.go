package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/sms"
	"github.com/marketplace-api/internal/pkg/id"
)

const minPhoneDigits = 10

// SendResult reports the descriptor of a freshly issued passcode. DebugCode
// carries the raw code only when debug exposure is enabled and the mock
// provider delivered it.
type SendResult struct {
	OTP       *domain.UserOTP
	DebugCode string
}

type Service interface {
	// Send issues a new passcode for (phone, purpose), superseding any
	// unverified predecessors. userID may be empty for Registration codes.
	Send(ctx context.Context, phone string, purpose domain.OTPPurpose, userID string) (*SendResult, error)
	// Verify checks a submitted code against the latest unverified passcode
	// and returns the verified record on success.
	Verify(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.UserOTP, error)
	// CleanupExpired purges expired unverified passcodes.
	CleanupExpired(ctx context.Context) (int, error)
}

type otpStore interface {
	Put(ctx context.Context, o *domain.UserOTP) error
	LatestUnverified(ctx context.Context, phone string, purpose domain.OTPPurpose) (*domain.UserOTP, error)
	CountCreatedSince(ctx context.Context, phone string, since time.Time) (int, error)
	DeleteUnverified(ctx context.Context, phone string, purpose domain.OTPPurpose) error
	RecordProvider(ctx context.Context, otpID string, provider domain.SMSProvider) error
	RecordAttempt(ctx context.Context, otpID string, count int) error
	MarkVerified(ctx context.Context, otpID string, count int, at time.Time) error
	DeleteExpiredUnverified(ctx context.Context, now time.Time) (int, error)
}

type smsRouter interface {
	Select(preferred domain.SMSProvider) (sms.Sender, error)
}

type service struct {
	repo     otpStore
	router   smsRouter
	settings config.OTPSettings
	// preferred is consulted first on every delivery.
	preferred domain.SMSProvider
	// issuance serializes supersede-then-insert per (phone, purpose) so two
	// concurrent sends cannot leave both codes alive.
	issuance *keyedMutex
	now      func() time.Time
}

type ServiceDeps struct {
	OTPRepo           otpStore
	Router            smsRouter
	Settings          config.OTPSettings
	PreferredProvider domain.SMSProvider
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.OTPRepo,
		router:    deps.Router,
		settings:  deps.Settings,
		preferred: deps.PreferredProvider,
		issuance:  newKeyedMutex(),
		now:       time.Now,
	}
}

func (s *service) Send(ctx context.Context, phone string, purpose domain.OTPPurpose, userID string) (*SendResult, error) {
	if len(phone) < minPhoneDigits {
		return nil, domain.E(domain.ErrBadRequest, "Phone number must be at least 10 digits.")
	}
	if !domain.ValidPurpose(purpose) {
		return nil, domain.E(domain.ErrBadRequest, "Invalid OTP purpose.")
	}

	unlock := s.issuance.lock(phone + "|" + string(purpose))
	defer unlock()

	now := s.now().UTC()
	recent, err := s.repo.CountCreatedSince(ctx, phone, now.Add(-time.Minute))
	if err != nil {
		return nil, err
	}
	if recent >= s.settings.RateLimitPerMinute {
		return nil, domain.E(domain.ErrRateLimited, "Too many OTP requests. Please try after 1 minute.")
	}

	// Supersede: a new request invalidates every outstanding code for the
	// same phone and purpose.
	if err := s.repo.DeleteUnverified(ctx, phone, purpose); err != nil {
		return nil, err
	}

	code, err := generateCode(s.settings.Length)
	if err != nil {
		return nil, err
	}

	record := &domain.UserOTP{
		OtpID:       id.New(),
		UserID:      userID,
		Phone:       phone,
		Code:        code,
		Purpose:     purpose,
		Verified:    false,
		MaxAttempts: s.settings.MaxAttempts,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.settings.Validity),
	}
	if err := s.repo.Put(ctx, record); err != nil {
		return nil, err
	}

	sender, err := s.router.Select(s.preferred)
	if err != nil {
		// The record stays so a later verify against it still counts
		// attempts; the caller just never received the code.
		return nil, domain.E(domain.ErrUnavailable, "SMS service temporarily unavailable. Please try again later.")
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.settings.Validity.Minutes()))
	if err := sender.SendOTP(ctx, phone, body); err != nil {
		slog.Error("otp delivery failed", "provider", sender.Name(), "phone", phone, "err", err)
		return nil, domain.E(domain.ErrUnavailable, "Failed to send OTP. Please try again.")
	}

	record.Provider = sender.Name()
	if err := s.repo.RecordProvider(ctx, record.OtpID, sender.Name()); err != nil {
		slog.Warn("failed to record otp provider", "otp_id", record.OtpID, "err", err)
	}

	slog.Info("otp sent", "phone", phone, "purpose", purpose, "provider", sender.Name())

	res := &SendResult{OTP: record}
	if s.settings.DebugExposeCode && sender.Name() == domain.ProviderMock {
		res.DebugCode = code
	}
	return res, nil
}

func (s *service) Verify(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.UserOTP, error) {
	record, err := s.repo.LatestUnverified(ctx, phone, purpose)
	if err != nil {
		return nil, domain.E(domain.ErrNotFound, "No valid OTP found for this phone number.")
	}

	now := s.now().UTC()
	if record.Expired(now) {
		return nil, domain.E(domain.ErrUnauthorized, "OTP has expired. Please request a new one.")
	}
	if record.AttemptsExhausted() {
		return nil, domain.E(domain.ErrForbidden, "Maximum attempts exceeded. Please request a new OTP.")
	}

	// Every submission consumes an attempt, right or wrong.
	record.AttemptCount++
	if record.Code != code {
		if err := s.repo.RecordAttempt(ctx, record.OtpID, record.AttemptCount); err != nil {
			return nil, err
		}
		remaining := record.MaxAttempts - record.AttemptCount
		return nil, domain.E(domain.ErrUnauthorized,
			fmt.Sprintf("Invalid OTP. %d attempts remaining.", remaining))
	}

	verifiedAt := now
	record.Verified = true
	record.VerifiedAt = &verifiedAt
	if err := s.repo.MarkVerified(ctx, record.OtpID, record.AttemptCount, verifiedAt); err != nil {
		return nil, err
	}

	slog.Info("otp verified", "phone", phone, "purpose", purpose)
	return record, nil
}

func (s *service) CleanupExpired(ctx context.Context) (int, error) {
	return s.repo.DeleteExpiredUnverified(ctx, s.now().UTC())
}

// generateCode returns a uniformly random numeric code of the given length,
// zero padded.
func generateCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
