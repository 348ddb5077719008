package auth

import (
	"context"
	"testing"
	"time"

	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

type mockOTPService struct{ mock.Mock }

func (m *mockOTPService) Send(ctx context.Context, phone string, purpose domain.OTPPurpose, userID string) (*otp.SendResult, error) {
	args := m.Called(ctx, phone, purpose, userID)
	if r, _ := args.Get(0).(*otp.SendResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPService) Verify(ctx context.Context, phone, code string, purpose domain.OTPPurpose) (*domain.UserOTP, error) {
	args := m.Called(ctx, phone, code, purpose)
	if o, _ := args.Get(0).(*domain.UserOTP); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) IssuePair(ctx context.Context, user *domain.User) (*domain.TokenResponse, error) {
	args := m.Called(ctx, user)
	if t, _ := args.Get(0).(*domain.TokenResponse); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenService) VerifyRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, token)
	if t, _ := args.Get(0).(*domain.RefreshToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenService) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	return m.Called(ctx, tokenID).Error(0)
}
func (m *mockTokenService) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// --- helpers ---

const testPhone = "+15550001111"

func newTestService(users *mockUserStore, otps *mockOTPService, tokens *mockTokenService) Service {
	return NewService(ServiceDeps{UserRepo: users, OTPs: otps, Tokens: tokens})
}

func sendResult() *otp.SendResult {
	return &otp.SendResult{OTP: &domain.UserOTP{
		Provider:  domain.ProviderMock,
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}}
}

func activeUser() *domain.User {
	return &domain.User{
		UserID:        "user-1",
		FullName:      "Asha Vendor",
		Phone:         testPhone,
		IsActive:      true,
		PhoneVerified: true,
		Roles:         []string{domain.RoleVendor},
	}
}

func tokenPair() *domain.TokenResponse {
	return &domain.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
		TokenType:    "Bearer",
	}
}

func registerReq() RegisterRequest {
	return RegisterRequest{FullName: "Asha Vendor", Phone: testPhone, Role: domain.RoleVendor}
}

// --- Register ---

func TestRegisterSendsRegistrationOTP(t *testing.T) {
	users := new(mockUserStore)
	otps := new(mockOTPService)
	users.On("GetByPhone", mock.Anything, testPhone).Return(nil, domain.ErrNotFound)
	otps.On("Send", mock.Anything, testPhone, domain.PurposeRegistration, "").Return(sendResult(), nil)

	svc := newTestService(users, otps, new(mockTokenService))
	out, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderMock, out.Provider)
	otps.AssertExpectations(t)
}

func TestRegisterPhoneAlreadyRegistered(t *testing.T) {
	users := new(mockUserStore)
	otps := new(mockOTPService)
	users.On("GetByPhone", mock.Anything, testPhone).Return(activeUser(), nil)

	svc := newTestService(users, otps, new(mockTokenService))
	_, err := svc.Register(context.Background(), registerReq())
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Phone number already registered.", err.Error())

	// The conflict carries the existing identity so clients can route the
	// user to login.
	var dup *AlreadyRegisteredError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "user-1", dup.Profile.UserID)
	assert.Equal(t, testPhone, dup.Profile.Phone)
	otps.AssertNotCalled(t, "Send")
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	req := registerReq()
	req.Role = domain.RoleAdmin

	svc := newTestService(new(mockUserStore), new(mockOTPService), new(mockTokenService))
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRegisterValidation(t *testing.T) {
	req := registerReq()
	req.FullName = ""

	svc := newTestService(new(mockUserStore), new(mockOTPService), new(mockTokenService))
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// --- CompleteRegistration ---

func TestCompleteRegistrationCreatesVerifiedUser(t *testing.T) {
	users := new(mockUserStore)
	otps := new(mockOTPService)
	tokens := new(mockTokenService)

	otps.On("Verify", mock.Anything, testPhone, "123456", domain.PurposeRegistration).
		Return(&domain.UserOTP{Verified: true}, nil)
	users.On("GetByPhone", mock.Anything, testPhone).Return(nil, domain.ErrNotFound)

	var created *domain.User
	users.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
	}).Return(nil)
	tokens.On("IssuePair", mock.Anything, mock.Anything).Return(tokenPair(), nil)

	svc := newTestService(users, otps, tokens)
	pair, profile, err := svc.CompleteRegistration(context.Background(), VerifyRegistrationRequest{
		RegisterRequest: registerReq(),
		Code:            "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "access", pair.AccessToken)

	require.NotNil(t, created)
	assert.True(t, created.IsActive)
	assert.True(t, created.PhoneVerified)
	assert.Equal(t, []string{domain.RoleVendor}, created.Roles)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, created.UserID, profile.UserID)
}

func TestCompleteRegistrationWrongCode(t *testing.T) {
	users := new(mockUserStore)
	otps := new(mockOTPService)
	otps.On("Verify", mock.Anything, testPhone, "000000", domain.PurposeRegistration).
		Return(nil, domain.E(domain.ErrUnauthorized, "Invalid OTP. 2 attempts remaining."))

	svc := newTestService(users, otps, new(mockTokenService))
	_, _, err := svc.CompleteRegistration(context.Background(), VerifyRegistrationRequest{
		RegisterRequest: registerReq(),
		Code:            "000000",
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	users.AssertNotCalled(t, "Put")
}

func TestCompleteRegistrationLosesRaceToExistingAccount(t *testing.T) {
	users := new(mockUserStore)
	otps := new(mockOTPService)
	otps.On("Verify", mock.Anything, testPhone, "123456", domain.PurposeRegistration).
		Return(&domain.UserOTP{Verified: true}, nil)
	users.On("GetByPhone", mock.Anything, testPhone).Return(activeUser(), nil)

	svc := newTestService(users, otps, new(mockTokenService))
	_, _, err := svc.CompleteRegistration(context.Background(), VerifyRegistrationRequest{
		RegisterRequest: registerReq(),
		Code:            "123456",
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	var dup *AlreadyRegisteredError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "user-1", dup.Profile.UserID)
	users.AssertNotCalled(t, "Put")
}

// --- Login ---

func TestRequestLoginOTP(t *testing.T) {
	users := new(mockUserStore)
	otps := new(mockOTPService)
	users.On("GetByPhone", mock.Anything, testPhone).Return(activeUser(), nil)
	otps.On("Send", mock.Anything, testPhone, domain.PurposeLogin, "user-1").Return(sendResult(), nil)

	svc := newTestService(users, otps, new(mockTokenService))
	_, err := svc.RequestLoginOTP(context.Background(), testPhone)
	require.NoError(t, err)
	otps.AssertExpectations(t)
}

func TestRequestLoginOTPUnknownPhone(t *testing.T) {
	users := new(mockUserStore)
	users.On("GetByPhone", mock.Anything, testPhone).Return(nil, domain.ErrNotFound)

	svc := newTestService(users, new(mockOTPService), new(mockTokenService))
	_, err := svc.RequestLoginOTP(context.Background(), testPhone)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "No account found with this phone number.", err.Error())
}

func TestRequestLoginOTPDeactivatedAccount(t *testing.T) {
	u := activeUser()
	u.IsActive = false
	users := new(mockUserStore)
	users.On("GetByPhone", mock.Anything, testPhone).Return(u, nil)

	svc := newTestService(users, new(mockOTPService), new(mockTokenService))
	_, err := svc.RequestLoginOTP(context.Background(), testPhone)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCompleteLoginIssuesTokensAndRecordsLogin(t *testing.T) {
	users := new(mockUserStore)
	otps := new(mockOTPService)
	tokens := new(mockTokenService)

	otps.On("Verify", mock.Anything, testPhone, "123456", domain.PurposeLogin).
		Return(&domain.UserOTP{Verified: true}, nil)
	users.On("GetByPhone", mock.Anything, testPhone).Return(activeUser(), nil)
	users.On("RecordLogin", mock.Anything, "user-1", mock.AnythingOfType("time.Time")).Return(nil)
	tokens.On("IssuePair", mock.Anything, mock.Anything).Return(tokenPair(), nil)

	svc := newTestService(users, otps, tokens)
	pair, profile, err := svc.CompleteLogin(context.Background(), testPhone, "123456")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, "user-1", profile.UserID)
	users.AssertExpectations(t)
}

func TestCompleteLoginWrongCodeIssuesNothing(t *testing.T) {
	otps := new(mockOTPService)
	tokens := new(mockTokenService)
	otps.On("Verify", mock.Anything, testPhone, "999999", domain.PurposeLogin).
		Return(nil, domain.E(domain.ErrUnauthorized, "Invalid OTP. 2 attempts remaining."))

	svc := newTestService(new(mockUserStore), otps, tokens)
	_, _, err := svc.CompleteLogin(context.Background(), testPhone, "999999")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	tokens.AssertNotCalled(t, "IssuePair")
}

func TestVerifyOTPStandalone(t *testing.T) {
	otps := new(mockOTPService)
	otps.On("Verify", mock.Anything, testPhone, "123456", domain.PurposePhoneVerification).
		Return(&domain.UserOTP{Verified: true}, nil)

	svc := newTestService(new(mockUserStore), otps, new(mockTokenService))
	record, err := svc.VerifyOTP(context.Background(), testPhone, "123456", domain.PurposePhoneVerification)
	require.NoError(t, err)
	assert.True(t, record.Verified)
}

func TestVerifyOTPRejectsUnknownPurpose(t *testing.T) {
	svc := newTestService(new(mockUserStore), new(mockOTPService), new(mockTokenService))
	_, err := svc.VerifyOTP(context.Background(), testPhone, "123456", domain.OTPPurpose("Weird"))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// --- Refresh ---

func TestRefreshRotatesToken(t *testing.T) {
	users := new(mockUserStore)
	tokens := new(mockTokenService)

	tokens.On("VerifyRefreshToken", mock.Anything, "old-refresh").
		Return(&domain.RefreshToken{TokenID: "tok-1", UserID: "user-1"}, nil)
	users.On("Get", mock.Anything, "user-1").Return(activeUser(), nil)
	tokens.On("RevokeRefreshToken", mock.Anything, "tok-1").Return(nil)
	tokens.On("IssuePair", mock.Anything, mock.Anything).Return(tokenPair(), nil)

	svc := newTestService(users, new(mockOTPService), tokens)
	pair, err := svc.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "refresh", pair.RefreshToken)
	tokens.AssertExpectations(t)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	tokens := new(mockTokenService)
	tokens.On("VerifyRefreshToken", mock.Anything, "revoked").
		Return(nil, domain.E(domain.ErrUnauthorized, "Refresh token has been revoked."))

	svc := newTestService(new(mockUserStore), new(mockOTPService), tokens)
	_, err := svc.Refresh(context.Background(), "revoked")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	tokens.AssertNotCalled(t, "IssuePair")
}

func TestRefreshDeactivatedUser(t *testing.T) {
	u := activeUser()
	u.IsActive = false
	users := new(mockUserStore)
	tokens := new(mockTokenService)
	tokens.On("VerifyRefreshToken", mock.Anything, "old-refresh").
		Return(&domain.RefreshToken{TokenID: "tok-1", UserID: "user-1"}, nil)
	users.On("Get", mock.Anything, "user-1").Return(u, nil)

	svc := newTestService(users, new(mockOTPService), tokens)
	_, err := svc.Refresh(context.Background(), "old-refresh")
	require.ErrorIs(t, err, domain.ErrForbidden)
	tokens.AssertNotCalled(t, "RevokeRefreshToken")
}

// --- Logout / profile ---

func TestLogoutRevokesAllSessions(t *testing.T) {
	tokens := new(mockTokenService)
	tokens.On("RevokeAllForUser", mock.Anything, "user-1").Return(2, nil)

	svc := newTestService(new(mockUserStore), new(mockOTPService), tokens)
	require.NoError(t, svc.Logout(context.Background(), "user-1"))
	tokens.AssertExpectations(t)
}

func TestGetProfile(t *testing.T) {
	users := new(mockUserStore)
	users.On("Get", mock.Anything, "user-1").Return(activeUser(), nil)

	svc := newTestService(users, new(mockOTPService), new(mockTokenService))
	profile, err := svc.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, testPhone, profile.Phone)
}

func TestGetProfileNotFound(t *testing.T) {
	users := new(mockUserStore)
	users.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	svc := newTestService(users, new(mockOTPService), new(mockTokenService))
	_, err := svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
