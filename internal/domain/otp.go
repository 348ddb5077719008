package domain

import "time"

// OTPPurpose scopes a passcode to the flow that requested it. A Registration
// code cannot complete a Login and vice versa.
type OTPPurpose string

const (
	PurposeRegistration      OTPPurpose = "Registration"
	PurposeLogin             OTPPurpose = "Login"
	PurposePasswordReset     OTPPurpose = "PasswordReset"
	PurposePhoneVerification OTPPurpose = "PhoneVerification"
)

// ValidPurpose reports whether p is one of the known OTP purposes.
func ValidPurpose(p OTPPurpose) bool {
	switch p {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset, PurposePhoneVerification:
		return true
	}
	return false
}

// SMSProvider tags the delivery channel that carried an OTP.
type SMSProvider string

const (
	ProviderTwilio SMSProvider = "Twilio"
	ProviderVonage SMSProvider = "Vonage"
	ProviderAwsSns SMSProvider = "AwsSns"
	ProviderMock   SMSProvider = "Mock"
)

// UserOTP is a one-time passcode issued for a phone number and purpose.
// PK: otp_id. GSI phone-index on phone for per-phone lookups.
// UserID stays empty for Registration codes until the account exists.
type UserOTP struct {
	OtpID        string      `json:"id" dynamodbav:"otp_id"`
	UserID       string      `json:"user_id,omitempty" dynamodbav:"user_id"`
	Phone        string      `json:"phone" dynamodbav:"phone"`
	Code         string      `json:"-" dynamodbav:"code"`
	Purpose      OTPPurpose  `json:"purpose" dynamodbav:"purpose"`
	Provider     SMSProvider `json:"provider" dynamodbav:"provider"`
	Verified     bool        `json:"verified" dynamodbav:"verified"`
	AttemptCount int         `json:"attempt_count" dynamodbav:"attempt_count"`
	MaxAttempts  int         `json:"max_attempts" dynamodbav:"max_attempts"`
	CreatedAt    time.Time   `json:"created_at" dynamodbav:"created_at,unixtime"`
	ExpiresAt    time.Time   `json:"expires_at" dynamodbav:"expires_at,unixtime"`
	VerifiedAt   *time.Time  `json:"verified_at,omitempty" dynamodbav:"verified_at"`
}

// Expired reports whether the passcode is past its validity window.
func (o *UserOTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// AttemptsExhausted reports whether all guesses have been used up.
func (o *UserOTP) AttemptsExhausted() bool {
	return o.AttemptCount >= o.MaxAttempts
}
