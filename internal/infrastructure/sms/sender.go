package sms

import (
	"context"

	"github.com/marketplace-api/internal/domain"
)

// Sender delivers SMS messages through one concrete provider.
type Sender interface {
	// Name identifies the provider this sender delivers through.
	Name() domain.SMSProvider
	// Available reports whether the sender is currently able to deliver.
	// Credential-backed senders report false until fully configured.
	Available() bool
	// SendOTP delivers the message body to the destination number.
	SendOTP(ctx context.Context, to, body string) error
}
