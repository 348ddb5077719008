package sms

import (
	"context"
	"log/slog"
	"time"

	"github.com/marketplace-api/internal/domain"
)

// MockSender logs messages instead of delivering them. Always available, so
// it serves as the fallback of last resort in development environments.
type MockSender struct {
	// Delay simulates provider latency. Zero means no delay.
	Delay time.Duration
}

// NewMockSender returns a mock sender with a small simulated latency.
func NewMockSender() *MockSender {
	return &MockSender{Delay: 100 * time.Millisecond}
}

func (m *MockSender) Name() domain.SMSProvider { return domain.ProviderMock }

func (m *MockSender) Available() bool { return true }

func (m *MockSender) SendOTP(ctx context.Context, to, body string) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	slog.Info("mock SMS delivered", "to", to, "body", body)
	return nil
}
