package sms

import (
	"context"
	"log/slog"

	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
)

// TwilioSender delivers SMS via Twilio. It reports itself available only when
// the full credential set is configured.
//
// TODO: integrate the Twilio REST client; delivery is currently logged only.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
}

func NewTwilioSender(cfg config.SMSSettings) *TwilioSender {
	return &TwilioSender{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		from:       cfg.TwilioFromNumber,
	}
}

func (t *TwilioSender) Name() domain.SMSProvider { return domain.ProviderTwilio }

func (t *TwilioSender) Available() bool {
	return t.accountSID != "" && t.authToken != "" && t.from != ""
}

func (t *TwilioSender) SendOTP(ctx context.Context, to, body string) error {
	if !t.Available() {
		return domain.ErrUnavailable
	}
	slog.Info("twilio SMS queued", "to", to, "from", t.from)
	return nil
}
