package sms

import (
	"context"
	"testing"

	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	name      domain.SMSProvider
	available bool
	sent      []string
}

func (s *stubSender) Name() domain.SMSProvider { return s.name }
func (s *stubSender) Available() bool          { return s.available }
func (s *stubSender) SendOTP(_ context.Context, to, _ string) error {
	s.sent = append(s.sent, to)
	return nil
}

func TestRouterSelectPreferred(t *testing.T) {
	twilio := &stubSender{name: domain.ProviderTwilio, available: true}
	mock := &stubSender{name: domain.ProviderMock, available: true}
	r := NewRouter(mock, twilio)

	s, err := r.Select(domain.ProviderTwilio)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderTwilio, s.Name())
}

func TestRouterFallbackInRegistrationOrder(t *testing.T) {
	twilio := &stubSender{name: domain.ProviderTwilio, available: false}
	vonage := &stubSender{name: domain.ProviderVonage, available: true}
	mock := &stubSender{name: domain.ProviderMock, available: true}
	r := NewRouter(twilio, vonage, mock)

	s, err := r.Select(domain.ProviderTwilio)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderVonage, s.Name(), "first available in registration order wins")
}

func TestRouterUnconfiguredPreferredFallsBackToMock(t *testing.T) {
	// Twilio with no credentials is registered but unavailable.
	twilio := NewTwilioSender(config.SMSSettings{})
	mock := NewMockSender()
	r := NewRouter(twilio, mock)

	s, err := r.Select(domain.ProviderTwilio)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderMock, s.Name())
}

func TestRouterNoneAvailable(t *testing.T) {
	twilio := &stubSender{name: domain.ProviderTwilio, available: false}
	vonage := &stubSender{name: domain.ProviderVonage, available: false}
	r := NewRouter(twilio, vonage)

	_, err := r.Select(domain.ProviderTwilio)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestRouterUnknownPreferredStillFallsBack(t *testing.T) {
	mock := &stubSender{name: domain.ProviderMock, available: true}
	r := NewRouter(mock)

	s, err := r.Select(domain.ProviderVonage)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderMock, s.Name())
}

func TestRouterDuplicateRegistrationLastWins(t *testing.T) {
	first := &stubSender{name: domain.ProviderMock, available: false}
	second := &stubSender{name: domain.ProviderMock, available: true}
	r := NewRouter(first, second)

	s, err := r.Select(domain.ProviderMock)
	require.NoError(t, err)
	assert.Same(t, Sender(second), s)
	assert.Len(t, r.Senders(), 1)
}

func TestRouterAvailableSenders(t *testing.T) {
	twilio := &stubSender{name: domain.ProviderTwilio, available: false}
	sns := &stubSender{name: domain.ProviderAwsSns, available: true}
	mock := &stubSender{name: domain.ProviderMock, available: true}
	r := NewRouter(twilio, sns, mock)

	assert.Equal(t, []domain.SMSProvider{domain.ProviderAwsSns, domain.ProviderMock}, r.AvailableSenders())
}

func TestCredentialGatedAvailability(t *testing.T) {
	assert.False(t, NewTwilioSender(config.SMSSettings{TwilioAccountSID: "sid"}).Available(),
		"partial credentials are not enough")
	assert.True(t, NewTwilioSender(config.SMSSettings{
		TwilioAccountSID: "sid", TwilioAuthToken: "tok", TwilioFromNumber: "+15550001111",
	}).Available())

	assert.False(t, NewVonageSender(config.SMSSettings{VonageAPIKey: "k"}).Available())
	assert.True(t, NewVonageSender(config.SMSSettings{
		VonageAPIKey: "k", VonageAPISecret: "s", VonageFromName: "Marketplace",
	}).Available())
}

func TestMockSenderAlwaysDelivers(t *testing.T) {
	m := &MockSender{}
	assert.True(t, m.Available())
	require.NoError(t, m.SendOTP(context.Background(), "+15550001111", "Your verification code is 123456"))
}
