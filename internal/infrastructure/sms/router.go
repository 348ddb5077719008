package sms

import (
	"fmt"

	"github.com/marketplace-api/internal/domain"
)

// Router holds the registered senders and picks one for each delivery.
// Selection prefers a named provider when it is available, then falls back
// through the remaining senders in registration order.
type Router struct {
	senders []Sender
	byName  map[domain.SMSProvider]Sender
}

// NewRouter registers the given senders. Registering two senders with the
// same name keeps the last one.
func NewRouter(senders ...Sender) *Router {
	r := &Router{byName: make(map[domain.SMSProvider]Sender, len(senders))}
	for _, s := range senders {
		r.register(s)
	}
	return r
}

func (r *Router) register(s Sender) {
	if _, ok := r.byName[s.Name()]; ok {
		for i, existing := range r.senders {
			if existing.Name() == s.Name() {
				r.senders[i] = s
				break
			}
		}
	} else {
		r.senders = append(r.senders, s)
	}
	r.byName[s.Name()] = s
}

// Select returns the sender to deliver through. The preferred provider wins
// when registered and available; otherwise the first available sender in
// registration order is chosen. Returns ErrUnavailable when nothing can send.
func (r *Router) Select(preferred domain.SMSProvider) (Sender, error) {
	if s, ok := r.byName[preferred]; ok && s.Available() {
		return s, nil
	}
	for _, s := range r.senders {
		if s.Available() {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no sms provider available: %w", domain.ErrUnavailable)
}

// AvailableSenders lists the names of all senders that currently report
// available, in registration order.
func (r *Router) AvailableSenders() []domain.SMSProvider {
	var out []domain.SMSProvider
	for _, s := range r.senders {
		if s.Available() {
			out = append(out, s.Name())
		}
	}
	return out
}

// Senders lists every registered sender with its availability, for the
// diagnostics endpoint.
func (r *Router) Senders() []SenderStatus {
	out := make([]SenderStatus, 0, len(r.senders))
	for _, s := range r.senders {
		out = append(out, SenderStatus{Name: s.Name(), Available: s.Available()})
	}
	return out
}

// SenderStatus reports one registered provider and whether it can deliver.
type SenderStatus struct {
	Name      domain.SMSProvider `json:"name"`
	Available bool               `json:"available"`
}
