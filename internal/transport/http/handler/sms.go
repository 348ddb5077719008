package handler

import (
	"net/http"

	"github.com/marketplace-api/internal/infrastructure/sms"
)

// SMSHandler exposes provider diagnostics for operators.
type SMSHandler struct {
	router *sms.Router
}

func NewSMSHandler(router *sms.Router) *SMSHandler { return &SMSHandler{router: router} }

func (h *SMSHandler) Providers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"providers": h.router.Senders(),
	})
}
