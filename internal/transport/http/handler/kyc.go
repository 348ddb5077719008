package handler

import (
	"net/http"

	"github.com/marketplace-api/internal/application/kyc"
	"github.com/marketplace-api/internal/transport/http/middleware"
)

// 10 MB multipart memory cap; larger bodies spill to disk.
const maxUploadMemory = 10 << 20

// KycHandler serves identity document upload and listing.
type KycHandler struct {
	svc kyc.Service
}

func NewKycHandler(svc kyc.Service) *KycHandler { return &KycHandler{svc: svc} }

func (h *KycHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "document file required")
		return
	}
	defer file.Close()

	doc, err := h.svc.Upload(r.Context(), kyc.UploadRequest{
		UserID:      claims.Subject,
		DocType:     r.FormValue("doc_type"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *KycHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	docs, err := h.svc.ListForUser(r.Context(), claims.Subject)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}
