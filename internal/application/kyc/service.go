package kyc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/s3infra"
	"github.com/marketplace-api/internal/pkg/id"
)

const presignTTL = 15 * time.Minute

// Accepted identity document kinds.
var docTypes = map[string]bool{
	"Aadhaar":        true,
	"PAN":            true,
	"Passport":       true,
	"DrivingLicense": true,
	"GSTCertificate": true,
}

type UploadRequest struct {
	UserID      string
	DocType     string
	Filename    string
	ContentType string
	Body        io.Reader
}

// DocumentView is a KYC record together with a short-lived download URL.
type DocumentView struct {
	domain.KycDocument
	DownloadURL string `json:"download_url,omitempty"`
}

type Service interface {
	// Upload stores the document body in object storage and records it as
	// Pending review.
	Upload(ctx context.Context, req UploadRequest) (*domain.KycDocument, error)
	// ListForUser returns the user's documents with presigned download URLs.
	ListForUser(ctx context.Context, userID string) ([]DocumentView, error)
}

type documentStore interface {
	Put(ctx context.Context, d *domain.KycDocument) error
	ListByUser(ctx context.Context, userID string) ([]domain.KycDocument, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	docs    documentStore
	objects objectStore
	now     func() time.Time
}

type ServiceDeps struct {
	DocumentRepo documentStore
	ObjectStore  objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{docs: deps.DocumentRepo, objects: deps.ObjectStore, now: time.Now}
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*domain.KycDocument, error) {
	if !docTypes[req.DocType] {
		return nil, domain.E(domain.ErrBadRequest, "Unsupported document type.")
	}
	if req.Body == nil {
		return nil, domain.E(domain.ErrBadRequest, "Document body is required.")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = s3infra.DetectContentType(req.Filename)
	}

	docID := id.New()
	key := fmt.Sprintf("kyc/%s/%s%s", req.UserID, docID, path.Ext(req.Filename))
	if _, err := s.objects.Upload(ctx, key, req.Body, contentType); err != nil {
		return nil, fmt.Errorf("upload kyc document: %w", err)
	}

	doc := &domain.KycDocument{
		DocumentID: docID,
		UserID:     req.UserID,
		DocType:    req.DocType,
		ObjectKey:  key,
		Status:     domain.KycPending,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.docs.Put(ctx, doc); err != nil {
		return nil, err
	}
	slog.Info("kyc document uploaded", "user_id", req.UserID, "doc_type", req.DocType)
	return doc, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]DocumentView, error) {
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		view := DocumentView{KycDocument: d}
		url, err := s.objects.PresignedURL(ctx, d.ObjectKey, presignTTL)
		if err != nil {
			slog.Warn("failed to presign kyc document", "document_id", d.DocumentID, "err", err)
		} else {
			view.DownloadURL = url
		}
		views = append(views, view)
	}
	return views, nil
}
