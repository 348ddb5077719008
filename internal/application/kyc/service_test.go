package kyc

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDocumentStore struct{ mock.Mock }

func (m *mockDocumentStore) Put(ctx context.Context, d *domain.KycDocument) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDocumentStore) ListByUser(ctx context.Context, userID string) ([]domain.KycDocument, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.KycDocument), args.Error(1)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func TestUploadStoresObjectAndPendingRecord(t *testing.T) {
	docs := new(mockDocumentStore)
	objects := new(mockObjectStore)
	objects.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "kyc/user-1/") && strings.HasSuffix(key, ".pdf")
	}), mock.Anything, "application/pdf").Return("s3://bucket/key", nil)

	var stored *domain.KycDocument
	docs.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.KycDocument)
	}).Return(nil)

	svc := NewService(ServiceDeps{DocumentRepo: docs, ObjectStore: objects})
	doc, err := svc.Upload(context.Background(), UploadRequest{
		UserID:      "user-1",
		DocType:     "PAN",
		Filename:    "pan.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("doc body"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KycPending, doc.Status)
	require.NotNil(t, stored)
	assert.Equal(t, doc.DocumentID, stored.DocumentID)
	assert.Equal(t, "PAN", stored.DocType)
}

func TestUploadRejectsUnknownDocType(t *testing.T) {
	objects := new(mockObjectStore)
	svc := NewService(ServiceDeps{DocumentRepo: new(mockDocumentStore), ObjectStore: objects})

	_, err := svc.Upload(context.Background(), UploadRequest{
		UserID:  "user-1",
		DocType: "Selfie",
		Body:    strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	objects.AssertNotCalled(t, "Upload")
}

func TestListForUserAttachesDownloadURLs(t *testing.T) {
	docs := new(mockDocumentStore)
	objects := new(mockObjectStore)
	docs.On("ListByUser", mock.Anything, "user-1").Return([]domain.KycDocument{
		{DocumentID: "doc-1", UserID: "user-1", ObjectKey: "kyc/user-1/doc-1.pdf"},
	}, nil)
	objects.On("PresignedURL", mock.Anything, "kyc/user-1/doc-1.pdf", mock.Anything).
		Return("https://signed.example/doc-1", nil)

	svc := NewService(ServiceDeps{DocumentRepo: docs, ObjectStore: objects})
	views, err := svc.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "https://signed.example/doc-1", views[0].DownloadURL)
}
