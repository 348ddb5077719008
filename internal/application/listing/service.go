package listing

import (
	"context"

	"github.com/marketplace-api/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	// List returns a page of active listings and the cursor for the next
	// page, empty when exhausted.
	List(ctx context.Context, limit int, cursor string) ([]domain.VendorListing, string, error)
	Get(ctx context.Context, listingID string) (*domain.VendorListing, error)
}

type listingStore interface {
	Get(ctx context.Context, listingID string) (*domain.VendorListing, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.VendorListing, string, error)
}

type service struct {
	repo listingStore
}

func NewService(repo listingStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.VendorListing, string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, listingID string) (*domain.VendorListing, error) {
	return s.repo.Get(ctx, listingID)
}
