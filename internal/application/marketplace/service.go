package marketplace

import (
	"context"
	"errors"
	"strings"

	"estate-marketplace/internal/application/listings"
	"estate-marketplace/internal/domain"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("Search query is required")

// PropertyFeed abstracts the backend marketplace endpoints.
type PropertyFeed interface {
	ListProperties(ctx context.Context, token string) ([]domain.BackendProperty, error)
	SearchProperties(ctx context.Context, token, query string) ([]domain.BackendProperty, error)
	BookmarkProperty(ctx context.Context, token string, propertyID int64) error
}

// Service exposes published backend properties in the unified listing shape.
type Service struct {
	Feed PropertyFeed
}

func toListings(props []domain.BackendProperty) []domain.Listing {
	out := make([]domain.Listing, 0, len(props))
	for _, p := range props {
		out = append(out, listings.MapBackendToListing(p))
	}
	return out
}

// GetAllProperties returns every marketplace property as a listing.
func (s *Service) GetAllProperties(ctx context.Context, token string) ([]domain.Listing, error) {
	props, err := s.Feed.ListProperties(ctx, token)
	if err != nil {
		return nil, err
	}
	return toListings(props), nil
}

// Search runs a free-text backend search.
func (s *Service) Search(ctx context.Context, token, query string) ([]domain.Listing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	props, err := s.Feed.SearchProperties(ctx, token, query)
	if err != nil {
		return nil, err
	}
	return toListings(props), nil
}

// Bookmark accepts either a numeric backend id or a "backend_<n>" listing id.
func (s *Service) Bookmark(ctx context.Context, token, id string) error {
	ref := domain.ParseRef(id)
	if !ref.IsBackend() {
		ref = domain.ParseRef(domain.BackendPrefix + id)
	}
	if !ref.IsBackend() {
		return domain.ErrListingNotFound
	}
	return s.Feed.BookmarkProperty(ctx, token, ref.BackendID)
}
