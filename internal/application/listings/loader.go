package listings

import (
	"context"

	"estate-marketplace/internal/domain"
)

// Loader resolves a listing id against local drafts first, then against backend properties
// the caller already fetched. It makes no network calls.
type Loader struct {
	Store Storage
}

// Resolve returns the listing for id or domain.ErrListingNotFound.
func (l *Loader) Resolve(ctx context.Context, owner, id string, backend []domain.BackendProperty) (*domain.Listing, error) {
	ref := domain.ParseRef(id)

	drafts, err := l.Store.LoadAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	if i := indexOf(drafts, ref); i >= 0 {
		found := drafts[i]
		return &found, nil
	}

	if ref.IsBackend() {
		for _, p := range backend {
			if p.ID == ref.BackendID {
				mapped := MapBackendToListing(p)
				return &mapped, nil
			}
		}
	}
	return nil, domain.ErrListingNotFound
}
