package listings

import (
	"context"

	"estate-marketplace/internal/domain"
)

// StorageKey is the key the draft collection is stored under.
const StorageKey = "marketplaceListings"

// StorageKeyFor namespaces the collection key for one owner. An empty owner uses the bare key.
func StorageKeyFor(owner string) string {
	if owner == "" {
		return StorageKey
	}
	return StorageKey + ":" + owner
}

// Storage persists an owner's whole draft collection under a single key.
//
// LoadAll returns an empty collection when nothing is stored or the stored value cannot be
// decoded; the error is reserved for an unreachable store. SaveAll overwrites the collection.
// Callers read-modify-write; there is no protection against concurrent writers.
type Storage interface {
	LoadAll(ctx context.Context, owner string) ([]domain.Listing, error)
	SaveAll(ctx context.Context, owner string, listings []domain.Listing) error
}

func indexOf(all []domain.Listing, ref domain.ListingRef) int {
	for i := range all {
		if all[i].ID == ref {
			return i
		}
	}
	return -1
}
