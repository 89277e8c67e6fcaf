package draftstore

import (
	"encoding/json"

	"estate-marketplace/internal/domain"

	"github.com/rs/zerolog/log"
)

// decode parses a stored collection. Corrupt data is logged and treated as empty.
func decode(key string, raw []byte) []domain.Listing {
	if len(raw) == 0 {
		return []domain.Listing{}
	}
	var listings []domain.Listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Stored draft collection is unreadable; treating as empty")
		return []domain.Listing{}
	}
	kept := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if !l.Status.Valid() {
			log.Warn().Err(domain.ErrInvalidStatus).Str("key", key).Str("listing_id", l.ID.String()).
				Str("status", string(l.Status)).Msg("Dropping stored listing")
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

func encode(listings []domain.Listing) ([]byte, error) {
	if listings == nil {
		listings = []domain.Listing{}
	}
	return json.Marshal(listings)
}
