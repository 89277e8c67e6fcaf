package listings

import (
	"strings"

	"estate-marketplace/internal/domain"
)

// Backend enum codes, keyed by the normalised backend value.
var roadNetworkFromBackend = map[string]domain.RoadNetwork{
	"tarred":           domain.RoadTarred,
	"untarred":         domain.RoadUntarred,
	"partially_tarred": domain.RoadPartial,
	"partially tarred": domain.RoadPartial,
	"partial":          domain.RoadPartial,
}

var roadNetworkToBackend = map[domain.RoadNetwork]string{
	domain.RoadTarred:   "tarred",
	domain.RoadUntarred: "untarred",
	domain.RoadPartial:  "partially_tarred",
}

var waterSupplyFromBackend = map[string]domain.WaterSupply{
	"public":   domain.WaterPublic,
	"mains":    domain.WaterPublic,
	"borehole": domain.WaterBorehole,
	"well":     domain.WaterWell,
}

var waterSupplyToBackend = map[domain.WaterSupply]string{
	domain.WaterPublic:   "public",
	domain.WaterBorehole: "borehole",
	domain.WaterWell:     "well",
}

func normCode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RoadNetworkFromBackend translates a backend road code. Unlisted codes are unknown.
func RoadNetworkFromBackend(code string) domain.RoadNetwork {
	if r, ok := roadNetworkFromBackend[normCode(code)]; ok {
		return r
	}
	return domain.RoadUnknown
}

// WaterSupplyFromBackend translates a backend water code. Unlisted codes are unknown.
func WaterSupplyFromBackend(code string) domain.WaterSupply {
	if w, ok := waterSupplyFromBackend[normCode(code)]; ok {
		return w
	}
	return domain.WaterUnknown
}

// MapBackendToListing converts a backend property into the unified listing shape.
// It never fails: missing sub-records fall back to defaults.
func MapBackendToListing(p domain.BackendProperty) domain.Listing {
	propertyID := p.ID
	l := domain.Listing{
		ID:             domain.BackendRef(p.ID),
		PropertyID:     &propertyID,
		Status:         domain.StatusPublished,
		CurrentStep:    domain.StepReview,
		Title:          p.Title,
		PropertyType:   p.PropertyType,
		Address:        p.Address,
		City:           p.City,
		State:          p.State,
		Description:    p.Description,
		PropertyValue:  float64(p.PropertyValue),
		ROIPercentage:  float64(p.ROIPercentage),
		EstimatedYield: float64(p.EstimatedYield),
		Images:         make([]domain.ImageRef, 0, len(p.Files)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if !p.CreatedAt.IsZero() {
		published := p.CreatedAt
		l.PublishedAt = &published
	}

	features := domain.DefaultFeatures()
	if len(p.Features) > 0 {
		f := p.Features[0]
		features = domain.Features{
			Furnished:   f.Furnished,
			Security:    f.Security,
			Parking:     f.Parking,
			Electricity: f.Electricity,
			Bedrooms:    f.Bedrooms,
			Bathrooms:   f.Bathrooms,
			WaterSupply: WaterSupplyFromBackend(f.WaterSupply),
			RoadNetwork: RoadNetworkFromBackend(f.RoadNetwork),
		}
	}
	l.Features = &features

	if len(p.MarketCoordinates) > 0 {
		c := p.MarketCoordinates[0]
		l.Coordinates = &domain.Coordinates{
			Latitude:  float64(c.Latitude),
			Longitude: float64(c.Longitude),
		}
	}

	for _, f := range p.Files {
		if f.File == "" {
			continue
		}
		l.Images = append(l.Images, domain.NewImageRef(f.File))
	}

	Recompute(&l)
	return l
}

// MapListingToCreateRequest builds the base property create body.
func MapListingToCreateRequest(l *domain.Listing) domain.BackendPropertyInput {
	return domain.BackendPropertyInput{
		Title:          strings.TrimSpace(l.Title),
		PropertyType:   strings.TrimSpace(l.PropertyType),
		Address:        strings.TrimSpace(l.Address),
		City:           strings.TrimSpace(l.City),
		State:          strings.TrimSpace(l.State),
		Description:    l.Description,
		PropertyValue:  l.PropertyValue,
		ROIPercentage:  l.ROIPercentage,
		EstimatedYield: l.EstimatedYield,
	}
}

// MapCoordinatesToRequest builds the coordinates upload body.
func MapCoordinatesToRequest(c domain.Coordinates) domain.BackendCoordinates {
	return domain.BackendCoordinates{
		Latitude:  domain.Decimal(c.Latitude),
		Longitude: domain.Decimal(c.Longitude),
	}
}

// MapFeaturesToRequest builds the features upload body. Unknown enums go out as "".
func MapFeaturesToRequest(f domain.Features) domain.BackendFeatures {
	return domain.BackendFeatures{
		Furnished:   f.Furnished,
		Security:    f.Security,
		Parking:     f.Parking,
		Electricity: f.Electricity,
		Bedrooms:    f.Bedrooms,
		Bathrooms:   f.Bathrooms,
		WaterSupply: waterSupplyToBackend[f.WaterSupply],
		RoadNetwork: roadNetworkToBackend[f.RoadNetwork],
	}
}

// IsBackendListing reports whether l was derived from a backend property.
func IsBackendListing(l *domain.Listing) bool {
	return l.ID.IsBackend()
}

// GetBackendID returns the backend numeric id encoded in l's id, if l is backend-derived.
func GetBackendID(l *domain.Listing) (int64, bool) {
	if !l.ID.IsBackend() {
		return 0, false
	}
	return l.ID.BackendID, true
}
