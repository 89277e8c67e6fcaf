package domain

import (
	"strings"
	"time"
)

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	StatusDraft     ListingStatus = "Draft"
	StatusPublished ListingStatus = "Published"
	StatusRemoved   ListingStatus = "Removed"
)

// Valid reports whether s is one of the known statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusRemoved:
		return true
	}
	return false
}

// Wizard steps. A draft starts at StepBasicInfo and never moves backwards.
const (
	StepBasicInfo = 1
	StepImages    = 2
	StepLocation  = 3
	StepFeatures  = 4
	StepReview    = 5
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ImageKind distinguishes files held by this service from files already hosted elsewhere.
type ImageKind string

const (
	ImageLocal  ImageKind = "local"
	ImageRemote ImageKind = "remote"
)

// ImageRef points at one listing image.
type ImageRef struct {
	URI  string    `json:"uri"`
	Kind ImageKind `json:"kind"`
}

// NewImageRef classifies uri by scheme: http(s) is remote, anything else is a local file.
func NewImageRef(uri string) ImageRef {
	lower := strings.ToLower(uri)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ImageRef{URI: uri, Kind: ImageRemote}
	}
	return ImageRef{URI: strings.TrimPrefix(uri, "file://"), Kind: ImageLocal}
}

// Listing is the unified shape for local drafts and backend-derived listings.
type Listing struct {
	ID         ListingRef    `json:"id"`
	PropertyID *int64        `json:"property_id,omitempty"`
	Status     ListingStatus `json:"status"`

	CurrentStep          int `json:"current_step"`
	CompletionPercentage int `json:"completion_percentage"`

	Title        string `json:"title"`
	PropertyType string `json:"property_type"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Description  string `json:"description,omitempty"`

	PropertyValue  float64 `json:"property_value"`
	ROIPercentage  float64 `json:"roi_percentage"`
	EstimatedYield float64 `json:"estimated_yield"`

	Coordinates *Coordinates `json:"coordinates,omitempty"`
	AreaGeohash string       `json:"area_geohash,omitempty"`

	Images   []ImageRef `json:"images"`
	Features *Features  `json:"features,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// HasBasicInfo reports whether all identifying text fields are filled in.
func (l *Listing) HasBasicInfo() bool {
	for _, f := range []string{l.Title, l.PropertyType, l.Address, l.City, l.State} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// BackendID returns the backend property id for this listing, either from its provenance
// or from a previous publish.
func (l *Listing) BackendID() (int64, bool) {
	if l.ID.IsBackend() {
		return l.ID.BackendID, true
	}
	if l.PropertyID != nil {
		return *l.PropertyID, true
	}
	return 0, false
}
