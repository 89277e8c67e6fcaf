package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estate-marketplace/internal/domain"

	"github.com/rs/zerolog/log"
)

// PropertyAPI is the slice of the backend REST API used to publish a draft.
type PropertyAPI interface {
	CreateProperty(ctx context.Context, token string, in domain.BackendPropertyInput) (int64, error)
	UploadCoordinates(ctx context.Context, token string, propertyID int64, in domain.BackendCoordinates) error
	UploadFeatures(ctx context.Context, token string, propertyID int64, in domain.BackendFeatures) error
	UploadFile(ctx context.Context, token string, propertyID int64, image domain.ImageRef) error
}

// PublishStep names one call in the publish sequence.
type PublishStep string

const (
	StepCreate      PublishStep = "create"
	StepCoordinates PublishStep = "coordinates"
	StepFeatures    PublishStep = "features"
	StepImages      PublishStep = "images"
)

// PublishError reports which step of a publish failed. PropertyID is zero when the create
// step itself failed; otherwise the backend property exists in a partially populated state.
type PublishError struct {
	Step       PublishStep
	PropertyID int64
	Err        error
}

func (e *PublishError) Error() string {
	if e.PropertyID == 0 {
		return fmt.Sprintf("publish %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("publish %s (property %d): %v", e.Step, e.PropertyID, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Partial reports whether a backend property was left behind.
func (e *PublishError) Partial() bool { return e.PropertyID != 0 }

// Submitter pushes a draft to the backend as create, coordinates, features, then one call per
// image, strictly in that order. Completed steps are never rolled back, and every call to
// Submit creates a new backend property.
type Submitter struct {
	API PropertyAPI
	Now func() time.Time
}

func (s *Submitter) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Submit publishes l. On success l is updated in place (Published, property_id, published_at)
// and the new backend id is returned.
func (s *Submitter) Submit(ctx context.Context, token string, l *domain.Listing) (int64, error) {
	if strings.TrimSpace(token) == "" {
		return 0, domain.ErrMissingToken
	}
	ref := l.ID.String()

	propertyID, err := s.API.CreateProperty(ctx, token, MapListingToCreateRequest(l))
	if err != nil {
		log.Error().Err(err).Str("listing_id", ref).Msg("Create property failed")
		return 0, &PublishError{Step: StepCreate, Err: err}
	}
	log.Info().Str("listing_id", ref).Int64("property_id", propertyID).Msg("Backend property created")

	fail := func(step PublishStep, err error) (int64, error) {
		log.Warn().Err(err).Str("listing_id", ref).Int64("property_id", propertyID).Str("step", string(step)).
			Msg("Publish stopped; backend property left partially populated")
		return propertyID, &PublishError{Step: step, PropertyID: propertyID, Err: err}
	}

	if l.Coordinates != nil {
		if err := s.API.UploadCoordinates(ctx, token, propertyID, MapCoordinatesToRequest(*l.Coordinates)); err != nil {
			return fail(StepCoordinates, err)
		}
	}
	if l.Features != nil {
		if err := s.API.UploadFeatures(ctx, token, propertyID, MapFeaturesToRequest(*l.Features)); err != nil {
			return fail(StepFeatures, err)
		}
	}
	for i, img := range l.Images {
		if err := s.API.UploadFile(ctx, token, propertyID, img); err != nil {
			return fail(StepImages, fmt.Errorf("image %d: %w", i, err))
		}
	}

	now := s.now()
	l.Status = domain.StatusPublished
	l.PropertyID = &propertyID
	l.PublishedAt = &now
	l.UpdatedAt = now
	Recompute(l)
	return propertyID, nil
}
