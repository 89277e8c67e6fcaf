package listings

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"estate-marketplace/internal/domain"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// ListingPublishedEvent is emitted after a draft has been fully published.
type ListingPublishedEvent struct {
	ListingID   string    `json:"listing_id"`
	PropertyID  int64     `json:"property_id"`
	Owner       string    `json:"owner"`
	PublishedAt time.Time `json:"published_at"`
}

// EventPublisher delivers listing lifecycle events. Delivery is best effort.
type EventPublisher interface {
	ListingPublished(ctx context.Context, ev ListingPublishedEvent) error
}

// DraftInput carries draft fields from the client. Nil fields are left unchanged.
type DraftInput struct {
	Title          *string             `json:"title"`
	PropertyType   *string             `json:"property_type"`
	Address        *string             `json:"address"`
	City           *string             `json:"city"`
	State          *string             `json:"state"`
	Description    *string             `json:"description"`
	PropertyValue  *float64            `json:"property_value"`
	ROIPercentage  *float64            `json:"roi_percentage"`
	EstimatedYield *float64            `json:"estimated_yield"`
	Coordinates    *domain.Coordinates `json:"coordinates"`
	Images         []string            `json:"images"`
	Features       *domain.Features    `json:"features"`
	CurrentStep    *int                `json:"current_step"`
}

// Service owns the draft lifecycle: create, edit, remove and publish.
// Read-modify-write on one owner's collection is serialised within the process.
type Service struct {
	Store     Storage
	Submitter *Submitter
	Events    EventPublisher
	Now       func() time.Time

	locksMu sync.Mutex
	locks   map[string]*ownerLock
}

// ownerLock is dropped from Service.locks once nobody holds or waits for it.
type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) lock(owner string) func() {
	s.locksMu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*ownerLock)
	}
	l := s.locks[owner]
	if l == nil {
		l = &ownerLock{}
		s.locks[owner] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, owner)
		}
		s.locksMu.Unlock()
	}
}

// Loader returns a loader over the service's store.
func (s *Service) Loader() *Loader {
	return &Loader{Store: s.Store}
}

func validateInput(in DraftInput) error {
	if c := in.Coordinates; c != nil {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			return domain.ErrInvalidCoordinate
		}
	}
	return nil
}

func applyInput(l *domain.Listing, in DraftInput) {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setStr(&l.Title, in.Title)
	setStr(&l.PropertyType, in.PropertyType)
	setStr(&l.Address, in.Address)
	setStr(&l.City, in.City)
	setStr(&l.State, in.State)
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.PropertyValue != nil {
		l.PropertyValue = *in.PropertyValue
	}
	if in.ROIPercentage != nil {
		l.ROIPercentage = *in.ROIPercentage
	}
	if in.EstimatedYield != nil {
		l.EstimatedYield = *in.EstimatedYield
	}
	if in.Coordinates != nil {
		c := *in.Coordinates
		l.Coordinates = &c
	}
	if in.Images != nil {
		l.Images = make([]domain.ImageRef, 0, len(in.Images))
		for _, uri := range in.Images {
			if strings.TrimSpace(uri) == "" {
				continue
			}
			l.Images = append(l.Images, domain.NewImageRef(uri))
		}
	}
	if in.Features != nil {
		f := *in.Features
		f.Normalize()
		l.Features = &f
	}
	if in.CurrentStep != nil && *in.CurrentStep > l.CurrentStep {
		l.CurrentStep = *in.CurrentStep
	}
}

// CreateDraft stores a new draft at step 1.
func (s *Service) CreateDraft(ctx context.Context, owner string, in DraftInput) (*domain.Listing, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	now := s.now()
	draft := domain.Listing{
		ID:          domain.LocalRef(ulid.Make().String()),
		Status:      domain.StatusDraft,
		CurrentStep: domain.StepBasicInfo,
		Images:      []domain.ImageRef{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyInput(&draft, in)
	Recompute(&draft)

	unlock := s.lock(owner)
	defer unlock()

	all, err := s.Store.LoadAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	all = append(all, draft)
	if err := s.Store.SaveAll(ctx, owner, all); err != nil {
		return nil, fmt.Errorf("Failed to save draft: %w", err)
	}
	log.Info().Str("listing_id", draft.ID.String()).Msg("Draft created")
	return &draft, nil
}

// ListDrafts returns the owner's local listings in stored order.
func (s *Service) ListDrafts(ctx context.Context, owner string, includeRemoved bool) ([]domain.Listing, error) {
	all, err := s.Store.LoadAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(all))
	for _, l := range all {
		if l.Status == domain.StatusRemoved && !includeRemoved {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// GetListing resolves id through the loader.
func (s *Service) GetListing(ctx context.Context, owner, id string, backend []domain.BackendProperty) (*domain.Listing, error) {
	return s.Loader().Resolve(ctx, owner, id, backend)
}

// mutate runs fn on the stored listing with the given id and persists the result.
func (s *Service) mutate(ctx context.Context, owner, id string, fn func(l *domain.Listing) error) (*domain.Listing, error) {
	ref := domain.ParseRef(id)

	unlock := s.lock(owner)
	defer unlock()

	all, err := s.Store.LoadAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	i := indexOf(all, ref)
	if i < 0 {
		if ref.IsBackend() {
			return nil, domain.ErrNotEditable
		}
		return nil, domain.ErrListingNotFound
	}
	l := all[i]
	if err := fn(&l); err != nil {
		return nil, err
	}
	l.UpdatedAt = s.now()
	Recompute(&l)
	all[i] = l
	if err := s.Store.SaveAll(ctx, owner, all); err != nil {
		return nil, fmt.Errorf("Failed to save draft: %w", err)
	}
	return &l, nil
}

// UpdateDraft applies in to the draft. Removed listings cannot be edited.
func (s *Service) UpdateDraft(ctx context.Context, owner, id string, in DraftInput) (*domain.Listing, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, owner, id, func(l *domain.Listing) error {
		if l.Status == domain.StatusRemoved {
			return domain.ErrListingRemoved
		}
		applyInput(l, in)
		return nil
	})
}

// AddImage appends one image reference to the draft.
func (s *Service) AddImage(ctx context.Context, owner, id string, img domain.ImageRef) (*domain.Listing, error) {
	return s.mutate(ctx, owner, id, func(l *domain.Listing) error {
		if l.Status == domain.StatusRemoved {
			return domain.ErrListingRemoved
		}
		l.Images = append(l.Images, img)
		return nil
	})
}

// RemoveDraft marks the listing Removed. It stays in storage.
func (s *Service) RemoveDraft(ctx context.Context, owner, id string) (*domain.Listing, error) {
	return s.mutate(ctx, owner, id, func(l *domain.Listing) error {
		if l.Status == domain.StatusRemoved {
			return domain.ErrListingRemoved
		}
		l.Status = domain.StatusRemoved
		return nil
	})
}

// Publish submits the draft to the backend and marks it Published on success.
// A failure after the create step leaves a partial backend property behind; retrying
// creates another one. Edits committed while the backend calls run are kept; a listing
// removed meanwhile stays Removed and only records the property id.
func (s *Service) Publish(ctx context.Context, owner, token, id string) (*domain.Listing, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrMissingToken
	}
	ref := domain.ParseRef(id)

	unlock := s.lock(owner)
	all, err := s.Store.LoadAll(ctx, owner)
	unlock()
	if err != nil {
		return nil, err
	}
	i := indexOf(all, ref)
	if i < 0 {
		if ref.IsBackend() {
			return nil, domain.ErrAlreadyPublished
		}
		return nil, domain.ErrListingNotFound
	}
	draft := all[i]
	switch draft.Status {
	case domain.StatusRemoved:
		return nil, domain.ErrListingRemoved
	case domain.StatusPublished:
		return nil, domain.ErrAlreadyPublished
	}

	// Network calls run without holding the owner lock.
	propertyID, err := s.Submitter.Submit(ctx, token, &draft)
	if err != nil {
		return nil, err
	}

	var result domain.Listing
	unlock = s.lock(owner)
	all, err = s.Store.LoadAll(ctx, owner)
	if err == nil {
		if j := indexOf(all, ref); j >= 0 {
			markPublished(&all[j], &draft)
			result = all[j]
		} else {
			all = append(all, draft)
			result = draft
		}
		err = s.Store.SaveAll(ctx, owner, all)
	}
	unlock()
	if err != nil {
		log.Error().Err(err).Str("listing_id", ref.String()).Int64("property_id", propertyID).
			Msg("Listing published but local record not updated")
		return nil, fmt.Errorf("Failed to save published listing: %w", err)
	}

	switch {
	case result.Status == domain.StatusRemoved:
		log.Warn().Str("listing_id", ref.String()).Int64("property_id", propertyID).
			Msg("Listing removed while publishing; backend property kept")
		return &result, nil
	case result.PropertyID == nil || *result.PropertyID != propertyID:
		log.Warn().Str("listing_id", ref.String()).Int64("property_id", propertyID).
			Msg("Listing already published by a concurrent request; duplicate backend property")
		return &result, nil
	}

	if s.Events != nil {
		ev := ListingPublishedEvent{
			ListingID:   ref.String(),
			PropertyID:  propertyID,
			Owner:       owner,
			PublishedAt: *result.PublishedAt,
		}
		if err := s.Events.ListingPublished(ctx, ev); err != nil {
			log.Warn().Err(err).Str("listing_id", ref.String()).Msg("Failed to emit listing.published")
		}
	}
	log.Info().Str("listing_id", ref.String()).Int64("property_id", propertyID).Msg("Listing published")
	return &result, nil
}

// markPublished copies the publish outcome onto the current stored listing. Fields edited
// since the snapshot was taken are left alone.
func markPublished(cur, published *domain.Listing) {
	if cur.Status == domain.StatusPublished {
		return
	}
	cur.PropertyID = published.PropertyID
	cur.UpdatedAt = published.UpdatedAt
	if cur.Status != domain.StatusRemoved {
		cur.Status = domain.StatusPublished
		cur.PublishedAt = published.PublishedAt
	}
	Recompute(cur)
}
