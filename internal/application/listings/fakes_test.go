package listings

import (
	"context"
	"errors"
	"sync"

	"estate-marketplace/internal/domain"
)

var errRejected = errors.New("backend rejected the request")

// fakeAPI records every backend call. failOn makes that step fail; nextID is the
// id handed out by the next create.
type fakeAPI struct {
	mu     sync.Mutex
	nextID int64
	failOn PublishStep
	calls  []string
	// created holds every property id ever handed out.
	created []int64
	// When set, CreateProperty signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) CreateProperty(_ context.Context, _ string, _ domain.BackendPropertyInput) (int64, error) {
	f.record("create")
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	if f.failOn == StepCreate {
		return 0, errRejected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeAPI) UploadCoordinates(context.Context, string, int64, domain.BackendCoordinates) error {
	f.record("coordinates")
	if f.failOn == StepCoordinates {
		return errRejected
	}
	return nil
}

func (f *fakeAPI) UploadFeatures(context.Context, string, int64, domain.BackendFeatures) error {
	f.record("features")
	if f.failOn == StepFeatures {
		return errRejected
	}
	return nil
}

func (f *fakeAPI) UploadFile(context.Context, string, int64, domain.ImageRef) error {
	f.record("file")
	if f.failOn == StepImages {
		return errRejected
	}
	return nil
}

// memStore is an in-memory Storage.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]domain.Listing
	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]domain.Listing{}}
}

func (m *memStore) LoadAll(_ context.Context, owner string) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]domain.Listing, len(m.data[owner]))
	copy(out, m.data[owner])
	return out, nil
}

func (m *memStore) SaveAll(_ context.Context, owner string, all []domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := make([]domain.Listing, len(all))
	copy(cp, all)
	m.data[owner] = cp
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []ListingPublishedEvent
	err    error
}

func (f *fakeEvents) ListingPublished(_ context.Context, ev ListingPublishedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}
