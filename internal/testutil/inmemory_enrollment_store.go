package testutil

import (
	"context"
	"sync"

	"github.com/enrollpay/enrollpay/internal/domain/enrollment"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
)

// InMemoryEnrollmentStore implements enrollment.Repository with the same
// compare-and-swap semantics as the postgres repository. Rows are stored and
// returned by value so a failed Update never leaks caller-side mutations into
// the store.
type InMemoryEnrollmentStore struct {
	*InMemoryStore[*enrollment.Enrollment]
	mu     sync.Mutex
	byIdem map[string]string

	// CreateErr, when set, makes Create fail; used to exercise rollback paths
	CreateErr error
	// UpdateErr, when set, makes Update fail
	UpdateErr error
}

// NewInMemoryEnrollmentStore creates a new in-memory enrollment repository
func NewInMemoryEnrollmentStore() *InMemoryEnrollmentStore {
	return &InMemoryEnrollmentStore{
		InMemoryStore: NewInMemoryStore[*enrollment.Enrollment](),
		byIdem:        make(map[string]string),
	}
}

// Clear resets all stored data
func (m *InMemoryEnrollmentStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InMemoryStore.Clear()
	m.byIdem = make(map[string]string)
	m.CreateErr = nil
	m.UpdateErr = nil
}

// Create stores a new enrollment
func (m *InMemoryEnrollmentStore) Create(ctx context.Context, e *enrollment.Enrollment) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e.IdempotencyKey != "" {
		if _, exists := m.byIdem[e.IdempotencyKey]; exists {
			return ierr.NewError("duplicate idempotency key").
				WithHint("An enrollment with this idempotency key already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	row := *e
	if err := m.InMemoryStore.Create(ctx, e.ID, &row); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create enrollment").
			Mark(ierr.ErrDatabase)
	}
	if e.IdempotencyKey != "" {
		m.byIdem[e.IdempotencyKey] = e.ID
	}
	return nil
}

// Get retrieves an enrollment by ID
func (m *InMemoryEnrollmentStore) Get(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	e, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("enrollment not found").
			WithHintf("Enrollment %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	row := *e
	return &row, nil
}

// Update persists the enrollment using compare-and-swap on Version
func (m *InMemoryEnrollmentStore) Update(ctx context.Context, e *enrollment.Enrollment) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.InMemoryStore.Get(ctx, e.ID)
	if err != nil {
		return ierr.NewError("enrollment not found").
			WithHintf("Enrollment %s was not found", e.ID).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != e.Version {
		return ierr.NewError("enrollment was modified concurrently").
			WithHintf("Enrollment %s was updated by another request, retry", e.ID).
			Mark(ierr.ErrVersionConflict)
	}

	e.Version++
	row := *e
	return m.InMemoryStore.Update(ctx, e.ID, &row)
}

// Delete physically removes the enrollment row
func (m *InMemoryEnrollmentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.InMemoryStore.Get(ctx, id)
	if err == nil && e.IdempotencyKey != "" {
		delete(m.byIdem, e.IdempotencyKey)
	}
	_ = m.InMemoryStore.Delete(ctx, id)
	return nil
}

// GetByIdempotencyKey retrieves an enrollment by its idempotency key
func (m *InMemoryEnrollmentStore) GetByIdempotencyKey(ctx context.Context, key string) (*enrollment.Enrollment, error) {
	m.mu.Lock()
	id, exists := m.byIdem[key]
	m.mu.Unlock()
	if !exists {
		return nil, ierr.NewError("enrollment not found").
			WithHint("No enrollment exists for this idempotency key").
			Mark(ierr.ErrNotFound)
	}
	return m.Get(ctx, id)
}
