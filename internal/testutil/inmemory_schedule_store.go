package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/samber/lo"
)

// InMemoryScheduleStore implements schedule.Repository with the same
// compare-and-swap semantics as the postgres repository. Rows are stored and
// returned by value so a failed Update never leaks caller-side mutations into
// the store, matching how a real row behaves.
type InMemoryScheduleStore struct {
	*InMemoryStore[*schedule.PaymentSchedule]
	mu sync.Mutex

	// CreateBulkErr, when set, makes CreateBulk fail; used to exercise the
	// enrollment rollback path
	CreateBulkErr error
	// UpdateErr, when set, makes Update fail; used to exercise the payment
	// recording rollback path
	UpdateErr error
}

// NewInMemoryScheduleStore creates a new in-memory schedule repository
func NewInMemoryScheduleStore() *InMemoryScheduleStore {
	return &InMemoryScheduleStore{
		InMemoryStore: NewInMemoryStore[*schedule.PaymentSchedule](),
	}
}

// Clear resets all stored data
func (m *InMemoryScheduleStore) Clear() {
	m.InMemoryStore.Clear()
	m.CreateBulkErr = nil
	m.UpdateErr = nil
}

// Create stores a new schedule line
func (m *InMemoryScheduleStore) Create(ctx context.Context, s *schedule.PaymentSchedule) error {
	row := *s
	if err := m.InMemoryStore.Create(ctx, s.ID, &row); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment schedule").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// CreateBulk inserts all lines of a generated schedule
func (m *InMemoryScheduleStore) CreateBulk(ctx context.Context, schedules []*schedule.PaymentSchedule) error {
	if m.CreateBulkErr != nil {
		return m.CreateBulkErr
	}
	for _, s := range schedules {
		if err := m.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a schedule line by ID
func (m *InMemoryScheduleStore) Get(ctx context.Context, id string) (*schedule.PaymentSchedule, error) {
	s, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("schedule not found").
			WithHintf("Schedule %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	row := *s
	return &row, nil
}

// Update persists the schedule using compare-and-swap on Version
func (m *InMemoryScheduleStore) Update(ctx context.Context, s *schedule.PaymentSchedule) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.InMemoryStore.Get(ctx, s.ID)
	if err != nil {
		return ierr.NewError("schedule not found").
			WithHintf("Schedule %s was not found", s.ID).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != s.Version {
		return ierr.NewError("schedule was modified concurrently").
			WithHintf("Schedule %s was updated by another request, retry", s.ID).
			Mark(ierr.ErrVersionConflict)
	}

	s.Version++
	row := *s
	return m.InMemoryStore.Update(ctx, s.ID, &row)
}

// DeleteByEnrollmentID removes every schedule row of an enrollment
func (m *InMemoryScheduleStore) DeleteByEnrollmentID(ctx context.Context, enrollmentID string) error {
	schedules, err := m.ListByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	for _, s := range schedules {
		_ = m.InMemoryStore.Delete(ctx, s.ID)
	}
	return nil
}

// ListByEnrollmentID returns the enrollment's schedule lines ordered by
// payment number, optionally filtered by status
func (m *InMemoryScheduleStore) ListByEnrollmentID(ctx context.Context, enrollmentID string, statuses ...types.ScheduleStatus) ([]*schedule.PaymentSchedule, error) {
	rows, err := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, s *schedule.PaymentSchedule, _ interface{}) bool {
			if s.EnrollmentID != enrollmentID {
				return false
			}
			return len(statuses) == 0 || lo.Contains(statuses, s.ScheduleStatus)
		},
		func(i, j *schedule.PaymentSchedule) bool {
			return i.PaymentNumber < j.PaymentNumber
		},
	)
	if err != nil {
		return nil, err
	}
	return copyScheduleRows(rows), nil
}

// ListPendingBefore returns pending schedules due strictly before the given time
func (m *InMemoryScheduleStore) ListPendingBefore(ctx context.Context, before time.Time) ([]*schedule.PaymentSchedule, error) {
	rows, err := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, s *schedule.PaymentSchedule, _ interface{}) bool {
			return s.ScheduleStatus == types.ScheduleStatusPending && s.ScheduledDate.Before(before)
		},
		func(i, j *schedule.PaymentSchedule) bool {
			return i.ScheduledDate.Before(j.ScheduledDate)
		},
	)
	if err != nil {
		return nil, err
	}
	return copyScheduleRows(rows), nil
}

func copyScheduleRows(rows []*schedule.PaymentSchedule) []*schedule.PaymentSchedule {
	result := make([]*schedule.PaymentSchedule, len(rows))
	for i, s := range rows {
		row := *s
		result[i] = &row
	}
	return result
}
