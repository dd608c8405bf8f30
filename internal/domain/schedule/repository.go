package schedule

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/types"
)

// Repository defines the interface for payment schedule persistence
type Repository interface {
	Create(ctx context.Context, schedule *PaymentSchedule) error
	// CreateBulk inserts all lines of a generated schedule. Implementations
	// report how many rows were inserted so the caller can compensate for a
	// partial failure.
	CreateBulk(ctx context.Context, schedules []*PaymentSchedule) error
	Get(ctx context.Context, id string) (*PaymentSchedule, error)
	// Update persists the schedule using compare-and-swap on Version and
	// returns ErrVersionConflict when the stored version has moved on.
	Update(ctx context.Context, schedule *PaymentSchedule) error
	// DeleteByEnrollmentID removes every schedule row of an enrollment.
	// Only used as rollback compensation for a failed enrollment creation.
	DeleteByEnrollmentID(ctx context.Context, enrollmentID string) error
	// ListByEnrollmentID returns the enrollment's schedule lines ordered by
	// payment number, optionally filtered by status.
	ListByEnrollmentID(ctx context.Context, enrollmentID string, statuses ...types.ScheduleStatus) ([]*PaymentSchedule, error)
	// ListPendingBefore returns pending schedules with a scheduled date
	// strictly before the given time, across enrollments of the tenant.
	ListPendingBefore(ctx context.Context, before time.Time) ([]*PaymentSchedule, error)
}
