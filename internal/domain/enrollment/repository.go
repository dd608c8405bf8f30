package enrollment

import "context"

// Repository defines the interface for enrollment persistence
type Repository interface {
	Create(ctx context.Context, enrollment *Enrollment) error
	Get(ctx context.Context, id string) (*Enrollment, error)
	// Update persists the enrollment using compare-and-swap on Version and
	// returns ErrVersionConflict when the stored version has moved on.
	Update(ctx context.Context, enrollment *Enrollment) error
	// Delete physically removes the enrollment row. Only used as rollback
	// compensation when schedule creation fails after the enrollment insert.
	Delete(ctx context.Context, id string) error
	GetByIdempotencyKey(ctx context.Context, key string) (*Enrollment, error)
}
