package payment

import "context"

// Repository defines the interface for payment persistence
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	// Delete removes the payment row; used to compensate a failed multi-step
	// payment recording, never to erase settled history.
	Delete(ctx context.Context, id string) error
	ListByEnrollmentID(ctx context.Context, enrollmentID string) ([]*Payment, error)
	// GetLatestGatewayPayment returns the most recent completed payment of the
	// enrollment that carries a gateway transaction reference, or ErrNotFound.
	GetLatestGatewayPayment(ctx context.Context, enrollmentID string) (*Payment, error)
}
