package paymentplan

import "context"

// Repository is the plan registry contract. Plan CRUD is owned by admin
// tooling; this engine only reads.
type Repository interface {
	Get(ctx context.Context, id string) (*PaymentPlan, error)
	// ListAutoDetect returns active plans with auto-detection enabled,
	// ordered by priority descending with plan ID ascending as tiebreak.
	ListAutoDetect(ctx context.Context) ([]*PaymentPlan, error)
}
