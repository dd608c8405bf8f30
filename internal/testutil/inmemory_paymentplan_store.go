package testutil

import (
	"context"

	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
)

// InMemoryPaymentPlanStore implements paymentplan.Repository
type InMemoryPaymentPlanStore struct {
	*InMemoryStore[*paymentplan.PaymentPlan]
}

// NewInMemoryPaymentPlanStore creates a new in-memory payment plan repository
func NewInMemoryPaymentPlanStore() *InMemoryPaymentPlanStore {
	return &InMemoryPaymentPlanStore{
		InMemoryStore: NewInMemoryStore[*paymentplan.PaymentPlan](),
	}
}

// Add seeds a plan into the registry
func (m *InMemoryPaymentPlanStore) Add(ctx context.Context, plan *paymentplan.PaymentPlan) error {
	return m.InMemoryStore.Create(ctx, plan.ID, plan)
}

// Get retrieves a payment plan by ID
func (m *InMemoryPaymentPlanStore) Get(ctx context.Context, id string) (*paymentplan.PaymentPlan, error) {
	plan, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("payment plan not found").
			WithHintf("Payment plan %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return plan, nil
}

// ListAutoDetect returns active auto-detect plans ordered by priority
// descending with plan ID ascending as tiebreak
func (m *InMemoryPaymentPlanStore) ListAutoDetect(ctx context.Context) ([]*paymentplan.PaymentPlan, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, plan *paymentplan.PaymentPlan, _ interface{}) bool {
			return plan.Status == types.StatusActive && plan.AutoDetectEnabled
		},
		func(i, j *paymentplan.PaymentPlan) bool {
			if i.Priority != j.Priority {
				return i.Priority > j.Priority
			}
			return i.ID < j.ID
		},
	)
}
