package testutil

import (
	"context"
	"sync"

	"github.com/enrollpay/enrollpay/internal/domain/payment"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
	mu             sync.Mutex
	createdInOrder []*payment.Payment
}

// NewInMemoryPaymentStore creates a new in-memory payment repository
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore:  NewInMemoryStore[*payment.Payment](),
		createdInOrder: make([]*payment.Payment, 0),
	}
}

// Clear resets all stored data
func (m *InMemoryPaymentStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InMemoryStore.Clear()
	m.createdInOrder = make([]*payment.Payment, 0)
}

// Create stores a new payment
func (m *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.InMemoryStore.Create(ctx, p.ID, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	m.createdInOrder = append(m.createdInOrder, p)
	return nil
}

// Get retrieves a payment by ID
func (m *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("payment not found").
			WithHintf("Payment %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

// Update updates an existing payment
func (m *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	if err := m.InMemoryStore.Update(ctx, p.ID, p); err != nil {
		return ierr.NewError("payment not found").
			WithHintf("Payment %s was not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// Delete removes a payment row and its creation-order entry
func (m *InMemoryPaymentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("payment not found").
			WithHintf("Payment %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	for i, p := range m.createdInOrder {
		if p.ID == id {
			m.createdInOrder = append(m.createdInOrder[:i], m.createdInOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ListByEnrollmentID returns payments of an enrollment in creation order
func (m *InMemoryPaymentStore) ListByEnrollmentID(ctx context.Context, enrollmentID string) ([]*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*payment.Payment
	for _, p := range m.createdInOrder {
		if p.EnrollmentID == enrollmentID {
			result = append(result, p)
		}
	}
	return result, nil
}

// GetLatestGatewayPayment returns the most recent completed payment with a
// gateway transaction reference
func (m *InMemoryPaymentStore) GetLatestGatewayPayment(ctx context.Context, enrollmentID string) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.createdInOrder) - 1; i >= 0; i-- {
		p := m.createdInOrder[i]
		if p.EnrollmentID == enrollmentID &&
			p.PaymentStatus == types.PaymentStatusCompleted &&
			p.HasGatewayRef() {
			return p, nil
		}
	}
	return nil, ierr.NewError("no gateway payment found").
		WithHintf("Enrollment %s has no refundable gateway payment", enrollmentID).
		Mark(ierr.ErrNotFound)
}
