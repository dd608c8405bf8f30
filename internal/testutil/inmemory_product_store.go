package testutil

import (
	"context"

	"github.com/enrollpay/enrollpay/internal/domain/product"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
)

// InMemoryProductStore implements product.Repository
type InMemoryProductStore struct {
	*InMemoryStore[*product.Product]
}

// NewInMemoryProductStore creates a new in-memory product repository
func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{
		InMemoryStore: NewInMemoryStore[*product.Product](),
	}
}

// Add seeds a product into the catalog
func (m *InMemoryProductStore) Add(ctx context.Context, p *product.Product) error {
	return m.InMemoryStore.Create(ctx, p.ID, p)
}

// Get retrieves a product by ID
func (m *InMemoryProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	p, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("product not found").
			WithHintf("Product %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}
