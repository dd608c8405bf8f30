package product

import "context"

// Repository is the read contract this engine expects from the product catalog.
// Catalog CRUD lives with the catalog collaborator and is out of scope here.
type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
}
