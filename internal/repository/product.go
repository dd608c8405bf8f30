package repository

import (
	"context"
	"errors"

	"github.com/enrollpay/enrollpay/internal/domain/product"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/types"
	"gorm.io/gorm"
)

type productRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewProductRepository creates a new postgres-backed product repository
func NewProductRepository(db *gorm.DB, log *logger.Logger) product.Repository {
	return &productRepository{db: db, logger: log}
}

func (r *productRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("product not found").
				WithHintf("Product %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get product").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}
