package repository

import (
	"context"
	"errors"

	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/types"
	"gorm.io/gorm"
)

type paymentPlanRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewPaymentPlanRepository creates a new postgres-backed payment plan repository
func NewPaymentPlanRepository(db *gorm.DB, log *logger.Logger) paymentplan.Repository {
	return &paymentPlanRepository{db: db, logger: log}
}

func (r *paymentPlanRepository) Get(ctx context.Context, id string) (*paymentplan.PaymentPlan, error) {
	var plan paymentplan.PaymentPlan
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("payment plan not found").
				WithHintf("Payment plan %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment plan").
			Mark(ierr.ErrDatabase)
	}
	return &plan, nil
}

func (r *paymentPlanRepository) ListAutoDetect(ctx context.Context) ([]*paymentplan.PaymentPlan, error) {
	var plans []*paymentplan.PaymentPlan
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND auto_detect_enabled = ?",
			types.GetTenantID(ctx), types.StatusActive, true).
		Order("priority DESC, id ASC").
		Find(&plans).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list auto-detect payment plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}
