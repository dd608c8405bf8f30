package repository

import (
	"context"
	"errors"

	"github.com/enrollpay/enrollpay/internal/domain/payment"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/types"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewPaymentRepository creates a new postgres-backed payment repository
func NewPaymentRepository(db *gorm.DB, log *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: log}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("payment not found").
				WithHintf("Payment %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	err := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ? AND tenant_id = ?", p.ID, types.GetTenantID(ctx)).
		Select("*").
		Updates(p).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Delete(&payment.Payment{}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) ListByEnrollmentID(ctx context.Context, enrollmentID string) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND tenant_id = ?", enrollmentID, types.GetTenantID(ctx)).
		Order("recorded_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}

func (r *paymentRepository) GetLatestGatewayPayment(ctx context.Context, enrollmentID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND tenant_id = ? AND payment_status = ? AND gateway_transaction_id IS NOT NULL",
			enrollmentID, types.GetTenantID(ctx), types.PaymentStatusCompleted).
		Order("recorded_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("no gateway payment found").
				WithHintf("Enrollment %s has no refundable gateway payment", enrollmentID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up gateway payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}
