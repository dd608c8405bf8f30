package dto

import (
	"time"

	"github.com/enrollpay/enrollpay/internal/domain/payment"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest represents a manual or gateway-confirmed payment
// recorded against a schedule line
type RecordPaymentRequest struct {
	PaymentMethodType types.PaymentMethodType `json:"payment_method_type" binding:"required"`
	// ExternalRef is the gateway transaction reference, when there is one
	ExternalRef *string `json:"external_ref,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Validate validates the record payment request
func (r *RecordPaymentRequest) Validate() error {
	if err := r.PaymentMethodType.Validate(); err != nil {
		return ierr.NewError("invalid payment method type").
			WithHint("Payment method type is invalid").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentResponse represents an executed payment transaction
type PaymentResponse struct {
	ID                   string                  `json:"id"`
	EnrollmentID         string                  `json:"enrollment_id"`
	ScheduleID           *string                 `json:"schedule_id,omitempty"`
	Amount               decimal.Decimal         `json:"amount"`
	Currency             string                  `json:"currency"`
	PaymentMethodType    types.PaymentMethodType `json:"payment_method_type"`
	GatewayTransactionID *string                 `json:"gateway_transaction_id,omitempty"`
	PaymentStatus        types.PaymentStatus     `json:"payment_status"`
	Notes                *string                 `json:"notes,omitempty"`
	Metadata             types.Metadata          `json:"metadata,omitempty"`
	RecordedAt           time.Time               `json:"recorded_at"`
	RefundedAt           *time.Time              `json:"refunded_at,omitempty"`
	TenantID             string                  `json:"tenant_id"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

// NewPaymentResponse creates a payment response from a payment
func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:                   p.ID,
		EnrollmentID:         p.EnrollmentID,
		ScheduleID:           p.ScheduleID,
		Amount:               p.Amount,
		Currency:             p.Currency,
		PaymentMethodType:    p.PaymentMethodType,
		GatewayTransactionID: p.GatewayTransactionID,
		PaymentStatus:        p.PaymentStatus,
		Notes:                p.Notes,
		Metadata:             p.Metadata,
		RecordedAt:           p.RecordedAt,
		RefundedAt:           p.RefundedAt,
		TenantID:             p.TenantID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
