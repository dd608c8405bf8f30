package payment

import (
	"time"

	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is an executed transaction recorded against an enrollment, and
// usually against one of its schedule lines. Payments are append-only.
type Payment struct {
	// Unique identifier for this payment transaction
	ID string `json:"id"`
	// The enrollment_id links this payment to its enrollment
	EnrollmentID string `json:"enrollment_id"`
	// The schedule_id links this payment to the schedule line it settles
	ScheduleID *string `json:"schedule_id,omitempty"`
	// The amount field specifies the payment value in the given currency
	Amount decimal.Decimal `json:"amount"`
	// The currency field uses a three-letter ISO code (USD, EUR, GBP, etc.)
	Currency string `json:"currency"`
	// The payment_method_type defines how the payment was made
	PaymentMethodType types.PaymentMethodType `json:"payment_method_type"`
	// The gateway_transaction_id is the transaction reference from the
	// external payment gateway, empty for manual payments
	GatewayTransactionID *string `json:"gateway_transaction_id,omitempty"`
	// The payment_status shows the state of this transaction
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	// The notes field carries free-form operator notes for manual payments
	Notes *string `json:"notes,omitempty"`
	// The metadata field contains additional custom key-value pairs
	Metadata types.Metadata `json:"metadata,omitempty"`
	// The recorded_at timestamp indicates when this payment was recorded
	RecordedAt time.Time `json:"recorded_at"`
	// The refunded_at timestamp shows when this payment was refunded
	RefundedAt *time.Time `json:"refunded_at,omitempty"`

	types.BaseModel
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if p.EnrollmentID == "" {
		return ierr.NewError("invalid enrollment id").
			WithHint("Enrollment id is required").
			Mark(ierr.ErrValidation)
	}
	if p.Amount.IsZero() || p.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if err := p.PaymentMethodType.Validate(); err != nil {
		return ierr.NewError("invalid payment method type").
			WithHint("Payment method type is invalid").
			Mark(ierr.ErrValidation)
	}
	if p.Currency == "" {
		return ierr.NewError("invalid currency").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// HasGatewayRef reports whether this payment can be refunded through the gateway
func (p *Payment) HasGatewayRef() bool {
	return p.GatewayTransactionID != nil && *p.GatewayTransactionID != ""
}

// TableName returns the table name for the payment
func (p *Payment) TableName() string {
	return "payments"
}
