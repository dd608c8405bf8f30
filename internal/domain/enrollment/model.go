package enrollment

import (
	"time"

	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// Enrollment is one learner's commitment to one product under one resolved
// payment plan. It is created once by the enrollment orchestrator and mutated
// by the payment recorder, the schedule lifecycle manager and the refund
// coordinator. It is never physically deleted except as rollback compensation
// for a failed creation.
type Enrollment struct {
	// Unique identifier for this enrollment
	ID string `json:"id"`
	// The user_id identifies the learner
	UserID string `json:"user_id"`
	// The product_id references the purchased product
	ProductID string `json:"product_id"`
	// The payment_plan_id references the resolved plan, empty when the caller
	// fell back to a plan embedded in the product
	PaymentPlanID string `json:"payment_plan_id,omitempty"`
	// The total_amount is the full price committed to at enrollment time
	TotalAmount decimal.Decimal `json:"total_amount"`
	// The paid_amount accumulates recorded payments and never decreases
	PaidAmount decimal.Decimal `json:"paid_amount"`
	// The currency field uses a three-letter ISO code (USD, EUR, GBP, etc.)
	Currency string `json:"currency"`
	// The payment_status is the aggregate state derived from recorded payments
	PaymentStatus types.EnrollmentPaymentStatus `json:"payment_status"`
	// The deposit_paid flag is set once the deposit schedule is paid
	DepositPaid bool `json:"deposit_paid"`
	// The enrollment_status tracks the enrollment lifecycle
	EnrollmentStatus types.EnrollmentStatus `json:"enrollment_status"`
	// The next_payment_date is the earliest pending schedule's date
	NextPaymentDate *time.Time `json:"next_payment_date,omitempty"`
	// The payment_metadata records structured history such as cancellation
	// reason, timestamp and actor
	PaymentMetadata types.Metadata `json:"payment_metadata,omitempty"`
	// The idempotency_key dedupes duplicate enrollment requests
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	// The version field guards concurrent updates via compare-and-swap
	Version int `json:"version"`

	types.BaseModel
}

// Validate validates the enrollment
func (e *Enrollment) Validate() error {
	if e.UserID == "" {
		return ierr.NewError("invalid user id").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}
	if e.ProductID == "" {
		return ierr.NewError("invalid product id").
			WithHint("Product id is required").
			Mark(ierr.ErrValidation)
	}
	if e.TotalAmount.IsNegative() {
		return ierr.NewError("invalid total amount").
			WithHint("Total amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	if e.Currency == "" {
		return ierr.NewError("invalid currency").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsFullyPaid reports whether the recorded payments cover the total amount.
// The comparison is exact decimal arithmetic, never floating point.
func (e *Enrollment) IsFullyPaid() bool {
	return e.PaidAmount.GreaterThanOrEqual(e.TotalAmount)
}

// TableName returns the table name for the enrollment
func (e *Enrollment) TableName() string {
	return "enrollments"
}
