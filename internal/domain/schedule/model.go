package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentSchedule is one planned payment line item tied to an enrollment.
// Invariant: for a given enrollment, the sum of all non-cancelled schedule
// amounts equals the enrollment's total amount exactly, to the minor unit.
type PaymentSchedule struct {
	// Unique identifier for this schedule line
	ID string `json:"id"`
	// The enrollment_id links this line to its enrollment
	EnrollmentID string `json:"enrollment_id"`
	// The payment_plan_id references the plan this line was generated from
	PaymentPlanID string `json:"payment_plan_id,omitempty"`
	// The payment_number is the 1-based, dense, plan-defined position of this line
	PaymentNumber int `json:"payment_number"`
	// The payment_type is the role of this line within its plan
	PaymentType types.SchedulePaymentType `json:"payment_type"`
	// The amount is the exact decimal value due for this line
	Amount decimal.Decimal `json:"amount"`
	// The currency field uses a three-letter ISO code (USD, EUR, GBP, etc.)
	Currency string `json:"currency"`
	// The original_due_date is the immutable baseline set at generation time
	OriginalDueDate time.Time `json:"original_due_date"`
	// The scheduled_date is the effective due date, mutable via admin actions
	ScheduledDate time.Time `json:"scheduled_date"`
	// The paid_date is set when a payment is recorded against this line
	PaidDate *time.Time `json:"paid_date,omitempty"`
	// The schedule_status is the current state of this line
	ScheduleStatus types.ScheduleStatus `json:"schedule_status"`
	// The retry_count tracks gateway retry attempts after failures
	RetryCount int `json:"retry_count"`
	// The next_retry_date is the earliest time a retry should be attempted
	NextRetryDate *time.Time `json:"next_retry_date,omitempty"`
	// The last_error holds the most recent gateway failure message
	LastError *string `json:"last_error,omitempty"`
	// The pause_reason is set while the line is paused and cleared on resume
	PauseReason *string `json:"pause_reason,omitempty"`
	// The adjustment_history is an append-only log of date changes
	AdjustmentHistory AdjustmentHistory `json:"adjustment_history,omitempty"`
	// The version field guards concurrent updates via compare-and-swap
	Version int `json:"version"`

	types.BaseModel
}

// AdjustmentEntry records a single scheduled-date change
type AdjustmentEntry struct {
	OldDate   time.Time `json:"old_date"`
	NewDate   time.Time `json:"new_date"`
	Reason    string    `json:"reason"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// AdjustmentHistory is stored as a JSONB column
type AdjustmentHistory []AdjustmentEntry

// Scan implements the sql.Scanner interface for AdjustmentHistory
func (h *AdjustmentHistory) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	return json.Unmarshal(bytes, h)
}

// Value implements the driver.Valuer interface for AdjustmentHistory
func (h AdjustmentHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal(AdjustmentHistory{})
	}
	return json.Marshal(h)
}

// Validate validates the schedule line
func (s *PaymentSchedule) Validate() error {
	if s.EnrollmentID == "" {
		return ierr.NewError("invalid enrollment id").
			WithHint("Enrollment id is required").
			Mark(ierr.ErrValidation)
	}
	if s.PaymentNumber <= 0 {
		return ierr.NewError("invalid payment number").
			WithHint("Payment number must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if err := s.PaymentType.Validate(); err != nil {
		return ierr.NewError("invalid payment type").
			WithHint("Payment type is invalid").
			Mark(ierr.ErrValidation)
	}
	if s.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	if s.Currency == "" {
		return ierr.NewError("invalid currency").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TableName returns the table name for the payment schedule
func (s *PaymentSchedule) TableName() string {
	return "payment_schedules"
}
