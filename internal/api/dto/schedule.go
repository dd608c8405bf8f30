package dto

import (
	"time"

	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// ScheduleResponse represents a payment schedule line
type ScheduleResponse struct {
	ID                string                    `json:"id"`
	EnrollmentID      string                    `json:"enrollment_id"`
	PaymentPlanID     string                    `json:"payment_plan_id,omitempty"`
	PaymentNumber     int                       `json:"payment_number"`
	PaymentType       types.SchedulePaymentType `json:"payment_type"`
	Amount            decimal.Decimal           `json:"amount"`
	Currency          string                    `json:"currency"`
	OriginalDueDate   time.Time                 `json:"original_due_date"`
	ScheduledDate     time.Time                 `json:"scheduled_date"`
	PaidDate          *time.Time                `json:"paid_date,omitempty"`
	ScheduleStatus    types.ScheduleStatus      `json:"schedule_status"`
	RetryCount        int                       `json:"retry_count"`
	NextRetryDate     *time.Time                `json:"next_retry_date,omitempty"`
	LastError         *string                   `json:"last_error,omitempty"`
	AdjustmentHistory []AdjustmentEntryResponse `json:"adjustment_history,omitempty"`
	TenantID          string                    `json:"tenant_id"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// AdjustmentEntryResponse represents one audit entry of a date change
type AdjustmentEntryResponse struct {
	OldDate   time.Time `json:"old_date"`
	NewDate   time.Time `json:"new_date"`
	Reason    string    `json:"reason"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// NewScheduleResponse creates a schedule response from a schedule line
func NewScheduleResponse(s *schedule.PaymentSchedule) *ScheduleResponse {
	resp := &ScheduleResponse{
		ID:              s.ID,
		EnrollmentID:    s.EnrollmentID,
		PaymentPlanID:   s.PaymentPlanID,
		PaymentNumber:   s.PaymentNumber,
		PaymentType:     s.PaymentType,
		Amount:          s.Amount,
		Currency:        s.Currency,
		OriginalDueDate: s.OriginalDueDate,
		ScheduledDate:   s.ScheduledDate,
		PaidDate:        s.PaidDate,
		ScheduleStatus:  s.ScheduleStatus,
		RetryCount:      s.RetryCount,
		NextRetryDate:   s.NextRetryDate,
		LastError:       s.LastError,
		TenantID:        s.TenantID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	for _, entry := range s.AdjustmentHistory {
		resp.AdjustmentHistory = append(resp.AdjustmentHistory, AdjustmentEntryResponse{
			OldDate:   entry.OldDate,
			NewDate:   entry.NewDate,
			Reason:    entry.Reason,
			Actor:     entry.Actor,
			Timestamp: entry.Timestamp,
		})
	}

	return resp
}

// NewScheduleResponseList creates schedule responses from schedule lines
func NewScheduleResponseList(schedules []*schedule.PaymentSchedule) []*ScheduleResponse {
	result := make([]*ScheduleResponse, len(schedules))
	for i, s := range schedules {
		result[i] = NewScheduleResponse(s)
	}
	return result
}

// AdjustScheduleDateRequest represents a request to move a schedule's due date
type AdjustScheduleDateRequest struct {
	NewDate time.Time `json:"new_date" binding:"required"`
	Reason  string    `json:"reason" binding:"required"`
}

// Validate validates the adjust date request
func (r *AdjustScheduleDateRequest) Validate() error {
	if r.NewDate.IsZero() {
		return ierr.NewError("new date is required").
			WithHint("A new scheduled date is required").
			Mark(ierr.ErrValidation)
	}
	if r.Reason == "" {
		return ierr.NewError("reason is required").
			WithHint("An adjustment reason is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PauseScheduleRequest represents a request to pause a pending schedule
type PauseScheduleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecordFailureRequest represents a gateway failure reported for a schedule
type RecordFailureRequest struct {
	ErrorMessage string `json:"error_message" binding:"required"`
}

// BulkDelayRequest represents a request to delay a set of schedules
type BulkDelayRequest struct {
	ScheduleIDs []string `json:"schedule_ids" binding:"required,min=1"`
	Days        int      `json:"days" binding:"required,gt=0"`
	Reason      string   `json:"reason" binding:"required"`
}

// Validate validates the bulk delay request
func (r *BulkDelayRequest) Validate() error {
	if len(r.ScheduleIDs) == 0 {
		return ierr.NewError("schedule ids are required").
			WithHint("At least one schedule id is required").
			Mark(ierr.ErrValidation)
	}
	if r.Days <= 0 {
		return ierr.NewError("days must be positive").
			WithHint("The delay must be a positive number of days").
			Mark(ierr.ErrValidation)
	}
	if r.Reason == "" {
		return ierr.NewError("reason is required").
			WithHint("A delay reason is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BulkDelayFailure reports one schedule that could not be delayed
type BulkDelayFailure struct {
	ScheduleID string `json:"schedule_id"`
	Error      string `json:"error"`
}

// BulkDelayResponse reports exactly which schedules were delayed and which
// were not; a partial failure is never silently masked
type BulkDelayResponse struct {
	Succeeded []string           `json:"succeeded"`
	Failed    []BulkDelayFailure `json:"failed"`
}
