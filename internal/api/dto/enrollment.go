package dto

import (
	"time"

	"github.com/enrollpay/enrollpay/internal/domain/enrollment"
	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// EnrollRequest represents a request to enroll a learner into a product
type EnrollRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	// StartDate anchors installment due dates; defaults to now
	StartDate *time.Time `json:"start_date,omitempty"`
	// UserContext supplies segment/role attributes for plan auto-detection
	UserContext types.UserContext `json:"user_context,omitempty"`
	// IdempotencyKey dedupes duplicate enrollment requests when supplied
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Validate validates the enroll request
func (r *EnrollRequest) Validate() error {
	if r.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}
	if r.ProductID == "" {
		return ierr.NewError("product id is required").
			WithHint("Product id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// EnrollmentResponse represents an enrollment with its resolved plan,
// generated schedules and any gateway handles obtained during creation
type EnrollmentResponse struct {
	ID               string                        `json:"id"`
	UserID           string                        `json:"user_id"`
	ProductID        string                        `json:"product_id"`
	PaymentPlanID    string                        `json:"payment_plan_id,omitempty"`
	TotalAmount      decimal.Decimal               `json:"total_amount"`
	PaidAmount       decimal.Decimal               `json:"paid_amount"`
	Currency         string                        `json:"currency"`
	PaymentStatus    types.EnrollmentPaymentStatus `json:"payment_status"`
	DepositPaid      bool                          `json:"deposit_paid"`
	EnrollmentStatus types.EnrollmentStatus        `json:"enrollment_status"`
	NextPaymentDate  *time.Time                    `json:"next_payment_date,omitempty"`
	PaymentMetadata  types.Metadata                `json:"payment_metadata,omitempty"`
	TenantID         string                        `json:"tenant_id"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`

	Plan      *PlanSummary        `json:"plan,omitempty"`
	Schedules []*ScheduleResponse `json:"schedules,omitempty"`

	RequiresImmediatePayment bool             `json:"requires_immediate_payment"`
	ImmediateAmount          *decimal.Decimal `json:"immediate_amount,omitempty"`
	DepositAmount            *decimal.Decimal `json:"deposit_amount,omitempty"`
	ClientSecret             string           `json:"client_secret,omitempty"`
	PaymentIntentID          string           `json:"payment_intent_id,omitempty"`
	SetupIntentClientSecret  string           `json:"setup_intent_client_secret,omitempty"`
}

// PlanSummary is the resolved plan as returned to enrollment callers
type PlanSummary struct {
	ID                   string                     `json:"id"`
	Name                 string                     `json:"name"`
	PlanType             types.PlanType             `json:"plan_type"`
	DepositType          types.DepositType          `json:"deposit_type,omitempty"`
	DepositValue         decimal.Decimal            `json:"deposit_value"`
	InstallmentCount     int                        `json:"installment_count"`
	InstallmentFrequency types.InstallmentFrequency `json:"installment_frequency,omitempty"`
	CustomFrequencyDays  int                        `json:"custom_frequency_days,omitempty"`
}

// NewPlanSummary creates a plan summary from a payment plan
func NewPlanSummary(p *paymentplan.PaymentPlan) *PlanSummary {
	if p == nil {
		return nil
	}
	return &PlanSummary{
		ID:                   p.ID,
		Name:                 p.Name,
		PlanType:             p.PlanType,
		DepositType:          p.DepositType,
		DepositValue:         p.DepositValue,
		InstallmentCount:     p.InstallmentCount,
		InstallmentFrequency: p.InstallmentFrequency,
		CustomFrequencyDays:  p.CustomFrequencyDays,
	}
}

// NewEnrollmentResponse creates an enrollment response from an enrollment
func NewEnrollmentResponse(e *enrollment.Enrollment) *EnrollmentResponse {
	return &EnrollmentResponse{
		ID:               e.ID,
		UserID:           e.UserID,
		ProductID:        e.ProductID,
		PaymentPlanID:    e.PaymentPlanID,
		TotalAmount:      e.TotalAmount,
		PaidAmount:       e.PaidAmount,
		Currency:         e.Currency,
		PaymentStatus:    e.PaymentStatus,
		DepositPaid:      e.DepositPaid,
		EnrollmentStatus: e.EnrollmentStatus,
		NextPaymentDate:  e.NextPaymentDate,
		PaymentMetadata:  e.PaymentMetadata,
		TenantID:         e.TenantID,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// CancelEnrollmentRequest represents a request to cancel an enrollment
type CancelEnrollmentRequest struct {
	Reason string `json:"reason" binding:"required"`
	// RefundAmount, when positive, triggers a gateway refund of the most
	// recent completed gateway payment
	RefundAmount *decimal.Decimal `json:"refund_amount,omitempty"`
}

// Validate validates the cancel request
func (r *CancelEnrollmentRequest) Validate() error {
	if r.Reason == "" {
		return ierr.NewError("reason is required").
			WithHint("A cancellation reason is required").
			Mark(ierr.ErrValidation)
	}
	if r.RefundAmount != nil && r.RefundAmount.IsNegative() {
		return ierr.NewError("refund amount must not be negative").
			WithHint("Refund amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
