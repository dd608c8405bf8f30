package paymentplan

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentPlan is a reusable template describing how a product's price is
// collected. Plans are created by admin tooling and read-only here.
type PaymentPlan struct {
	// Unique identifier for this plan
	ID string `json:"id"`
	// Display name of the plan
	Name string `json:"name"`
	// The plan_type is the shape of the plan (one_time, deposit, installments, subscription)
	PlanType types.PlanType `json:"plan_type"`
	// The deposit_type determines how the deposit amount is computed (percentage, fixed)
	DepositType types.DepositType `json:"deposit_type,omitempty"`
	// The deposit_value is a percentage of the total (deposit_type percentage)
	// or an absolute amount (deposit_type fixed)
	DepositValue decimal.Decimal `json:"deposit_value"`
	// The installment_count is the number of installments after any deposit
	InstallmentCount int `json:"installment_count"`
	// The installment_frequency is the cadence of installment due dates
	InstallmentFrequency types.InstallmentFrequency `json:"installment_frequency,omitempty"`
	// The custom_frequency_days is the day interval for the custom frequency
	CustomFrequencyDays int `json:"custom_frequency_days,omitempty"`
	// The auto_detect_enabled flag makes this plan a candidate for rule-based selection
	AutoDetectEnabled bool `json:"auto_detect_enabled"`
	// The rules are combined with logical AND during auto-detection
	Rules AutoDetectRules `json:"rules,omitempty"`
	// Higher priority plans are evaluated first during auto-detection
	Priority int `json:"priority"`

	types.BaseModel
}

// AutoDetectRule is a single predicate over a product/user combination
type AutoDetectRule struct {
	// The condition is the subject of the predicate (price_range, product_type, metadata, user_segment)
	Condition types.RuleCondition `json:"condition"`
	// The operator is the comparison to apply
	Operator types.RuleOperator `json:"operator"`
	// The field names the metadata key for metadata conditions
	Field string `json:"field,omitempty"`
	// The value is the single comparison operand
	Value string `json:"value,omitempty"`
	// The values are the set operands for in / not_in
	Values []string `json:"values,omitempty"`
	// Min and Max bound price_range comparisons; a nil Max means unbounded
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// AutoDetectRules is stored as a JSONB column
type AutoDetectRules []AutoDetectRule

// Scan implements the sql.Scanner interface for AutoDetectRules
func (r *AutoDetectRules) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	return json.Unmarshal(bytes, r)
}

// Value implements the driver.Valuer interface for AutoDetectRules
func (r AutoDetectRules) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal(AutoDetectRules{})
	}
	return json.Marshal(r)
}

// IsActive reports whether the plan may be resolved
func (p *PaymentPlan) IsActive() bool {
	return p.Status == types.StatusActive
}

// Validate validates the plan template
func (p *PaymentPlan) Validate() error {
	if err := p.PlanType.Validate(); err != nil {
		return ierr.NewError("invalid plan type").
			WithHint("Plan type is invalid").
			Mark(ierr.ErrValidation)
	}

	switch p.PlanType {
	case types.PlanTypeDeposit:
		if err := p.DepositType.Validate(); err != nil {
			return ierr.NewError("invalid deposit type").
				WithHint("Deposit plans require a deposit type").
				Mark(ierr.ErrValidation)
		}
		if !p.DepositValue.IsPositive() {
			return ierr.NewError("invalid deposit value").
				WithHint("Deposit value must be greater than 0").
				Mark(ierr.ErrValidation)
		}
		if p.DepositType == types.DepositTypePercentage && p.DepositValue.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return ierr.NewError("invalid deposit percentage").
				WithHint("Deposit percentage must be less than 100").
				Mark(ierr.ErrValidation)
		}
		fallthrough
	case types.PlanTypeInstallments:
		if p.InstallmentCount <= 0 {
			return ierr.NewError("invalid installment count").
				WithHint("Installment count must be greater than 0").
				Mark(ierr.ErrValidation)
		}
		if err := p.InstallmentFrequency.Validate(); err != nil {
			return ierr.NewError("invalid installment frequency").
				WithHint("Installment frequency is invalid").
				Mark(ierr.ErrValidation)
		}
		if p.InstallmentFrequency == types.InstallmentFrequencyCustom && p.CustomFrequencyDays <= 0 {
			return ierr.NewError("invalid custom frequency").
				WithHint("Custom frequency requires a positive day interval").
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// TableName returns the table name for the payment plan
func (p *PaymentPlan) TableName() string {
	return "payment_plans"
}
