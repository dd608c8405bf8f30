package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PlanType is the shape of a payment plan
type PlanType string

const (
	PlanTypeOneTime      PlanType = "one_time"
	PlanTypeDeposit      PlanType = "deposit"
	PlanTypeInstallments PlanType = "installments"
	PlanTypeSubscription PlanType = "subscription"
)

func (t PlanType) String() string {
	return string(t)
}

func (t PlanType) Validate() error {
	allowed := []PlanType{
		PlanTypeOneTime,
		PlanTypeDeposit,
		PlanTypeInstallments,
		PlanTypeSubscription,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid plan type: %s", t)
	}
	return nil
}

// RequiresImmediatePayment reports whether an enrollment under this plan type
// must be charged at enrollment time
func (t PlanType) RequiresImmediatePayment() bool {
	switch t {
	case PlanTypeOneTime, PlanTypeDeposit, PlanTypeSubscription:
		return true
	case PlanTypeInstallments:
		// the first installment is due at enrollment time as well
		return true
	default:
		return false
	}
}

// DepositType determines how a deposit plan computes its deposit amount
type DepositType string

const (
	DepositTypePercentage DepositType = "percentage"
	DepositTypeFixed      DepositType = "fixed"
)

func (t DepositType) String() string {
	return string(t)
}

func (t DepositType) Validate() error {
	allowed := []DepositType{DepositTypePercentage, DepositTypeFixed}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid deposit type: %s", t)
	}
	return nil
}

// InstallmentFrequency is the cadence of installment due dates
type InstallmentFrequency string

const (
	InstallmentFrequencyWeekly   InstallmentFrequency = "weekly"
	InstallmentFrequencyBiweekly InstallmentFrequency = "biweekly"
	InstallmentFrequencyMonthly  InstallmentFrequency = "monthly"
	InstallmentFrequencyCustom   InstallmentFrequency = "custom"
)

func (f InstallmentFrequency) String() string {
	return string(f)
}

func (f InstallmentFrequency) Validate() error {
	allowed := []InstallmentFrequency{
		InstallmentFrequencyWeekly,
		InstallmentFrequencyBiweekly,
		InstallmentFrequencyMonthly,
		InstallmentFrequencyCustom,
	}
	if !lo.Contains(allowed, f) {
		return fmt.Errorf("invalid installment frequency: %s", f)
	}
	return nil
}

// RuleCondition is the subject of an auto-detection rule predicate
type RuleCondition string

const (
	RuleConditionPriceRange  RuleCondition = "price_range"
	RuleConditionProductType RuleCondition = "product_type"
	RuleConditionMetadata    RuleCondition = "metadata"
	RuleConditionUserSegment RuleCondition = "user_segment"
)

func (c RuleCondition) String() string {
	return string(c)
}

func (c RuleCondition) Validate() error {
	allowed := []RuleCondition{
		RuleConditionPriceRange,
		RuleConditionProductType,
		RuleConditionMetadata,
		RuleConditionUserSegment,
	}
	if !lo.Contains(allowed, c) {
		return fmt.Errorf("invalid rule condition: %s", c)
	}
	return nil
}

// RuleOperator is the comparison applied by an auto-detection rule
type RuleOperator string

const (
	RuleOperatorEquals      RuleOperator = "equals"
	RuleOperatorGreaterThan RuleOperator = "greater_than"
	RuleOperatorLessThan    RuleOperator = "less_than"
	RuleOperatorBetween     RuleOperator = "between"
	RuleOperatorIn          RuleOperator = "in"
	RuleOperatorNotIn       RuleOperator = "not_in"
	RuleOperatorContains    RuleOperator = "contains"
)

func (o RuleOperator) String() string {
	return string(o)
}

func (o RuleOperator) Validate() error {
	allowed := []RuleOperator{
		RuleOperatorEquals,
		RuleOperatorGreaterThan,
		RuleOperatorLessThan,
		RuleOperatorBetween,
		RuleOperatorIn,
		RuleOperatorNotIn,
		RuleOperatorContains,
	}
	if !lo.Contains(allowed, o) {
		return fmt.Errorf("invalid rule operator: %s", o)
	}
	return nil
}
