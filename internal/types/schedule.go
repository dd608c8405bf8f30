package types

import (
	"fmt"

	"github.com/samber/lo"
)

// ScheduleStatus is the state of a single payment schedule line
type ScheduleStatus string

const (
	ScheduleStatusPending    ScheduleStatus = "pending"
	ScheduleStatusProcessing ScheduleStatus = "processing"
	ScheduleStatusPaid       ScheduleStatus = "paid"
	ScheduleStatusOverdue    ScheduleStatus = "overdue"
	ScheduleStatusPaused     ScheduleStatus = "paused"
	ScheduleStatusFailed     ScheduleStatus = "failed"
	ScheduleStatusCancelled  ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) String() string {
	return string(s)
}

func (s ScheduleStatus) Validate() error {
	allowed := []ScheduleStatus{
		ScheduleStatusPending,
		ScheduleStatusProcessing,
		ScheduleStatusPaid,
		ScheduleStatusOverdue,
		ScheduleStatusPaused,
		ScheduleStatusFailed,
		ScheduleStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid schedule status: %s", s)
	}
	return nil
}

// IsTerminal reports whether no further transitions are allowed from this state
func (s ScheduleStatus) IsTerminal() bool {
	return s == ScheduleStatusPaid || s == ScheduleStatusCancelled
}

// SchedulePaymentType is the role of a schedule line within its plan
type SchedulePaymentType string

const (
	SchedulePaymentTypeFull         SchedulePaymentType = "full"
	SchedulePaymentTypeDeposit      SchedulePaymentType = "deposit"
	SchedulePaymentTypeInstallment  SchedulePaymentType = "installment"
	SchedulePaymentTypeSubscription SchedulePaymentType = "subscription"
)

func (t SchedulePaymentType) String() string {
	return string(t)
}

func (t SchedulePaymentType) Validate() error {
	allowed := []SchedulePaymentType{
		SchedulePaymentTypeFull,
		SchedulePaymentTypeDeposit,
		SchedulePaymentTypeInstallment,
		SchedulePaymentTypeSubscription,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid schedule payment type: %s", t)
	}
	return nil
}
