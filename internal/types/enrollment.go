package types

import (
	"fmt"

	"github.com/samber/lo"
)

// EnrollmentStatus is the lifecycle status of an enrollment
type EnrollmentStatus string

const (
	EnrollmentStatusPendingPayment EnrollmentStatus = "pending_payment"
	EnrollmentStatusActive         EnrollmentStatus = "active"
	EnrollmentStatusCompleted      EnrollmentStatus = "completed"
	EnrollmentStatusCancelled      EnrollmentStatus = "cancelled"
)

func (s EnrollmentStatus) String() string {
	return string(s)
}

func (s EnrollmentStatus) Validate() error {
	allowed := []EnrollmentStatus{
		EnrollmentStatusPendingPayment,
		EnrollmentStatusActive,
		EnrollmentStatusCompleted,
		EnrollmentStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid enrollment status: %s", s)
	}
	return nil
}

// EnrollmentPaymentStatus is the aggregate payment state of an enrollment,
// derived from the payments recorded against its schedules
type EnrollmentPaymentStatus string

const (
	EnrollmentPaymentStatusPending   EnrollmentPaymentStatus = "pending"
	EnrollmentPaymentStatusPartial   EnrollmentPaymentStatus = "partial"
	EnrollmentPaymentStatusPaid      EnrollmentPaymentStatus = "paid"
	EnrollmentPaymentStatusCancelled EnrollmentPaymentStatus = "cancelled"
)

func (s EnrollmentPaymentStatus) String() string {
	return string(s)
}

func (s EnrollmentPaymentStatus) Validate() error {
	allowed := []EnrollmentPaymentStatus{
		EnrollmentPaymentStatusPending,
		EnrollmentPaymentStatusPartial,
		EnrollmentPaymentStatusPaid,
		EnrollmentPaymentStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid enrollment payment status: %s", s)
	}
	return nil
}
