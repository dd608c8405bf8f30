package service

import (
	"context"
	"strconv"
	"time"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	"github.com/enrollpay/enrollpay/internal/domain/payment"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
)

// PaymentService records completed payments (manual or gateway-confirmed)
// against schedule lines and rolls the amounts into the enrollment's paid
// total, deriving the enrollment's aggregate payment status.
type PaymentService interface {
	RecordPayment(ctx context.Context, scheduleID string, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, enrollmentID string) ([]*dto.PaymentResponse, error)
}

type paymentService struct {
	ServiceParams
}

// NewPaymentService creates a new payment service
func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) RecordPayment(ctx context.Context, scheduleID string, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sched, err := s.ScheduleRepo.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if sched.ScheduleStatus == types.ScheduleStatusPaid {
		return nil, ierr.NewError("schedule is already paid").
			WithHintf("Schedule %s has already been paid", scheduleID).
			Mark(ierr.ErrInvalidOperation)
	}
	if sched.ScheduleStatus == types.ScheduleStatusCancelled {
		return nil, ierr.NewError("schedule is cancelled").
			WithHintf("Schedule %s is cancelled and cannot be paid", scheduleID).
			Mark(ierr.ErrInvalidOperation)
	}

	enr, err := s.EnrollmentRepo.Get(ctx, sched.EnrollmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	p := &payment.Payment{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		EnrollmentID:         sched.EnrollmentID,
		ScheduleID:           &sched.ID,
		Amount:               sched.Amount,
		Currency:             sched.Currency,
		PaymentMethodType:    req.PaymentMethodType,
		GatewayTransactionID: req.ExternalRef,
		PaymentStatus:        types.PaymentStatusCompleted,
		Notes:                req.Notes,
		Metadata: types.Metadata{
			"payment_number": strconv.Itoa(sched.PaymentNumber),
			"payment_type":   sched.PaymentType.String(),
		},
		RecordedAt: now,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.PaymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	// Mark the schedule line paid. Recording is a multi-step write without a
	// transaction: if the line or the enrollment cannot be updated (including
	// a version conflict from a concurrent lifecycle action), the payment row
	// is deleted so a retry never records the schedule twice.
	prevStatus := sched.ScheduleStatus
	sched.ScheduleStatus = types.ScheduleStatusPaid
	sched.PaidDate = &now
	if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
		s.compensatePayment(ctx, p.ID)
		return nil, err
	}

	// Roll the amount into the enrollment. The fully-paid comparison is exact
	// decimal arithmetic so residual cents never leave the enrollment partial.
	enr.PaidAmount = enr.PaidAmount.Add(sched.Amount)
	if enr.IsFullyPaid() {
		enr.PaymentStatus = types.EnrollmentPaymentStatusPaid
	} else {
		enr.PaymentStatus = types.EnrollmentPaymentStatusPartial
	}
	if sched.PaymentType == types.SchedulePaymentTypeDeposit {
		enr.DepositPaid = true
	}
	if enr.EnrollmentStatus == types.EnrollmentStatusPendingPayment {
		enr.EnrollmentStatus = types.EnrollmentStatusActive
	}
	enr.NextPaymentDate = s.nextPendingDate(ctx, enr.ID)

	if err := s.EnrollmentRepo.Update(ctx, enr); err != nil {
		sched.ScheduleStatus = prevStatus
		sched.PaidDate = nil
		if rerr := s.ScheduleRepo.Update(ctx, sched); rerr != nil {
			s.Logger.Errorw("rollback: failed to revert schedule after enrollment update failure",
				"schedule_id", sched.ID,
				"error", rerr,
			)
		}
		s.compensatePayment(ctx, p.ID)
		return nil, err
	}

	s.Logger.Infow("payment recorded",
		"payment_id", p.ID,
		"schedule_id", sched.ID,
		"enrollment_id", enr.ID,
		"amount", sched.Amount.String(),
		"payment_status", enr.PaymentStatus,
	)

	return dto.NewPaymentResponse(p), nil
}

// compensatePayment undoes the payment insert when a later step of the
// recording fails. Logged loudly on failure: a completed payment row without
// a paid schedule is exactly the state the compensation exists to prevent.
func (s *paymentService) compensatePayment(ctx context.Context, paymentID string) {
	if err := s.PaymentRepo.Delete(ctx, paymentID); err != nil {
		s.Logger.Errorw("rollback: failed to delete payment",
			"payment_id", paymentID,
			"error", err,
		)
		return
	}
	s.Logger.Infow("rolled back payment after recording failure",
		"payment_id", paymentID,
	)
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) ListPayments(ctx context.Context, enrollmentID string) ([]*dto.PaymentResponse, error) {
	payments, err := s.PaymentRepo.ListByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = dto.NewPaymentResponse(p)
	}
	return result, nil
}

func (s *paymentService) nextPendingDate(ctx context.Context, enrollmentID string) *time.Time {
	pending, err := s.ScheduleRepo.ListByEnrollmentID(ctx, enrollmentID, types.ScheduleStatusPending)
	if err != nil || len(pending) == 0 {
		return nil
	}

	earliest := pending[0].ScheduledDate
	for _, line := range pending[1:] {
		if line.ScheduledDate.Before(earliest) {
			earliest = line.ScheduledDate
		}
	}
	return &earliest
}
