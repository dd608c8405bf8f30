package service

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// CancellationService tears down an enrollment: the enrollment and all of its
// non-terminal schedule lines are cancelled locally, and when a refund amount
// is requested the latest gateway payment is refunded. The refund is a soft
// operation; a gateway failure never rolls back the local cancellation.
type CancellationService interface {
	CancelEnrollment(ctx context.Context, enrollmentID string, req *dto.CancelEnrollmentRequest) (*dto.EnrollmentResponse, error)
}

type cancellationService struct {
	ServiceParams
}

// NewCancellationService creates a new cancellation service
func NewCancellationService(params ServiceParams) CancellationService {
	return &cancellationService{ServiceParams: params}
}

func (s *cancellationService) CancelEnrollment(ctx context.Context, enrollmentID string, req *dto.CancelEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	enr, err := s.EnrollmentRepo.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enr.EnrollmentStatus == types.EnrollmentStatusCancelled {
		return nil, ierr.NewError("enrollment is already cancelled").
			WithHintf("Enrollment %s has already been cancelled", enrollmentID).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()

	enr.EnrollmentStatus = types.EnrollmentStatusCancelled
	enr.PaymentStatus = types.EnrollmentPaymentStatusCancelled
	enr.NextPaymentDate = nil
	if enr.PaymentMetadata == nil {
		enr.PaymentMetadata = types.Metadata{}
	}
	enr.PaymentMetadata["cancellation_reason"] = req.Reason
	enr.PaymentMetadata["cancelled_at"] = now.Format(time.RFC3339)
	enr.PaymentMetadata["cancelled_by"] = types.GetUserID(ctx)
	if req.RefundAmount != nil {
		enr.PaymentMetadata["refund_amount"] = req.RefundAmount.String()
	}

	if err := s.EnrollmentRepo.Update(ctx, enr); err != nil {
		return nil, err
	}

	cancelled, err := s.cancelOpenSchedules(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("enrollment cancelled",
		"enrollment_id", enrollmentID,
		"reason", req.Reason,
		"schedules_cancelled", cancelled,
	)

	if req.RefundAmount != nil && req.RefundAmount.IsPositive() {
		s.refund(ctx, enrollmentID, *req.RefundAmount, req.Reason)
	}

	return dto.NewEnrollmentResponse(enr), nil
}

// cancelOpenSchedules cancels every line that is not already paid or
// cancelled. Paid lines keep their history; their money is handled through
// the refund, not by rewriting the schedule.
func (s *cancellationService) cancelOpenSchedules(ctx context.Context, enrollmentID string) (int, error) {
	schedules, err := s.ScheduleRepo.ListByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, sched := range schedules {
		if sched.ScheduleStatus.IsTerminal() {
			continue
		}
		sched.ScheduleStatus = types.ScheduleStatusCancelled
		if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *cancellationService) refund(ctx context.Context, enrollmentID string, amount decimal.Decimal, reason string) {
	if s.Gateway == nil {
		s.Logger.Warnw("refund requested but no gateway configured",
			"enrollment_id", enrollmentID,
			"refund_amount", amount.String(),
		)
		return
	}

	p, err := s.PaymentRepo.GetLatestGatewayPayment(ctx, enrollmentID)
	if err != nil {
		s.Logger.Errorw("no gateway payment found for refund",
			"enrollment_id", enrollmentID,
			"error", err,
		)
		return
	}

	gctx, cancel := s.GatewayContext(ctx)
	defer cancel()

	if err := s.Gateway.Refund(gctx, *p.GatewayTransactionID, amount, reason); err != nil {
		s.Logger.Errorw("gateway refund failed",
			"enrollment_id", enrollmentID,
			"payment_id", p.ID,
			"refund_amount", amount.String(),
			"error", err,
		)
		return
	}

	refundedAt := time.Now().UTC()
	p.PaymentStatus = types.PaymentStatusRefunded
	p.RefundedAt = &refundedAt
	if err := s.PaymentRepo.Update(ctx, p); err != nil {
		s.Logger.Errorw("failed to mark payment refunded",
			"enrollment_id", enrollmentID,
			"payment_id", p.ID,
			"error", err,
		)
		return
	}

	s.Logger.Infow("refund issued",
		"enrollment_id", enrollmentID,
		"payment_id", p.ID,
		"refund_amount", amount.String(),
	)
}
