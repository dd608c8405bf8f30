package service

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
)

const defaultRetryBackoff = 24 * time.Hour

// ScheduleService drives the lifecycle of individual schedule lines: date
// adjustments, pause and resume, failure recording, retries, bulk delays and
// the overdue sweep. Every transition is validated against the current
// status; an illegal transition leaves the line untouched.
type ScheduleService interface {
	GetSchedule(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	ListSchedules(ctx context.Context, enrollmentID string, statuses ...types.ScheduleStatus) ([]*dto.ScheduleResponse, error)
	AdjustDate(ctx context.Context, id string, req *dto.AdjustScheduleDateRequest) (*dto.ScheduleResponse, error)
	Pause(ctx context.Context, id string, req *dto.PauseScheduleRequest) (*dto.ScheduleResponse, error)
	Resume(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	Retry(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	RecordFailure(ctx context.Context, id string, req *dto.RecordFailureRequest) (*dto.ScheduleResponse, error)
	BulkDelay(ctx context.Context, req *dto.BulkDelayRequest) (*dto.BulkDelayResponse, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
}

type scheduleService struct {
	ServiceParams
}

// NewScheduleService creates a new schedule service
func NewScheduleService(params ServiceParams) ScheduleService {
	return &scheduleService{ServiceParams: params}
}

func (s *scheduleService) GetSchedule(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	sched, err := s.ScheduleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewScheduleResponse(sched), nil
}

func (s *scheduleService) ListSchedules(ctx context.Context, enrollmentID string, statuses ...types.ScheduleStatus) ([]*dto.ScheduleResponse, error) {
	schedules, err := s.ScheduleRepo.ListByEnrollmentID(ctx, enrollmentID, statuses...)
	if err != nil {
		return nil, err
	}
	return dto.NewScheduleResponseList(schedules), nil
}

func (s *scheduleService) AdjustDate(ctx context.Context, id string, req *dto.AdjustScheduleDateRequest) (*dto.ScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sched, err := s.ScheduleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(sched, "adjust", types.ScheduleStatusPending, types.ScheduleStatusOverdue); err != nil {
		return nil, err
	}

	// The original due date never moves; only the effective date does, and
	// every move is appended to the audit trail.
	sched.AdjustmentHistory = append(sched.AdjustmentHistory, schedule.AdjustmentEntry{
		OldDate:   sched.ScheduledDate,
		NewDate:   req.NewDate,
		Reason:    req.Reason,
		Actor:     types.GetUserID(ctx),
		Timestamp: time.Now().UTC(),
	})
	sched.ScheduledDate = req.NewDate
	if sched.ScheduleStatus == types.ScheduleStatusOverdue && req.NewDate.After(time.Now().UTC()) {
		sched.ScheduleStatus = types.ScheduleStatusPending
	}

	if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
		return nil, err
	}

	s.Logger.Infow("schedule date adjusted",
		"schedule_id", sched.ID,
		"new_date", req.NewDate,
		"reason", req.Reason,
	)

	return dto.NewScheduleResponse(sched), nil
}

func (s *scheduleService) Pause(ctx context.Context, id string, req *dto.PauseScheduleRequest) (*dto.ScheduleResponse, error) {
	if req.Reason == "" {
		return nil, ierr.NewError("reason is required").
			WithHint("A pause reason is required").
			Mark(ierr.ErrValidation)
	}

	sched, err := s.ScheduleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(sched, "pause", types.ScheduleStatusPending, types.ScheduleStatusOverdue); err != nil {
		return nil, err
	}

	sched.ScheduleStatus = types.ScheduleStatusPaused
	sched.PauseReason = &req.Reason

	if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
		return nil, err
	}

	s.Logger.Infow("schedule paused", "schedule_id", sched.ID, "reason", req.Reason)
	return dto.NewScheduleResponse(sched), nil
}

func (s *scheduleService) Resume(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	sched, err := s.ScheduleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(sched, "resume", types.ScheduleStatusPaused); err != nil {
		return nil, err
	}

	sched.ScheduleStatus = types.ScheduleStatusPending
	sched.PauseReason = nil

	if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
		return nil, err
	}

	s.Logger.Infow("schedule resumed", "schedule_id", sched.ID)
	return dto.NewScheduleResponse(sched), nil
}

func (s *scheduleService) Retry(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	sched, err := s.ScheduleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(sched, "retry", types.ScheduleStatusFailed); err != nil {
		return nil, err
	}

	sched.ScheduleStatus = types.ScheduleStatusPending
	sched.RetryCount++
	sched.LastError = nil
	sched.NextRetryDate = nil

	if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
		return nil, err
	}

	s.Logger.Infow("schedule queued for retry",
		"schedule_id", sched.ID,
		"retry_count", sched.RetryCount,
	)
	return dto.NewScheduleResponse(sched), nil
}

func (s *scheduleService) RecordFailure(ctx context.Context, id string, req *dto.RecordFailureRequest) (*dto.ScheduleResponse, error) {
	if req.ErrorMessage == "" {
		return nil, ierr.NewError("error message is required").
			WithHint("A failure message is required").
			Mark(ierr.ErrValidation)
	}

	sched, err := s.ScheduleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(sched, "fail",
		types.ScheduleStatusPending,
		types.ScheduleStatusProcessing,
		types.ScheduleStatusOverdue,
	); err != nil {
		return nil, err
	}

	nextRetry := time.Now().UTC().Add(defaultRetryBackoff)
	sched.ScheduleStatus = types.ScheduleStatusFailed
	sched.LastError = &req.ErrorMessage
	sched.NextRetryDate = &nextRetry

	if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
		return nil, err
	}

	s.Logger.Warnw("schedule payment failed",
		"schedule_id", sched.ID,
		"error", req.ErrorMessage,
		"next_retry_date", nextRetry,
	)
	return dto.NewScheduleResponse(sched), nil
}

// BulkDelay shifts each named schedule's effective date forward by the same
// number of days. Each line is processed independently so one bad id never
// blocks the rest, and the response reports both sides explicitly.
func (s *scheduleService) BulkDelay(ctx context.Context, req *dto.BulkDelayRequest) (*dto.BulkDelayResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &dto.BulkDelayResponse{
		Succeeded: make([]string, 0, len(req.ScheduleIDs)),
		Failed:    make([]dto.BulkDelayFailure, 0),
	}

	for _, id := range req.ScheduleIDs {
		sched, err := s.ScheduleRepo.Get(ctx, id)
		if err == nil {
			err = requireStatus(sched, "delay", types.ScheduleStatusPending, types.ScheduleStatusOverdue)
		}
		if err == nil {
			adjusted := &dto.AdjustScheduleDateRequest{
				NewDate: sched.ScheduledDate.AddDate(0, 0, req.Days),
				Reason:  req.Reason,
			}
			_, err = s.AdjustDate(ctx, id, adjusted)
		}

		if err != nil {
			resp.Failed = append(resp.Failed, dto.BulkDelayFailure{
				ScheduleID: id,
				Error:      err.Error(),
			})
			continue
		}
		resp.Succeeded = append(resp.Succeeded, id)
	}

	s.Logger.Infow("bulk delay applied",
		"requested", len(req.ScheduleIDs),
		"succeeded", len(resp.Succeeded),
		"failed", len(resp.Failed),
		"days", req.Days,
	)
	return resp, nil
}

// MarkOverdue flips every pending line whose effective date is strictly
// before asOf to overdue and returns the number of lines transitioned.
func (s *scheduleService) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.ScheduleRepo.ListPendingBefore(ctx, asOf)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, sched := range due {
		if sched.ScheduleStatus != types.ScheduleStatusPending {
			continue
		}
		sched.ScheduleStatus = types.ScheduleStatusOverdue
		if err := s.ScheduleRepo.Update(ctx, sched); err != nil {
			s.Logger.Errorw("failed to mark schedule overdue",
				"schedule_id", sched.ID,
				"error", err,
			)
			continue
		}
		marked++
	}

	if marked > 0 {
		s.Logger.Infow("overdue sweep completed", "marked", marked, "as_of", asOf)
	}
	return marked, nil
}

func requireStatus(sched *schedule.PaymentSchedule, action string, allowed ...types.ScheduleStatus) error {
	for _, status := range allowed {
		if sched.ScheduleStatus == status {
			return nil
		}
	}
	return ierr.NewErrorf("cannot %s schedule in status %s", action, sched.ScheduleStatus).
		WithHintf("Schedule %s is %s and cannot be modified this way", sched.ID, sched.ScheduleStatus).
		WithReportableDetails(map[string]any{
			"schedule_id": sched.ID,
			"status":      sched.ScheduleStatus,
		}).
		Mark(ierr.ErrInvalidOperation)
}
