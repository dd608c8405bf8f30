package service

import (
	"testing"
	"time"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/testutil"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ScheduleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ScheduleService
}

func TestScheduleService(t *testing.T) {
	suite.Run(t, new(ScheduleServiceSuite))
}

func (s *ScheduleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewScheduleService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		ProductRepo:    s.GetStores().ProductRepo,
		PlanRepo:       s.GetStores().PlanRepo,
		EnrollmentRepo: s.GetStores().EnrollmentRepo,
		ScheduleRepo:   s.GetStores().ScheduleRepo,
		PaymentRepo:    s.GetStores().PaymentRepo,
	})
}

func (s *ScheduleServiceSuite) seedSchedule(id string, status types.ScheduleStatus, due time.Time) *schedule.PaymentSchedule {
	line := &schedule.PaymentSchedule{
		ID:              id,
		EnrollmentID:    "enr_lifecycle",
		PaymentNumber:   1,
		PaymentType:     types.SchedulePaymentTypeInstallment,
		Amount:          decimal.NewFromInt(100),
		Currency:        "USD",
		OriginalDueDate: due,
		ScheduledDate:   due,
		ScheduleStatus:  status,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ScheduleRepo.Create(s.GetContext(), line))
	return line
}

func (s *ScheduleServiceSuite) TestAdjustDateKeepsOriginalAndAudits() {
	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.seedSchedule("sched_1", types.ScheduleStatusPending, due)

	newDate := due.AddDate(0, 0, 14)
	resp, err := s.service.AdjustDate(s.GetContext(), "sched_1", &dto.AdjustScheduleDateRequest{
		NewDate: newDate,
		Reason:  "student requested extension",
	})
	s.NoError(err)
	s.Equal(newDate, resp.ScheduledDate)
	s.Equal(due, resp.OriginalDueDate)
	s.Len(resp.AdjustmentHistory, 1)
	s.Equal(due, resp.AdjustmentHistory[0].OldDate)
	s.Equal(newDate, resp.AdjustmentHistory[0].NewDate)
	s.Equal(types.DefaultUserID, resp.AdjustmentHistory[0].Actor)
}

func (s *ScheduleServiceSuite) TestAdjustDateRejectsPaidSchedule() {
	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.seedSchedule("sched_paid", types.ScheduleStatusPaid, due)

	_, err := s.service.AdjustDate(s.GetContext(), "sched_paid", &dto.AdjustScheduleDateRequest{
		NewDate: due.AddDate(0, 0, 7),
		Reason:  "should not work",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// The illegal transition left the line untouched
	sched, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_paid")
	s.NoError(err)
	s.Equal(due, sched.ScheduledDate)
	s.Empty(sched.AdjustmentHistory)
}

func (s *ScheduleServiceSuite) TestAdjustOverdueIntoFutureReturnsToPending() {
	past := time.Now().UTC().AddDate(0, 0, -10)
	s.seedSchedule("sched_overdue", types.ScheduleStatusOverdue, past)

	resp, err := s.service.AdjustDate(s.GetContext(), "sched_overdue", &dto.AdjustScheduleDateRequest{
		NewDate: time.Now().UTC().AddDate(0, 0, 10),
		Reason:  "grace period granted",
	})
	s.NoError(err)
	s.Equal(types.ScheduleStatusPending, resp.ScheduleStatus)
}

func (s *ScheduleServiceSuite) TestPauseAndResume() {
	due := time.Now().UTC().AddDate(0, 0, 5)
	s.seedSchedule("sched_pause", types.ScheduleStatusPending, due)

	paused, err := s.service.Pause(s.GetContext(), "sched_pause", &dto.PauseScheduleRequest{
		Reason: "payment dispute open",
	})
	s.NoError(err)
	s.Equal(types.ScheduleStatusPaused, paused.ScheduleStatus)

	resumed, err := s.service.Resume(s.GetContext(), "sched_pause")
	s.NoError(err)
	s.Equal(types.ScheduleStatusPending, resumed.ScheduleStatus)

	sched, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_pause")
	s.NoError(err)
	s.Nil(sched.PauseReason)
}

func (s *ScheduleServiceSuite) TestResumeRejectsNonPaused() {
	s.seedSchedule("sched_pending", types.ScheduleStatusPending, time.Now().UTC())

	_, err := s.service.Resume(s.GetContext(), "sched_pending")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ScheduleServiceSuite) TestFailureAndRetryRoundTrip() {
	s.seedSchedule("sched_fail", types.ScheduleStatusPending, time.Now().UTC())

	failed, err := s.service.RecordFailure(s.GetContext(), "sched_fail", &dto.RecordFailureRequest{
		ErrorMessage: "card declined",
	})
	s.NoError(err)
	s.Equal(types.ScheduleStatusFailed, failed.ScheduleStatus)
	s.NotNil(failed.LastError)
	s.Equal("card declined", *failed.LastError)
	s.NotNil(failed.NextRetryDate)

	retried, err := s.service.Retry(s.GetContext(), "sched_fail")
	s.NoError(err)
	s.Equal(types.ScheduleStatusPending, retried.ScheduleStatus)
	s.Equal(1, retried.RetryCount)
	s.Nil(retried.LastError)
	s.Nil(retried.NextRetryDate)
}

func (s *ScheduleServiceSuite) TestRetryRejectsNonFailed() {
	s.seedSchedule("sched_ok", types.ScheduleStatusPending, time.Now().UTC())

	_, err := s.service.Retry(s.GetContext(), "sched_ok")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ScheduleServiceSuite) TestBulkDelayReportsPartialFailure() {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.seedSchedule("sched_a", types.ScheduleStatusPending, due)
	s.seedSchedule("sched_b", types.ScheduleStatusPaid, due)

	resp, err := s.service.BulkDelay(s.GetContext(), &dto.BulkDelayRequest{
		ScheduleIDs: []string{"sched_a", "sched_b", "sched_missing"},
		Days:        7,
		Reason:      "cohort start moved",
	})
	s.NoError(err)
	s.Equal([]string{"sched_a"}, resp.Succeeded)
	s.Len(resp.Failed, 2)

	moved, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_a")
	s.NoError(err)
	s.Equal(due.AddDate(0, 0, 7), moved.ScheduledDate)

	untouched, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_b")
	s.NoError(err)
	s.Equal(due, untouched.ScheduledDate)
}

func (s *ScheduleServiceSuite) TestMarkOverdueSweepsOnlyPastPending() {
	now := time.Now().UTC()
	s.seedSchedule("sched_past", types.ScheduleStatusPending, now.AddDate(0, 0, -3))
	s.seedSchedule("sched_future", types.ScheduleStatusPending, now.AddDate(0, 0, 3))
	s.seedSchedule("sched_paused", types.ScheduleStatusPaused, now.AddDate(0, 0, -3))

	marked, err := s.service.MarkOverdue(s.GetContext(), now)
	s.NoError(err)
	s.Equal(1, marked)

	past, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_past")
	s.NoError(err)
	s.Equal(types.ScheduleStatusOverdue, past.ScheduleStatus)

	future, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_future")
	s.NoError(err)
	s.Equal(types.ScheduleStatusPending, future.ScheduleStatus)

	paused, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_paused")
	s.NoError(err)
	s.Equal(types.ScheduleStatusPaused, paused.ScheduleStatus)
}

func (s *ScheduleServiceSuite) TestStaleUpdateReturnsVersionConflict() {
	line := s.seedSchedule("sched_cas", types.ScheduleStatusPending, time.Now().UTC())
	stale := *line

	_, err := s.service.Pause(s.GetContext(), "sched_cas", &dto.PauseScheduleRequest{
		Reason: "dispute",
	})
	s.NoError(err)

	stale.ScheduleStatus = types.ScheduleStatusProcessing
	err = s.GetStores().ScheduleRepo.Update(s.GetContext(), &stale)
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))

	sched, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), "sched_cas")
	s.NoError(err)
	s.Equal(types.ScheduleStatusPaused, sched.ScheduleStatus)
}

func (s *ScheduleServiceSuite) TestListSchedulesFiltersByStatus() {
	now := time.Now().UTC()
	s.seedSchedule("sched_p1", types.ScheduleStatusPending, now)
	s.seedSchedule("sched_p2", types.ScheduleStatusPaid, now)

	all, err := s.service.ListSchedules(s.GetContext(), "enr_lifecycle")
	s.NoError(err)
	s.Len(all, 2)

	pending, err := s.service.ListSchedules(s.GetContext(), "enr_lifecycle", types.ScheduleStatusPending)
	s.NoError(err)
	s.Len(pending, 1)
	s.Equal("sched_p1", pending[0].ID)
}
