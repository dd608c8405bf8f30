package service

import (
	"testing"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	"github.com/enrollpay/enrollpay/internal/domain/enrollment"
	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/testutil"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentService
	testData struct {
		enrollment *enrollment.Enrollment
		schedules  []*schedule.PaymentSchedule
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		ProductRepo:    s.GetStores().ProductRepo,
		PlanRepo:       s.GetStores().PlanRepo,
		EnrollmentRepo: s.GetStores().EnrollmentRepo,
		ScheduleRepo:   s.GetStores().ScheduleRepo,
		PaymentRepo:    s.GetStores().PaymentRepo,
	})
	s.setupTestData()
}

// setupTestData seeds an enrollment of 100 split into three installments of
// 33.33, 33.33 and 33.34
func (s *PaymentServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.enrollment = &enrollment.Enrollment{
		ID:               "enr_pay",
		UserID:           "user_1",
		ProductID:        "prod_course",
		TotalAmount:      decimal.NewFromInt(100),
		PaidAmount:       decimal.Zero,
		Currency:         "USD",
		PaymentStatus:    types.EnrollmentPaymentStatusPending,
		EnrollmentStatus: types.EnrollmentStatusPendingPayment,
		Version:          1,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().EnrollmentRepo.Create(ctx, s.testData.enrollment))

	amounts := []string{"33.33", "33.33", "33.34"}
	s.testData.schedules = nil
	for i, raw := range amounts {
		line := &schedule.PaymentSchedule{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_SCHEDULE),
			EnrollmentID:    s.testData.enrollment.ID,
			PaymentNumber:   i + 1,
			PaymentType:     types.SchedulePaymentTypeInstallment,
			Amount:          decimal.RequireFromString(raw),
			Currency:        "USD",
			OriginalDueDate: s.GetNow().AddDate(0, i, 0),
			ScheduledDate:   s.GetNow().AddDate(0, i, 0),
			ScheduleStatus:  types.ScheduleStatusPending,
			Version:         1,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		}
		s.NoError(s.GetStores().ScheduleRepo.Create(ctx, line))
		s.testData.schedules = append(s.testData.schedules, line)
	}
}

func (s *PaymentServiceSuite) TestRecordPaymentActivatesEnrollment() {
	resp, err := s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.NoError(err)
	s.True(resp.Amount.Equal(decimal.RequireFromString("33.33")))
	s.Equal(types.PaymentStatusCompleted, resp.PaymentStatus)

	sched, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), s.testData.schedules[0].ID)
	s.NoError(err)
	s.Equal(types.ScheduleStatusPaid, sched.ScheduleStatus)
	s.NotNil(sched.PaidDate)

	enr, err := s.GetStores().EnrollmentRepo.Get(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.True(enr.PaidAmount.Equal(decimal.RequireFromString("33.33")))
	s.Equal(types.EnrollmentPaymentStatusPartial, enr.PaymentStatus)
	s.Equal(types.EnrollmentStatusActive, enr.EnrollmentStatus)
	s.NotNil(enr.NextPaymentDate)
}

func (s *PaymentServiceSuite) TestRecordAllPaymentsReachesPaidExactly() {
	for _, line := range s.testData.schedules {
		_, err := s.service.RecordPayment(s.GetContext(), line.ID, &dto.RecordPaymentRequest{
			PaymentMethodType: types.PaymentMethodTypeCard,
		})
		s.NoError(err)
	}

	enr, err := s.GetStores().EnrollmentRepo.Get(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.True(enr.PaidAmount.Equal(decimal.NewFromInt(100)), "paid amount must sum exactly, got %s", enr.PaidAmount)
	s.Equal(types.EnrollmentPaymentStatusPaid, enr.PaymentStatus)
	s.Nil(enr.NextPaymentDate)
}

func (s *PaymentServiceSuite) TestRecordPaymentRejectsAlreadyPaid() {
	_, err := s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.NoError(err)

	_, err = s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// The double record left no trace on the enrollment
	enr, err := s.GetStores().EnrollmentRepo.Get(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.True(enr.PaidAmount.Equal(decimal.RequireFromString("33.33")))
}

func (s *PaymentServiceSuite) TestRecordPaymentLeavesNoRowOnScheduleUpdateFailure() {
	s.GetStores().ScheduleRepo.UpdateErr = ierr.NewError("connection reset").
		WithHint("Failed to update payment schedule").
		Mark(ierr.ErrDatabase)

	_, err := s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.Error(err)

	// The payment insert was compensated and nothing else moved
	payments, err := s.GetStores().PaymentRepo.ListByEnrollmentID(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.Empty(payments)

	sched, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), s.testData.schedules[0].ID)
	s.NoError(err)
	s.Equal(types.ScheduleStatusPending, sched.ScheduleStatus)
	s.Nil(sched.PaidDate)

	enr, err := s.GetStores().EnrollmentRepo.Get(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.True(enr.PaidAmount.IsZero())

	// A retry succeeds once the failure clears and records exactly one payment
	s.GetStores().ScheduleRepo.UpdateErr = nil
	_, err = s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.NoError(err)

	payments, err = s.GetStores().PaymentRepo.ListByEnrollmentID(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.Len(payments, 1)
}

func (s *PaymentServiceSuite) TestRecordPaymentRevertsScheduleOnEnrollmentFailure() {
	s.GetStores().EnrollmentRepo.UpdateErr = ierr.NewError("connection reset").
		WithHint("Failed to update enrollment").
		Mark(ierr.ErrDatabase)

	_, err := s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.Error(err)

	// Both earlier steps were rolled back: no payment row, line back to pending
	payments, err := s.GetStores().PaymentRepo.ListByEnrollmentID(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.Empty(payments)

	sched, err := s.GetStores().ScheduleRepo.Get(s.GetContext(), s.testData.schedules[0].ID)
	s.NoError(err)
	s.Equal(types.ScheduleStatusPending, sched.ScheduleStatus)
	s.Nil(sched.PaidDate)

	s.GetStores().EnrollmentRepo.UpdateErr = nil
	_, err = s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.NoError(err)

	enr, err := s.GetStores().EnrollmentRepo.Get(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.True(enr.PaidAmount.Equal(decimal.RequireFromString("33.33")))
}

func (s *PaymentServiceSuite) TestRecordPaymentRejectsCancelledSchedule() {
	sched := s.testData.schedules[1]
	sched.ScheduleStatus = types.ScheduleStatusCancelled
	s.NoError(s.GetStores().ScheduleRepo.Update(s.GetContext(), sched))

	_, err := s.service.RecordPayment(s.GetContext(), sched.ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestRecordPaymentMarksDepositPaid() {
	deposit := &schedule.PaymentSchedule{
		ID:              "sched_deposit",
		EnrollmentID:    s.testData.enrollment.ID,
		PaymentNumber:   4,
		PaymentType:     types.SchedulePaymentTypeDeposit,
		Amount:          decimal.NewFromInt(10),
		Currency:        "USD",
		OriginalDueDate: s.GetNow(),
		ScheduledDate:   s.GetNow(),
		ScheduleStatus:  types.ScheduleStatusPending,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ScheduleRepo.Create(s.GetContext(), deposit))

	_, err := s.service.RecordPayment(s.GetContext(), deposit.ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeBankTransfer,
	})
	s.NoError(err)

	enr, err := s.GetStores().EnrollmentRepo.Get(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.True(enr.DepositPaid)
}

func (s *PaymentServiceSuite) TestRecordPaymentKeepsGatewayReference() {
	ref := "pi_ext_123"
	resp, err := s.service.RecordPayment(s.GetContext(), s.testData.schedules[0].ID, &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
		ExternalRef:       &ref,
	})
	s.NoError(err)
	s.NotNil(resp.GatewayTransactionID)
	s.Equal(ref, *resp.GatewayTransactionID)

	latest, err := s.GetStores().PaymentRepo.GetLatestGatewayPayment(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.Equal(resp.ID, latest.ID)
}

func (s *PaymentServiceSuite) TestListPayments() {
	for _, line := range s.testData.schedules[:2] {
		_, err := s.service.RecordPayment(s.GetContext(), line.ID, &dto.RecordPaymentRequest{
			PaymentMethodType: types.PaymentMethodTypeCash,
		})
		s.NoError(err)
	}

	payments, err := s.service.ListPayments(s.GetContext(), s.testData.enrollment.ID)
	s.NoError(err)
	s.Len(payments, 2)
}

func (s *PaymentServiceSuite) TestRecordPaymentUnknownSchedule() {
	_, err := s.service.RecordPayment(s.GetContext(), "sched_missing", &dto.RecordPaymentRequest{
		PaymentMethodType: types.PaymentMethodTypeCard,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
