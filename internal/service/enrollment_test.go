package service

import (
	"testing"
	"time"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/product"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/testutil"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EnrollmentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  EnrollmentService
	testData struct {
		product *product.Product
		plan    *paymentplan.PaymentPlan
	}
}

func TestEnrollmentService(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceSuite))
}

func (s *EnrollmentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewEnrollmentService(s.params())
	s.setupTestData()
}

func (s *EnrollmentServiceSuite) params() ServiceParams {
	return ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		ProductRepo:    s.GetStores().ProductRepo,
		PlanRepo:       s.GetStores().PlanRepo,
		EnrollmentRepo: s.GetStores().EnrollmentRepo,
		ScheduleRepo:   s.GetStores().ScheduleRepo,
		PaymentRepo:    s.GetStores().PaymentRepo,
		Gateway:        s.GetGateway(),
	}
}

func (s *EnrollmentServiceSuite) setupTestData() {
	s.testData.plan = &paymentplan.PaymentPlan{
		ID:                   "plan_deposit",
		Name:                 "30% down, 6 months",
		PlanType:             types.PlanTypeDeposit,
		DepositType:          types.DepositTypePercentage,
		DepositValue:         decimal.NewFromInt(30),
		InstallmentCount:     6,
		InstallmentFrequency: types.InstallmentFrequencyMonthly,
		BaseModel:            types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Add(s.GetContext(), s.testData.plan))

	s.testData.product = &product.Product{
		ID:          "prod_course",
		ProductType: "course",
		Name:        "Go from scratch",
		Price:       decimal.NewFromInt(1000),
		Currency:    "USD",
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ProductRepo.Add(s.GetContext(), s.testData.product))
}

func (s *EnrollmentServiceSuite) TestEnrollWithoutPlanFallsBackToOneTime() {
	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:    "user_1",
		ProductID: s.testData.product.ID,
	})
	s.NoError(err)
	s.NotNil(resp)

	s.Empty(resp.PaymentPlanID)
	s.True(resp.RequiresImmediatePayment)
	s.Len(resp.Schedules, 1)
	s.Equal(types.SchedulePaymentTypeFull, resp.Schedules[0].PaymentType)
	s.True(resp.Schedules[0].Amount.Equal(decimal.NewFromInt(1000)))

	// The gateway was asked to prepare the immediate charge
	s.NotEmpty(resp.ClientSecret)
	s.NotEmpty(resp.PaymentIntentID)
	s.Len(s.GetGateway().PaymentIntents, 1)
}

func (s *EnrollmentServiceSuite) TestEnrollWithForcedDepositPlan() {
	s.testData.product.ForcedPaymentPlanID = lo.ToPtr(s.testData.plan.ID)
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:    "user_1",
		ProductID: s.testData.product.ID,
		StartDate: &start,
	})
	s.NoError(err)

	s.Equal(s.testData.plan.ID, resp.PaymentPlanID)
	s.Len(resp.Schedules, 7)
	s.True(resp.RequiresImmediatePayment)
	s.NotNil(resp.DepositAmount)
	s.True(resp.DepositAmount.Equal(decimal.NewFromInt(300)))
	s.NotNil(resp.ImmediateAmount)
	s.True(resp.ImmediateAmount.Equal(decimal.NewFromInt(300)))

	// The enrollment points at its earliest pending line
	enr, err := s.GetStores().EnrollmentRepo.Get(s.GetContext(), resp.ID)
	s.NoError(err)
	s.NotNil(enr.NextPaymentDate)
	s.Equal(types.EnrollmentStatusPendingPayment, enr.EnrollmentStatus)
	s.Equal(types.EnrollmentPaymentStatusPending, enr.PaymentStatus)
}

func (s *EnrollmentServiceSuite) TestEnrollRollsBackOnScheduleFailure() {
	s.GetStores().ScheduleRepo.CreateBulkErr = ierr.NewError("disk full").
		WithHint("Failed to create payment schedules").
		Mark(ierr.ErrDatabase)

	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:         "user_1",
		ProductID:      s.testData.product.ID,
		IdempotencyKey: "idem_rollback",
	})
	s.Error(err)
	s.Nil(resp)

	// No partial state: neither the enrollment nor any schedule is visible
	_, err = s.GetStores().EnrollmentRepo.GetByIdempotencyKey(s.GetContext(), "idem_rollback")
	s.True(ierr.IsNotFound(err))

	// A retry with the same key succeeds once the failure clears
	s.GetStores().ScheduleRepo.CreateBulkErr = nil
	resp, err = s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:         "user_1",
		ProductID:      s.testData.product.ID,
		IdempotencyKey: "idem_rollback",
	})
	s.NoError(err)
	s.NotNil(resp)
}

func (s *EnrollmentServiceSuite) TestEnrollRollsBackWhenNextPaymentDateWriteFails() {
	s.GetStores().EnrollmentRepo.UpdateErr = ierr.NewError("connection reset").
		WithHint("Failed to update enrollment").
		Mark(ierr.ErrDatabase)

	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:         "user_1",
		ProductID:      s.testData.product.ID,
		IdempotencyKey: "idem_next_date",
	})
	s.Error(err)
	s.Nil(resp)

	// The stored state never disagrees with the response: the enrollment and
	// its schedules were compensated away
	_, err = s.GetStores().EnrollmentRepo.GetByIdempotencyKey(s.GetContext(), "idem_next_date")
	s.True(ierr.IsNotFound(err))

	s.GetStores().EnrollmentRepo.UpdateErr = nil
	resp, err = s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:         "user_1",
		ProductID:      s.testData.product.ID,
		IdempotencyKey: "idem_next_date",
	})
	s.NoError(err)
	s.NotNil(resp)
}

func (s *EnrollmentServiceSuite) TestEnrollSurvivesGatewayFailure() {
	s.GetGateway().FailPaymentIntents = true

	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:    "user_1",
		ProductID: s.testData.product.ID,
	})
	s.NoError(err)
	s.NotNil(resp)

	// Enrollment stands, schedule stays pending, no gateway handle returned
	s.Empty(resp.ClientSecret)
	s.Empty(resp.PaymentIntentID)

	schedules, err := s.GetStores().ScheduleRepo.ListByEnrollmentID(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Len(schedules, 1)
	s.Equal(types.ScheduleStatusPending, schedules[0].ScheduleStatus)
}

func (s *EnrollmentServiceSuite) TestEnrollDeduplicatesByIdempotencyKey() {
	req := &dto.EnrollRequest{
		UserID:         "user_1",
		ProductID:      s.testData.product.ID,
		IdempotencyKey: "idem_dup",
	}

	first, err := s.service.Enroll(s.GetContext(), req)
	s.NoError(err)

	second, err := s.service.Enroll(s.GetContext(), req)
	s.NoError(err)
	s.Equal(first.ID, second.ID)

	// Only one schedule set was generated
	schedules, err := s.GetStores().ScheduleRepo.ListByEnrollmentID(s.GetContext(), first.ID)
	s.NoError(err)
	s.Len(schedules, 1)
}

func (s *EnrollmentServiceSuite) TestEnrollRejectsInactiveProduct() {
	s.testData.product.Status = types.StatusInactive

	_, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:    "user_1",
		ProductID: s.testData.product.ID,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *EnrollmentServiceSuite) TestEnrollRejectsUnknownProduct() {
	_, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:    "user_1",
		ProductID: "prod_missing",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *EnrollmentServiceSuite) TestEnrollSubscriptionRequestsSetupIntent() {
	sub := &paymentplan.PaymentPlan{
		ID:        "plan_sub",
		Name:      "Monthly subscription",
		PlanType:  types.PlanTypeSubscription,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Add(s.GetContext(), sub))
	s.testData.product.ForcedPaymentPlanID = lo.ToPtr(sub.ID)

	resp, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:    "user_1",
		ProductID: s.testData.product.ID,
	})
	s.NoError(err)
	s.NotEmpty(resp.SetupIntentClientSecret)
	s.Len(s.GetGateway().SetupIntents, 1)
}

func (s *EnrollmentServiceSuite) TestGetEnrollment() {
	created, err := s.service.Enroll(s.GetContext(), &dto.EnrollRequest{
		UserID:    "user_1",
		ProductID: s.testData.product.ID,
	})
	s.NoError(err)

	fetched, err := s.service.GetEnrollment(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, fetched.ID)
	s.Len(fetched.Schedules, 1)
}
