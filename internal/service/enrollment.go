package service

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	"github.com/enrollpay/enrollpay/internal/domain/enrollment"
	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/gateway"
	"github.com/enrollpay/enrollpay/internal/idempotency"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// EnrollmentService creates enrollments and converts the resolved plan into a
// persisted payment schedule. Creation is a multi-step write without a native
// transaction: a failure after the enrollment insert triggers a compensating
// delete so a partial state (enrollment without schedules) is never visible.
type EnrollmentService interface {
	Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	GetEnrollment(ctx context.Context, id string) (*dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	ServiceParams
	resolver  PlanResolverService
	generator ScheduleGeneratorService
	idempGen  *idempotency.Generator
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(params ServiceParams) EnrollmentService {
	return &enrollmentService{
		ServiceParams: params,
		resolver:      NewPlanResolverService(params),
		generator:     NewScheduleGeneratorService(),
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Explicit idempotency keys dedupe duplicate requests
	if req.IdempotencyKey != "" {
		existing, err := s.EnrollmentRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			s.Logger.Infow("returning existing enrollment for idempotency key",
				"enrollment_id", existing.ID,
				"idempotency_key", req.IdempotencyKey,
			)
			return s.buildResponse(ctx, existing, nil)
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	// 1. Load and validate the product
	prod, err := s.ProductRepo.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.IsActive() {
		return nil, ierr.NewError("product is not active").
			WithHintf("Product %s cannot be enrolled into", prod.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	// 2. Resolve the payment plan. A nil plan is a valid outcome: the product
	// carries no plan references and no auto-detect rule matched, in which
	// case the full amount is collected up front.
	plan, err := s.resolver.Resolve(ctx, prod, req.UserContext)
	if err != nil {
		return nil, err
	}
	effectivePlan := plan
	if effectivePlan == nil {
		effectivePlan = fallbackPlan()
	}

	totalAmount := prod.Price.Round(2)
	now := time.Now().UTC()
	startDate := now
	if req.StartDate != nil {
		startDate = req.StartDate.UTC()
	}

	// 3. Compute immediate-payment requirements before any write
	requiresImmediate := effectivePlan.PlanType.RequiresImmediatePayment()
	var depositAmount *decimal.Decimal
	if effectivePlan.PlanType == types.PlanTypeDeposit {
		deposit, err := s.generator.DepositAmount(effectivePlan, totalAmount)
		if err != nil {
			return nil, err
		}
		depositAmount = &deposit
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = s.idempGen.GenerateKey(idempotency.ScopeEnrollment, map[string]interface{}{
			"user_id":    req.UserID,
			"product_id": req.ProductID,
			"timestamp":  now.Format(time.RFC3339Nano),
		})
	}

	// 4. Insert the enrollment
	enr := &enrollment.Enrollment{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ENROLLMENT),
		UserID:           req.UserID,
		ProductID:        prod.ID,
		PaymentPlanID:    planID(plan),
		TotalAmount:      totalAmount,
		PaidAmount:       decimal.Zero,
		Currency:         prod.Currency,
		PaymentStatus:    types.EnrollmentPaymentStatusPending,
		EnrollmentStatus: types.EnrollmentStatusPendingPayment,
		PaymentMetadata:  types.Metadata{},
		IdempotencyKey:   idempotencyKey,
		Version:          1,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	if err := enr.Validate(); err != nil {
		return nil, err
	}
	if err := s.EnrollmentRepo.Create(ctx, enr); err != nil {
		return nil, err
	}

	// 5. Generate and insert the schedule. There is no multi-statement
	// transaction, so a failure here compensates by deleting any partially
	// inserted schedules and the enrollment itself.
	schedules, err := s.generator.Generate(ctx, enr.ID, effectivePlan, totalAmount, prod.Currency, startDate, now)
	if err == nil {
		err = s.ScheduleRepo.CreateBulk(ctx, schedules)
	}
	if err != nil {
		s.compensate(ctx, enr.ID)
		return nil, ierr.WithError(err).
			WithHint("Unable to create the payment schedule").
			Mark(ierr.ErrDatabase)
	}

	// 6. Point the enrollment at its earliest pending schedule. This is a
	// local write, not a gateway call: a failure here compensates like step 5
	// rather than returning an enrollment whose stored state disagrees with
	// the response.
	if next := earliestPending(schedules); next != nil {
		enr.NextPaymentDate = &next.ScheduledDate
		if err := s.EnrollmentRepo.Update(ctx, enr); err != nil {
			s.compensate(ctx, enr.ID)
			return nil, ierr.WithError(err).
				WithHint("Unable to finalize the enrollment").
				Mark(ierr.ErrDatabase)
		}
	}

	resp, err := s.buildResponseFromParts(enr, plan, schedules)
	if err != nil {
		return nil, err
	}
	resp.RequiresImmediatePayment = requiresImmediate
	resp.DepositAmount = depositAmount

	// 7. Request gateway intents for the immediate charge. Gateway failure is
	// non-fatal: the enrollment stands and the schedule stays pending for
	// later manual processing.
	if requiresImmediate && s.Gateway != nil {
		s.requestImmediatePayment(ctx, enr, effectivePlan, schedules, depositAmount, resp)
	}

	return resp, nil
}

func (s *enrollmentService) GetEnrollment(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	enr, err := s.EnrollmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, enr, nil)
}

// compensate undoes a partially created enrollment. Both deletes are
// best-effort in themselves but logged loudly when they fail, because a
// failure here is what leaves the partial state the compensation exists to
// prevent.
func (s *enrollmentService) compensate(ctx context.Context, enrollmentID string) {
	if err := s.ScheduleRepo.DeleteByEnrollmentID(ctx, enrollmentID); err != nil {
		s.Logger.Errorw("rollback: failed to delete partial schedules",
			"enrollment_id", enrollmentID,
			"error", err,
		)
	}
	if err := s.EnrollmentRepo.Delete(ctx, enrollmentID); err != nil {
		s.Logger.Errorw("rollback: failed to delete enrollment",
			"enrollment_id", enrollmentID,
			"error", err,
		)
		return
	}
	s.Logger.Infow("rolled back enrollment after schedule creation failure",
		"enrollment_id", enrollmentID,
	)
}

// requestImmediatePayment maps the plan type to the schedule line that must be
// charged now and asks the gateway for a payment intent. For subscription
// plans a setup intent is requested as well so the gateway can charge later
// periods off-session.
func (s *enrollmentService) requestImmediatePayment(ctx context.Context, enr *enrollment.Enrollment, plan *paymentplan.PaymentPlan, schedules []*schedule.PaymentSchedule, depositAmount *decimal.Decimal, resp *dto.EnrollmentResponse) {
	target := immediateSchedule(plan.PlanType, schedules)
	if target == nil {
		s.Logger.Errorw("no schedule line found for immediate payment",
			"enrollment_id", enr.ID,
			"plan_type", plan.PlanType,
		)
		return
	}

	amount := target.Amount
	if plan.PlanType == types.PlanTypeDeposit && depositAmount != nil {
		amount = *depositAmount
	}
	resp.ImmediateAmount = &amount

	gwCtx, cancel := s.GatewayContext(ctx)
	defer cancel()

	intent, err := s.Gateway.CreatePaymentIntent(gwCtx, &gateway.PaymentIntentRequest{
		EnrollmentID: enr.ID,
		ScheduleID:   target.ID,
		Amount:       amount,
		Currency:     enr.Currency,
		PaymentType:  target.PaymentType,
		Metadata: types.Metadata{
			"user_id":    enr.UserID,
			"product_id": enr.ProductID,
		},
	})
	if err != nil {
		s.Logger.Errorw("gateway payment intent failed, enrollment stands",
			"enrollment_id", enr.ID,
			"schedule_id", target.ID,
			"error", err,
		)
	} else {
		resp.ClientSecret = intent.ClientSecret
		resp.PaymentIntentID = intent.PaymentIntentID
	}

	if plan.PlanType == types.PlanTypeSubscription {
		setupCtx, cancelSetup := s.GatewayContext(ctx)
		defer cancelSetup()

		setup, err := s.Gateway.CreateSetupIntent(setupCtx, &gateway.SetupIntentRequest{
			EnrollmentID: enr.ID,
			Metadata:     types.Metadata{"user_id": enr.UserID},
		})
		if err != nil {
			s.Logger.Errorw("gateway setup intent failed, enrollment stands",
				"enrollment_id", enr.ID,
				"error", err,
			)
		} else {
			resp.SetupIntentClientSecret = setup.ClientSecret
		}
	}
}

func (s *enrollmentService) buildResponse(ctx context.Context, enr *enrollment.Enrollment, plan *paymentplan.PaymentPlan) (*dto.EnrollmentResponse, error) {
	schedules, err := s.ScheduleRepo.ListByEnrollmentID(ctx, enr.ID)
	if err != nil {
		return nil, err
	}
	if plan == nil && enr.PaymentPlanID != "" {
		plan, _ = s.PlanRepo.Get(ctx, enr.PaymentPlanID)
	}
	return s.buildResponseFromParts(enr, plan, schedules)
}

func (s *enrollmentService) buildResponseFromParts(enr *enrollment.Enrollment, plan *paymentplan.PaymentPlan, schedules []*schedule.PaymentSchedule) (*dto.EnrollmentResponse, error) {
	resp := dto.NewEnrollmentResponse(enr)
	resp.Plan = dto.NewPlanSummary(plan)
	resp.Schedules = dto.NewScheduleResponseList(schedules)
	return resp, nil
}

// fallbackPlan is the synthetic one-time plan used when resolution finds
// nothing; the full amount is collected up front and no plan id is recorded.
func fallbackPlan() *paymentplan.PaymentPlan {
	return &paymentplan.PaymentPlan{
		Name:     "one-time (fallback)",
		PlanType: types.PlanTypeOneTime,
	}
}

func planID(plan *paymentplan.PaymentPlan) string {
	if plan == nil {
		return ""
	}
	return plan.ID
}

// immediateSchedule maps a plan type to the line charged at enrollment time
func immediateSchedule(planType types.PlanType, schedules []*schedule.PaymentSchedule) *schedule.PaymentSchedule {
	for _, line := range schedules {
		switch planType {
		case types.PlanTypeOneTime:
			if line.PaymentType == types.SchedulePaymentTypeFull {
				return line
			}
		case types.PlanTypeDeposit:
			if line.PaymentType == types.SchedulePaymentTypeDeposit {
				return line
			}
		case types.PlanTypeInstallments, types.PlanTypeSubscription:
			if line.PaymentNumber == 1 {
				return line
			}
		}
	}
	return nil
}

func earliestPending(schedules []*schedule.PaymentSchedule) *schedule.PaymentSchedule {
	var earliest *schedule.PaymentSchedule
	for _, line := range schedules {
		if line.ScheduleStatus != types.ScheduleStatusPending {
			continue
		}
		if earliest == nil || line.ScheduledDate.Before(earliest.ScheduledDate) {
			earliest = line
		}
	}
	return earliest
}
