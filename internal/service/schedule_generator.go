package service

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// ScheduleGeneratorService converts a resolved plan and a total amount into an
// ordered list of payment schedule lines. Generation is deterministic given
// identical inputs; the only ambient input is the "now" timestamp used for
// immediate-payment due dates.
type ScheduleGeneratorService interface {
	Generate(ctx context.Context, enrollmentID string, plan *paymentplan.PaymentPlan, totalAmount decimal.Decimal, currency string, startDate, now time.Time) ([]*schedule.PaymentSchedule, error)
	// DepositAmount computes the deposit line amount for a deposit plan
	DepositAmount(plan *paymentplan.PaymentPlan, totalAmount decimal.Decimal) (decimal.Decimal, error)
}

type scheduleGeneratorService struct{}

// NewScheduleGeneratorService creates a new schedule generator
func NewScheduleGeneratorService() ScheduleGeneratorService {
	return &scheduleGeneratorService{}
}

type generateFn func(s *scheduleGeneratorService, in *generateInput) ([]*schedule.PaymentSchedule, error)

type generateInput struct {
	ctx          context.Context
	enrollmentID string
	plan         *paymentplan.PaymentPlan
	totalAmount  decimal.Decimal
	currency     string
	startDate    time.Time
	now          time.Time
}

// planGenerators dispatches on plan type. Adding a plan type means adding an
// entry here; Generate rejects anything the table does not cover.
var planGenerators = map[types.PlanType]generateFn{
	types.PlanTypeOneTime:      (*scheduleGeneratorService).generateOneTime,
	types.PlanTypeDeposit:      (*scheduleGeneratorService).generateDeposit,
	types.PlanTypeInstallments: (*scheduleGeneratorService).generateInstallments,
	types.PlanTypeSubscription: (*scheduleGeneratorService).generateSubscription,
}

func (s *scheduleGeneratorService) Generate(ctx context.Context, enrollmentID string, plan *paymentplan.PaymentPlan, totalAmount decimal.Decimal, currency string, startDate, now time.Time) ([]*schedule.PaymentSchedule, error) {
	if enrollmentID == "" {
		return nil, ierr.NewError("enrollment id is required").
			WithHint("Enrollment id is required").
			Mark(ierr.ErrValidation)
	}
	if totalAmount.IsNegative() {
		return nil, ierr.NewError("total amount must not be negative").
			WithHint("Total amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	generate, ok := planGenerators[plan.PlanType]
	if !ok {
		return nil, ierr.NewError("unsupported plan type").
			WithHintf("Plan type %s is not supported", plan.PlanType).
			Mark(ierr.ErrValidation)
	}

	lines, err := generate(s, &generateInput{
		ctx:          ctx,
		enrollmentID: enrollmentID,
		plan:         plan,
		totalAmount:  totalAmount,
		currency:     currency,
		startDate:    startDate,
		now:          now,
	})
	if err != nil {
		return nil, err
	}

	// No generated line may be persisted invalid; a negative amount here would
	// let a recorded payment decrease the enrollment's paid total.
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func (s *scheduleGeneratorService) DepositAmount(plan *paymentplan.PaymentPlan, totalAmount decimal.Decimal) (decimal.Decimal, error) {
	var deposit decimal.Decimal
	switch plan.DepositType {
	case types.DepositTypePercentage:
		deposit = totalAmount.Mul(plan.DepositValue).Div(decimal.NewFromInt(100)).Round(2)
	case types.DepositTypeFixed:
		deposit = plan.DepositValue.Round(2)
	default:
		return decimal.Zero, ierr.NewError("invalid deposit type").
			WithHint("Deposit type is invalid").
			Mark(ierr.ErrValidation)
	}

	if deposit.GreaterThanOrEqual(totalAmount) {
		return decimal.Zero, ierr.NewError("deposit exceeds total amount").
			WithHintf("Deposit of %s must be less than the total of %s", deposit, totalAmount).
			Mark(ierr.ErrValidation)
	}

	return deposit, nil
}

// generateOneTime produces a single full-amount line due immediately
func (s *scheduleGeneratorService) generateOneTime(in *generateInput) ([]*schedule.PaymentSchedule, error) {
	line := s.newLine(in, 1, types.SchedulePaymentTypeFull, in.totalAmount.Round(2), in.now)
	return []*schedule.PaymentSchedule{line}, nil
}

// generateDeposit produces the deposit line due immediately followed by
// installments over the remaining amount
func (s *scheduleGeneratorService) generateDeposit(in *generateInput) ([]*schedule.PaymentSchedule, error) {
	deposit, err := s.DepositAmount(in.plan, in.totalAmount)
	if err != nil {
		return nil, err
	}

	lines := []*schedule.PaymentSchedule{
		s.newLine(in, 1, types.SchedulePaymentTypeDeposit, deposit, in.now),
	}

	remaining := in.totalAmount.Sub(deposit)
	amounts := splitExact(remaining, in.plan.InstallmentCount)
	for i, amount := range amounts {
		dueDate, err := types.NextInstallmentDate(in.startDate, in.plan.InstallmentFrequency, in.plan.CustomFrequencyDays, i)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Unable to compute the installment due date").
				Mark(ierr.ErrValidation)
		}
		lines = append(lines, s.newLine(in, i+2, types.SchedulePaymentTypeInstallment, amount, dueDate))
	}

	return lines, nil
}

// generateInstallments splits the full amount into equal installments
func (s *scheduleGeneratorService) generateInstallments(in *generateInput) ([]*schedule.PaymentSchedule, error) {
	amounts := splitExact(in.totalAmount, in.plan.InstallmentCount)

	lines := make([]*schedule.PaymentSchedule, 0, len(amounts))
	for i, amount := range amounts {
		dueDate, err := types.NextInstallmentDate(in.startDate, in.plan.InstallmentFrequency, in.plan.CustomFrequencyDays, i)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Unable to compute the installment due date").
				Mark(ierr.ErrValidation)
		}
		lines = append(lines, s.newLine(in, i+1, types.SchedulePaymentTypeInstallment, amount, dueDate))
	}

	return lines, nil
}

// generateSubscription produces the first-period line only; later recurring
// periods are the gateway's responsibility
func (s *scheduleGeneratorService) generateSubscription(in *generateInput) ([]*schedule.PaymentSchedule, error) {
	line := s.newLine(in, 1, types.SchedulePaymentTypeSubscription, in.totalAmount.Round(2), in.now)
	return []*schedule.PaymentSchedule{line}, nil
}

func (s *scheduleGeneratorService) newLine(in *generateInput, number int, paymentType types.SchedulePaymentType, amount decimal.Decimal, dueDate time.Time) *schedule.PaymentSchedule {
	return &schedule.PaymentSchedule{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_SCHEDULE),
		EnrollmentID:    in.enrollmentID,
		PaymentPlanID:   in.plan.ID,
		PaymentNumber:   number,
		PaymentType:     paymentType,
		Amount:          amount,
		Currency:        in.currency,
		OriginalDueDate: dueDate,
		ScheduledDate:   dueDate,
		ScheduleStatus:  types.ScheduleStatusPending,
		Version:         1,
		BaseModel:       types.GetDefaultBaseModel(in.ctx),
	}
}

// splitExact divides amount into count parts rounded to 2 decimal places.
// The base is the division floored to the cent, so no part can go negative;
// the leftover cents are assigned one each to the trailing parts, keeping the
// rounding correction on the last lines and the sum exact.
func splitExact(amount decimal.Decimal, count int) []decimal.Decimal {
	if count <= 0 {
		return nil
	}

	base := amount.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	parts := make([]decimal.Decimal, count)
	for i := range parts {
		parts[i] = base
	}

	cent := decimal.New(1, -2)
	remainder := amount.Sub(base.Mul(decimal.NewFromInt(int64(count))))
	for i := count - 1; i >= 0 && remainder.GreaterThanOrEqual(cent); i-- {
		parts[i] = parts[i].Add(cent)
		remainder = remainder.Sub(cent)
	}
	// A sub-cent residue only exists when amount itself has more than two
	// decimal places; fold it into the last part rather than dropping it.
	if !remainder.IsZero() {
		parts[count-1] = parts[count-1].Add(remainder)
	}

	return parts
}
