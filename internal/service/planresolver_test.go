package service

import (
	"testing"

	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/product"
	"github.com/enrollpay/enrollpay/internal/testutil"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PlanResolverSuite struct {
	testutil.BaseServiceTestSuite
	resolver PlanResolverService
}

func TestPlanResolver(t *testing.T) {
	suite.Run(t, new(PlanResolverSuite))
}

func (s *PlanResolverSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.resolver = NewPlanResolverService(s.params())
}

func (s *PlanResolverSuite) params() ServiceParams {
	return ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		ProductRepo:    s.GetStores().ProductRepo,
		PlanRepo:       s.GetStores().PlanRepo,
		EnrollmentRepo: s.GetStores().EnrollmentRepo,
		ScheduleRepo:   s.GetStores().ScheduleRepo,
		PaymentRepo:    s.GetStores().PaymentRepo,
	}
}

func (s *PlanResolverSuite) addPlan(plan *paymentplan.PaymentPlan) *paymentplan.PaymentPlan {
	if plan.TenantID == "" {
		plan.BaseModel = types.GetDefaultBaseModel(s.GetContext())
	}
	s.NoError(s.GetStores().PlanRepo.Add(s.GetContext(), plan))
	return plan
}

func (s *PlanResolverSuite) newProduct() *product.Product {
	return &product.Product{
		ID:          "prod_test",
		ProductType: "course",
		Name:        "Go from scratch",
		Price:       decimal.NewFromInt(750),
		Currency:    "USD",
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
}

func (s *PlanResolverSuite) TestForcedPlanWinsOverAutoDetect() {
	forced := s.addPlan(&paymentplan.PaymentPlan{
		ID:       "plan_forced",
		Name:     "Forced",
		PlanType: types.PlanTypeOneTime,
	})
	s.addPlan(&paymentplan.PaymentPlan{
		ID:                "plan_auto",
		Name:              "Auto",
		PlanType:          types.PlanTypeOneTime,
		AutoDetectEnabled: true,
		Priority:          100,
		Rules: paymentplan.AutoDetectRules{
			{Condition: types.RuleConditionProductType, Operator: types.RuleOperatorEquals, Value: "course"},
		},
	})

	prod := s.newProduct()
	prod.ForcedPaymentPlanID = lo.ToPtr(forced.ID)
	prod.AutoAssignPaymentPlan = true

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal("plan_forced", resolved.ID)
}

func (s *PlanResolverSuite) TestInactiveForcedPlanFallsThrough() {
	forced := s.addPlan(&paymentplan.PaymentPlan{
		ID:       "plan_forced_inactive",
		PlanType: types.PlanTypeOneTime,
	})
	forced.Status = types.StatusInactive

	fallback := s.addPlan(&paymentplan.PaymentPlan{
		ID:       "plan_default",
		PlanType: types.PlanTypeOneTime,
	})

	prod := s.newProduct()
	prod.ForcedPaymentPlanID = lo.ToPtr(forced.ID)
	prod.DefaultPaymentPlanID = lo.ToPtr(fallback.ID)

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal("plan_default", resolved.ID)
}

func (s *PlanResolverSuite) TestAutoDetectPriorityOrder() {
	rules := paymentplan.AutoDetectRules{
		{Condition: types.RuleConditionProductType, Operator: types.RuleOperatorEquals, Value: "course"},
	}
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_low", PlanType: types.PlanTypeOneTime,
		AutoDetectEnabled: true, Priority: 5, Rules: rules,
	})
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_high", PlanType: types.PlanTypeOneTime,
		AutoDetectEnabled: true, Priority: 10, Rules: rules,
	})

	prod := s.newProduct()
	prod.AutoAssignPaymentPlan = true

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal("plan_high", resolved.ID)
}

func (s *PlanResolverSuite) TestAutoDetectEqualPriorityBreaksTiesByID() {
	rules := paymentplan.AutoDetectRules{
		{Condition: types.RuleConditionProductType, Operator: types.RuleOperatorEquals, Value: "course"},
	}
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_b", PlanType: types.PlanTypeOneTime,
		AutoDetectEnabled: true, Priority: 10, Rules: rules,
	})
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_a", PlanType: types.PlanTypeOneTime,
		AutoDetectEnabled: true, Priority: 10, Rules: rules,
	})

	prod := s.newProduct()
	prod.AutoAssignPaymentPlan = true

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal("plan_a", resolved.ID)
}

func (s *PlanResolverSuite) TestRulesCombineWithAnd() {
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_and", PlanType: types.PlanTypeOneTime,
		AutoDetectEnabled: true, Priority: 10,
		Rules: paymentplan.AutoDetectRules{
			{Condition: types.RuleConditionProductType, Operator: types.RuleOperatorEquals, Value: "course"},
			{Condition: types.RuleConditionPriceRange, Operator: types.RuleOperatorGreaterThan, Value: "1000"},
		},
	})
	fallback := s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_default", PlanType: types.PlanTypeOneTime,
	})

	// Product type matches but price does not, so the rule set must not match
	prod := s.newProduct()
	prod.AutoAssignPaymentPlan = true
	prod.DefaultPaymentPlanID = lo.ToPtr(fallback.ID)

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal("plan_default", resolved.ID)
}

func (s *PlanResolverSuite) TestEmptyRuleSetNeverMatches() {
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_empty_rules", PlanType: types.PlanTypeOneTime,
		AutoDetectEnabled: true, Priority: 100,
	})

	prod := s.newProduct()
	prod.AutoAssignPaymentPlan = true

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.Nil(resolved)
}

func (s *PlanResolverSuite) TestUserSegmentRule() {
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_students", PlanType: types.PlanTypeInstallments,
		InstallmentCount: 4, InstallmentFrequency: types.InstallmentFrequencyMonthly,
		AutoDetectEnabled: true, Priority: 10,
		Rules: paymentplan.AutoDetectRules{
			{Condition: types.RuleConditionUserSegment, Operator: types.RuleOperatorEquals, Value: "student"},
		},
	})

	prod := s.newProduct()
	prod.AutoAssignPaymentPlan = true

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, types.UserContext{types.UserContextSegment: "student"})
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal("plan_students", resolved.ID)

	resolved, err = s.resolver.Resolve(s.GetContext(), prod, types.UserContext{types.UserContextSegment: "alumni"})
	s.NoError(err)
	s.Nil(resolved)
}

func (s *PlanResolverSuite) TestPriceRangeBetweenInclusive() {
	s.addPlan(&paymentplan.PaymentPlan{
		ID: "plan_range", PlanType: types.PlanTypeOneTime,
		AutoDetectEnabled: true, Priority: 10,
		Rules: paymentplan.AutoDetectRules{
			{
				Condition: types.RuleConditionPriceRange,
				Operator:  types.RuleOperatorBetween,
				Min:       lo.ToPtr(decimal.NewFromInt(750)),
				Max:       lo.ToPtr(decimal.NewFromInt(2000)),
			},
		},
	})

	prod := s.newProduct() // price 750, on the lower bound
	prod.AutoAssignPaymentPlan = true

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.NotNil(resolved)
	s.Equal("plan_range", resolved.ID)
}

func (s *PlanResolverSuite) TestNoPlanResolvesToNil() {
	prod := s.newProduct()

	resolved, err := s.resolver.Resolve(s.GetContext(), prod, nil)
	s.NoError(err)
	s.Nil(resolved)
}
