package service

import (
	"context"
	"fmt"
	"time"

	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/product"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/patrickmn/go-cache"
)

const (
	autoDetectCacheTTL     = 30 * time.Second
	autoDetectCacheCleanup = 5 * time.Minute
)

// PlanResolverService selects the payment plan for a product/user combination.
// Resolution order: forced plan, then auto-detection, then the product default.
// A nil plan with a nil error is a valid, expected outcome; the caller falls
// back to a plan embedded directly in the product.
type PlanResolverService interface {
	Resolve(ctx context.Context, prod *product.Product, userCtx types.UserContext) (*paymentplan.PaymentPlan, error)
}

type planResolverService struct {
	ServiceParams
	evaluator       *ruleEvaluator
	autoDetectCache *cache.Cache
}

// NewPlanResolverService creates a new plan resolver
func NewPlanResolverService(params ServiceParams) PlanResolverService {
	return &planResolverService{
		ServiceParams:   params,
		evaluator:       newRuleEvaluator(params.Logger),
		autoDetectCache: cache.New(autoDetectCacheTTL, autoDetectCacheCleanup),
	}
}

func (s *planResolverService) Resolve(ctx context.Context, prod *product.Product, userCtx types.UserContext) (*paymentplan.PaymentPlan, error) {
	// 1. Forced plan wins over everything, including matching auto-detect rules
	if prod.ForcedPaymentPlanID != nil && *prod.ForcedPaymentPlanID != "" {
		plan, err := s.PlanRepo.Get(ctx, *prod.ForcedPaymentPlanID)
		if err == nil && plan.IsActive() {
			return plan, nil
		}
		s.Logger.Warnw("forced payment plan not accessible, continuing resolution",
			"product_id", prod.ID,
			"plan_id", *prod.ForcedPaymentPlanID,
			"error", err,
		)
	}

	// 2. Rule-based auto-detection
	if prod.AutoAssignPaymentPlan {
		plans, err := s.listAutoDetectPlans(ctx)
		if err != nil {
			return nil, err
		}
		for _, plan := range plans {
			if s.evaluator.matches(plan.Rules, prod, userCtx) {
				return plan, nil
			}
		}
	}

	// 3. Product default
	if prod.DefaultPaymentPlanID != nil && *prod.DefaultPaymentPlanID != "" {
		plan, err := s.PlanRepo.Get(ctx, *prod.DefaultPaymentPlanID)
		if err == nil && plan.IsActive() {
			return plan, nil
		}
		s.Logger.Warnw("default payment plan not accessible",
			"product_id", prod.ID,
			"plan_id", *prod.DefaultPaymentPlanID,
			"error", err,
		)
	}

	// 4. No plan found; the caller decides what to do
	return nil, nil
}

// listAutoDetectPlans returns the registry's candidate plans, cached per
// tenant for a short TTL. The registry guarantees priority-descending order
// with plan ID ascending as tiebreak.
func (s *planResolverService) listAutoDetectPlans(ctx context.Context) ([]*paymentplan.PaymentPlan, error) {
	cacheKey := fmt.Sprintf("auto_detect_plans:%s", types.GetTenantID(ctx))
	if cached, found := s.autoDetectCache.Get(cacheKey); found {
		return cached.([]*paymentplan.PaymentPlan), nil
	}

	plans, err := s.PlanRepo.ListAutoDetect(ctx)
	if err != nil {
		return nil, err
	}

	s.autoDetectCache.Set(cacheKey, plans, cache.DefaultExpiration)
	return plans, nil
}
