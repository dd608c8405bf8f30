package service

import (
	"strings"

	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/product"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ruleEvaluator evaluates a plan's auto-detection rule set against a product
// and user context. All rules must match (logical AND); an empty rule set
// never matches, so a plan with auto-detection enabled but no rules is
// unreachable by auto-detection.
type ruleEvaluator struct {
	logger *logger.Logger
}

func newRuleEvaluator(log *logger.Logger) *ruleEvaluator {
	return &ruleEvaluator{logger: log}
}

type conditionFn func(rule paymentplan.AutoDetectRule, prod *product.Product, userCtx types.UserContext) bool

// conditionEvaluators dispatches on rule condition. Adding a condition means
// adding an entry here; unknown conditions evaluate to false and are logged,
// never raised.
var conditionEvaluators = map[types.RuleCondition]conditionFn{
	types.RuleConditionPriceRange:  evaluatePriceRange,
	types.RuleConditionProductType: evaluateProductType,
	types.RuleConditionMetadata:    evaluateMetadata,
	types.RuleConditionUserSegment: evaluateUserSegment,
}

func (e *ruleEvaluator) matches(rules paymentplan.AutoDetectRules, prod *product.Product, userCtx types.UserContext) bool {
	if len(rules) == 0 {
		return false
	}

	for _, rule := range rules {
		evaluate, ok := conditionEvaluators[rule.Condition]
		if !ok {
			e.logger.Warnw("unknown rule condition, treating as no match",
				"condition", rule.Condition,
				"product_id", prod.ID,
			)
			return false
		}
		if !evaluate(rule, prod, userCtx) {
			return false
		}
	}

	return true
}

func evaluatePriceRange(rule paymentplan.AutoDetectRule, prod *product.Product, _ types.UserContext) bool {
	price := prod.Price

	switch rule.Operator {
	case types.RuleOperatorEquals:
		value, err := decimal.NewFromString(rule.Value)
		if err != nil {
			return false
		}
		return price.Equal(value)
	case types.RuleOperatorGreaterThan:
		value, err := decimal.NewFromString(rule.Value)
		if err != nil {
			return false
		}
		return price.GreaterThan(value)
	case types.RuleOperatorLessThan:
		value, err := decimal.NewFromString(rule.Value)
		if err != nil {
			return false
		}
		return price.LessThan(value)
	case types.RuleOperatorBetween:
		// Inclusive bounds; a nil max means unbounded
		min := decimal.Zero
		if rule.Min != nil {
			min = *rule.Min
		}
		if price.LessThan(min) {
			return false
		}
		if rule.Max != nil && price.GreaterThan(*rule.Max) {
			return false
		}
		return true
	default:
		return false
	}
}

func evaluateProductType(rule paymentplan.AutoDetectRule, prod *product.Product, _ types.UserContext) bool {
	switch rule.Operator {
	case types.RuleOperatorEquals:
		return prod.ProductType == rule.Value
	case types.RuleOperatorIn:
		return lo.Contains(rule.Values, prod.ProductType)
	case types.RuleOperatorNotIn:
		return !lo.Contains(rule.Values, prod.ProductType)
	default:
		return false
	}
}

func evaluateMetadata(rule paymentplan.AutoDetectRule, prod *product.Product, _ types.UserContext) bool {
	value, ok := prod.Metadata[rule.Field]
	if !ok {
		return false
	}

	switch rule.Operator {
	case types.RuleOperatorEquals:
		return value == rule.Value
	case types.RuleOperatorIn:
		return lo.Contains(rule.Values, value)
	case types.RuleOperatorNotIn:
		return !lo.Contains(rule.Values, value)
	case types.RuleOperatorContains:
		return strings.Contains(value, rule.Value)
	default:
		return false
	}
}

func evaluateUserSegment(rule paymentplan.AutoDetectRule, _ *product.Product, userCtx types.UserContext) bool {
	// Segment takes precedence over role when both are present
	value := userCtx.Get(types.UserContextSegment)
	if value == "" {
		value = userCtx.Get(types.UserContextRole)
	}
	if value == "" {
		return false
	}

	switch rule.Operator {
	case types.RuleOperatorEquals:
		return value == rule.Value
	case types.RuleOperatorIn:
		return lo.Contains(rule.Values, value)
	case types.RuleOperatorNotIn:
		return !lo.Contains(rule.Values, value)
	default:
		return false
	}
}
