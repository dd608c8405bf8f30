package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsDeterministic(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{
		"user_id":    "user_1",
		"product_id": "prod_course",
	}

	first := g.GenerateKey(ScopeEnrollment, params)
	second := g.GenerateKey(ScopeEnrollment, params)
	assert.Equal(t, first, second)
	assert.Contains(t, first, string(ScopeEnrollment))
}

func TestGenerateKeyIgnoresParamOrder(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopePayment, map[string]interface{}{
		"schedule_id": "sched_1",
		"amount":      "33.33",
	})
	b := g.GenerateKey(ScopePayment, map[string]interface{}{
		"amount":      "33.33",
		"schedule_id": "sched_1",
	})
	assert.Equal(t, a, b)
}

func TestGenerateKeyVariesByScopeAndParams(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{"user_id": "user_1"}

	assert.NotEqual(t,
		g.GenerateKey(ScopeEnrollment, params),
		g.GenerateKey(ScopeRefund, params),
	)
	assert.NotEqual(t,
		g.GenerateKey(ScopeEnrollment, params),
		g.GenerateKey(ScopeEnrollment, map[string]interface{}{"user_id": "user_2"}),
	)
}

func TestValidateKey(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{"user_id": "user_1"}

	key := g.GenerateKey(ScopeEnrollment, params)
	assert.True(t, g.ValidateKey(ScopeEnrollment, params, key))
	assert.False(t, g.ValidateKey(ScopeEnrollment, map[string]interface{}{"user_id": "other"}, key))
}
