package product

import (
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// Product identifies a purchasable item (course, program, subscription).
// Products are owned by the catalog collaborator and are read-only to this engine.
type Product struct {
	// Unique identifier for this product
	ID string `json:"id"`
	// The product_type groups products for plan auto-detection (course, program, subscription)
	ProductType string `json:"product_type"`
	// The external_id references the product in the catalog collaborator
	ExternalID string `json:"external_id"`
	// Display name of the product
	Name string `json:"name"`
	// The price is the full amount payable for the product
	Price decimal.Decimal `json:"price"`
	// The currency field uses a three-letter ISO code (USD, EUR, GBP, etc.)
	Currency string `json:"currency"`
	// The forced_payment_plan_id pins plan resolution to a single plan when set
	ForcedPaymentPlanID *string `json:"forced_payment_plan_id,omitempty"`
	// The default_payment_plan_id is the fallback plan when auto-detection finds nothing
	DefaultPaymentPlanID *string `json:"default_payment_plan_id,omitempty"`
	// The auto_assign_payment_plan flag enables rule-based plan auto-detection
	AutoAssignPaymentPlan bool `json:"auto_assign_payment_plan"`
	// The metadata field contains free-form key-value pairs consulted by metadata rules
	Metadata types.Metadata `json:"metadata,omitempty"`

	types.BaseModel
}

// IsActive reports whether the product can be enrolled into
func (p *Product) IsActive() bool {
	return p.Status == types.StatusActive
}

// TableName returns the table name for the product
func (p *Product) TableName() string {
	return "products"
}
