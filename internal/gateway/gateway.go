package gateway

import (
	"context"

	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentIntentRequest asks the gateway to prepare an immediate charge for an
// enrollment, optionally tied to a specific schedule line.
type PaymentIntentRequest struct {
	EnrollmentID string
	ScheduleID   string
	Amount       decimal.Decimal
	Currency     string
	PaymentType  types.SchedulePaymentType
	Metadata     types.Metadata
}

// PaymentIntentResult is the gateway's handle for a prepared charge
type PaymentIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
}

// SetupIntentRequest asks the gateway to prepare a payment method for later
// off-session charges (subscription renewals are the gateway's responsibility).
type SetupIntentRequest struct {
	EnrollmentID string
	Metadata     types.Metadata
}

// SetupIntentResult is the gateway's handle for a prepared payment method
type SetupIntentResult struct {
	ClientSecret  string
	SetupIntentID string
}

// Gateway is the contract this engine expects from the external payment
// gateway. Calls are synchronous and single-attempt; the caller bounds them
// with a timeout and treats every failure on the enroll and cancel paths as a
// soft failure (logged, local operation proceeds).
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResult, error)
	CreateSetupIntent(ctx context.Context, req *SetupIntentRequest) (*SetupIntentResult, error)
	Refund(ctx context.Context, transactionRef string, amount decimal.Decimal, reason string) error
}
