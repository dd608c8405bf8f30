package stripe

import (
	"context"

	"github.com/enrollpay/enrollpay/internal/config"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/gateway"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// Client implements the gateway contract on top of Stripe
type Client struct {
	client *stripe.Client
	logger *logger.Logger
}

// NewClient creates a new Stripe-backed gateway
func NewClient(cfg *config.Configuration, log *logger.Logger) (gateway.Gateway, error) {
	if cfg.Stripe.SecretKey == "" {
		return nil, ierr.NewError("stripe secret key not configured").
			WithHint("Set the Stripe secret key in configuration").
			Mark(ierr.ErrValidation)
	}

	return &Client{
		client: stripe.NewClient(cfg.Stripe.SecretKey, nil),
		logger: log,
	}, nil
}

// CreatePaymentIntent prepares an immediate charge for an enrollment
func (c *Client) CreatePaymentIntent(ctx context.Context, req *gateway.PaymentIntentRequest) (*gateway.PaymentIntentResult, error) {
	metadata := map[string]string{
		"enrollment_id": req.EnrollmentID,
		"payment_type":  req.PaymentType.String(),
	}
	if req.ScheduleID != "" {
		metadata["schedule_id"] = req.ScheduleID
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}

	intent, err := c.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create payment intent",
			"error", err,
			"enrollment_id", req.EnrollmentID,
			"amount", req.Amount.String(),
		)
		return nil, ierr.WithError(err).
			WithHint("Unable to prepare the payment with the gateway").
			Mark(ierr.ErrGateway)
	}

	return &gateway.PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// CreateSetupIntent prepares a payment method for later off-session charges
func (c *Client) CreateSetupIntent(ctx context.Context, req *gateway.SetupIntentRequest) (*gateway.SetupIntentResult, error) {
	metadata := map[string]string{
		"enrollment_id": req.EnrollmentID,
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	params := &stripe.SetupIntentCreateParams{
		Usage:    stripe.String("off_session"),
		Metadata: metadata,
	}

	intent, err := c.client.V1SetupIntents.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create setup intent",
			"error", err,
			"enrollment_id", req.EnrollmentID,
		)
		return nil, ierr.WithError(err).
			WithHint("Unable to prepare the payment method with the gateway").
			Mark(ierr.ErrGateway)
	}

	return &gateway.SetupIntentResult{
		ClientSecret:  intent.ClientSecret,
		SetupIntentID: intent.ID,
	}, nil
}

// Refund refunds a previously completed gateway transaction
func (c *Client) Refund(ctx context.Context, transactionRef string, amount decimal.Decimal, reason string) error {
	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(transactionRef),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if amount.IsPositive() {
		params.Amount = stripe.Int64(toMinorUnits(amount))
	}
	if reason != "" {
		params.Metadata = map[string]string{"cancellation_reason": reason}
	}

	if _, err := c.client.V1Refunds.Create(ctx, params); err != nil {
		c.logger.Errorw("failed to create refund",
			"error", err,
			"transaction_ref", transactionRef,
			"amount", amount.String(),
		)
		return ierr.WithError(err).
			WithHint("Unable to issue the refund with the gateway").
			Mark(ierr.ErrGateway)
	}

	return nil
}

// toMinorUnits converts an exact decimal amount to integer minor units
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
