package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/gateway"
	"github.com/shopspring/decimal"
)

// RefundCall records one refund request seen by the fake gateway
type RefundCall struct {
	TransactionRef string
	Amount         decimal.Decimal
	Reason         string
}

// FakeGateway implements gateway.Gateway for tests, recording every call and
// optionally failing on demand
type FakeGateway struct {
	mu sync.Mutex

	PaymentIntents []*gateway.PaymentIntentRequest
	SetupIntents   []*gateway.SetupIntentRequest
	Refunds        []RefundCall

	FailPaymentIntents bool
	FailSetupIntents   bool
	FailRefunds        bool
}

// NewFakeGateway creates a new fake gateway
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) CreatePaymentIntent(ctx context.Context, req *gateway.PaymentIntentRequest) (*gateway.PaymentIntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailPaymentIntents {
		return nil, ierr.NewError("gateway unavailable").
			WithHint("Unable to prepare the payment with the gateway").
			Mark(ierr.ErrGateway)
	}

	g.PaymentIntents = append(g.PaymentIntents, req)
	n := len(g.PaymentIntents)
	return &gateway.PaymentIntentResult{
		ClientSecret:    fmt.Sprintf("pi_secret_%d", n),
		PaymentIntentID: fmt.Sprintf("pi_%d", n),
	}, nil
}

func (g *FakeGateway) CreateSetupIntent(ctx context.Context, req *gateway.SetupIntentRequest) (*gateway.SetupIntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailSetupIntents {
		return nil, ierr.NewError("gateway unavailable").
			WithHint("Unable to prepare the payment method with the gateway").
			Mark(ierr.ErrGateway)
	}

	g.SetupIntents = append(g.SetupIntents, req)
	n := len(g.SetupIntents)
	return &gateway.SetupIntentResult{
		ClientSecret:  fmt.Sprintf("seti_secret_%d", n),
		SetupIntentID: fmt.Sprintf("seti_%d", n),
	}, nil
}

func (g *FakeGateway) Refund(ctx context.Context, transactionRef string, amount decimal.Decimal, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailRefunds {
		return ierr.NewError("gateway unavailable").
			WithHint("Unable to issue the refund with the gateway").
			Mark(ierr.ErrGateway)
	}

	g.Refunds = append(g.Refunds, RefundCall{
		TransactionRef: transactionRef,
		Amount:         amount,
		Reason:         reason,
	})
	return nil
}
