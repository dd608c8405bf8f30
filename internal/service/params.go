package service

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/config"
	"github.com/enrollpay/enrollpay/internal/domain/enrollment"
	"github.com/enrollpay/enrollpay/internal/domain/payment"
	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/product"
	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	"github.com/enrollpay/enrollpay/internal/gateway"
	"github.com/enrollpay/enrollpay/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	ProductRepo    product.Repository
	PlanRepo       paymentplan.Repository
	EnrollmentRepo enrollment.Repository
	ScheduleRepo   schedule.Repository
	PaymentRepo    payment.Repository

	// External collaborators
	Gateway gateway.Gateway
}

// GatewayContext bounds an outbound gateway call with the configured timeout.
// A timed-out call follows the same soft-failure path as any other gateway
// error on the enroll and cancel paths.
func (p ServiceParams) GatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := 15 * time.Second
	if p.Config != nil && p.Config.Gateway.Timeout > 0 {
		timeout = p.Config.Gateway.Timeout
	}
	return context.WithTimeout(ctx, timeout)
}
