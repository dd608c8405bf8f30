package service

import (
	"github.com/enrollpay/enrollpay/internal/config"
	"github.com/enrollpay/enrollpay/internal/domain/enrollment"
	"github.com/enrollpay/enrollpay/internal/domain/payment"
	"github.com/enrollpay/enrollpay/internal/domain/paymentplan"
	"github.com/enrollpay/enrollpay/internal/domain/product"
	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	"github.com/enrollpay/enrollpay/internal/gateway"
	"github.com/enrollpay/enrollpay/internal/logger"
)

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	productRepo product.Repository,
	planRepo paymentplan.Repository,
	enrollmentRepo enrollment.Repository,
	scheduleRepo schedule.Repository,
	paymentRepo payment.Repository,
	gateway gateway.Gateway,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		ProductRepo:    productRepo,
		PlanRepo:       planRepo,
		EnrollmentRepo: enrollmentRepo,
		ScheduleRepo:   scheduleRepo,
		PaymentRepo:    paymentRepo,
		Gateway:        gateway,
	}
}
