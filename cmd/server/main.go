package main

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/api"
	v1 "github.com/enrollpay/enrollpay/internal/api/v1"
	"github.com/enrollpay/enrollpay/internal/config"
	"github.com/enrollpay/enrollpay/internal/gateway"
	stripegw "github.com/enrollpay/enrollpay/internal/gateway/stripe"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/postgres"
	"github.com/enrollpay/enrollpay/internal/repository"
	"github.com/enrollpay/enrollpay/internal/service"
	"github.com/enrollpay/enrollpay/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title EnrollPay API
// @version 1.0
// @description Payment plan resolution and schedule engine
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewClient,

			// Payment gateway
			provideGateway,

			// Repositories
			repository.NewProductRepository,
			repository.NewPaymentPlanRepository,
			repository.NewEnrollmentRepository,
			repository.NewScheduleRepository,
			repository.NewPaymentRepository,

			// Services. The enrollment service builds its own plan resolver
			// and schedule generator from the shared params.
			service.NewServiceParams,
			service.NewEnrollmentService,
			service.NewPaymentService,
			service.NewScheduleService,
			service.NewCancellationService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

// provideGateway wires the Stripe gateway when a secret key is configured.
// Without one the engine runs gateway-less; immediate payments and refunds
// are skipped with a log line.
func provideGateway(cfg *config.Configuration, log *logger.Logger) gateway.Gateway {
	if cfg.Stripe.SecretKey == "" {
		log.Warn("no stripe secret key configured, running without a payment gateway")
		return nil
	}

	gw, err := stripegw.NewClient(cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize stripe gateway: %v", err)
	}
	return gw
}

func provideHandlers(
	logger *logger.Logger,
	enrollmentService service.EnrollmentService,
	cancellationService service.CancellationService,
	scheduleService service.ScheduleService,
	paymentService service.PaymentService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(logger),
		Enrollment: v1.NewEnrollmentHandler(enrollmentService, cancellationService, paymentService, logger),
		Schedule:   v1.NewScheduleHandler(scheduleService, paymentService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("starting API server on %s", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
