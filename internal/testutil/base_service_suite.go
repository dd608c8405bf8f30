package testutil

import (
	"context"
	"time"

	"github.com/enrollpay/enrollpay/internal/config"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/enrollpay/enrollpay/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	ProductRepo    *InMemoryProductStore
	PlanRepo       *InMemoryPaymentPlanStore
	EnrollmentRepo *InMemoryEnrollmentStore
	ScheduleRepo   *InMemoryScheduleStore
	PaymentRepo    *InMemoryPaymentStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	gateway *FakeGateway
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.gateway = NewFakeGateway()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxTenantID, types.DefaultTenantID)
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		ProductRepo:    NewInMemoryProductStore(),
		PlanRepo:       NewInMemoryPaymentPlanStore(),
		EnrollmentRepo: NewInMemoryEnrollmentStore(),
		ScheduleRepo:   NewInMemoryScheduleStore(),
		PaymentRepo:    NewInMemoryPaymentStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.ProductRepo.Clear()
	s.stores.PlanRepo.Clear()
	s.stores.EnrollmentRepo.Clear()
	s.stores.ScheduleRepo.Clear()
	s.stores.PaymentRepo.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the fake payment gateway
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the timestamp taken at test setup
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
