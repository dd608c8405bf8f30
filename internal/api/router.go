package api

import (
	v1 "github.com/enrollpay/enrollpay/internal/api/v1"
	"github.com/enrollpay/enrollpay/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Enrollment *v1.EnrollmentHandler
	Schedule   *v1.ScheduleHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.TenantContextMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	enrollments := router.Group("/enrollments")
	{
		enrollments.POST("", handlers.Enrollment.Enroll)
		enrollments.GET("/:id", handlers.Enrollment.GetEnrollment)
		enrollments.POST("/:id/cancel", handlers.Enrollment.CancelEnrollment)
		enrollments.GET("/:id/schedules", handlers.Schedule.ListSchedules)
		enrollments.GET("/:id/payments", handlers.Enrollment.ListPayments)
	}

	schedules := router.Group("/schedules")
	{
		schedules.POST("/bulk-delay", handlers.Schedule.BulkDelay)
		schedules.POST("/mark-overdue", handlers.Schedule.MarkOverdue)
		schedules.GET("/:id", handlers.Schedule.GetSchedule)
		schedules.PUT("/:id/date", handlers.Schedule.AdjustDate)
		schedules.POST("/:id/pause", handlers.Schedule.Pause)
		schedules.POST("/:id/resume", handlers.Schedule.Resume)
		schedules.POST("/:id/retry", handlers.Schedule.Retry)
		schedules.POST("/:id/failure", handlers.Schedule.RecordFailure)
		schedules.POST("/:id/payments", handlers.Schedule.RecordPayment)
	}
}
