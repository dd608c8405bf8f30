package v1

import (
	"net/http"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/service"
	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollmentService   service.EnrollmentService
	cancellationService service.CancellationService
	paymentService      service.PaymentService
	logger              *logger.Logger
}

func NewEnrollmentHandler(
	enrollmentService service.EnrollmentService,
	cancellationService service.CancellationService,
	paymentService service.PaymentService,
	logger *logger.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService:   enrollmentService,
		cancellationService: cancellationService,
		paymentService:      paymentService,
		logger:              logger,
	}
}

// @Summary Enroll a learner into a product
// @Description Resolves the payment plan, creates the enrollment and generates its payment schedule
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param enrollment body dto.EnrollRequest true "Enrollment request"
// @Success 201 {object} dto.EnrollmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.enrollmentService.Enroll(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary Get an enrollment by ID
// @Description Retrieves an enrollment with its plan and schedules
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} dto.EnrollmentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("enrollment ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.enrollmentService.GetEnrollment(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Cancel an enrollment
// @Description Cancels the enrollment and its open schedules, optionally refunding through the gateway
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param cancellation body dto.CancelEnrollmentRequest true "Cancellation request"
// @Success 200 {object} dto.EnrollmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /enrollments/{id}/cancel [post]
func (h *EnrollmentHandler) CancelEnrollment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("enrollment ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.CancelEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.cancellationService.CancelEnrollment(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List payments of an enrollment
// @Description Lists all recorded payments for an enrollment
// @Tags Payments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /enrollments/{id}/payments [get]
func (h *EnrollmentHandler) ListPayments(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("enrollment ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.paymentService.ListPayments(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
