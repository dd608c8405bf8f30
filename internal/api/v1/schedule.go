package v1

import (
	"net/http"
	"time"

	"github.com/enrollpay/enrollpay/internal/api/dto"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/service"
	"github.com/enrollpay/enrollpay/internal/types"
	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	scheduleService service.ScheduleService
	paymentService  service.PaymentService
	logger          *logger.Logger
}

func NewScheduleHandler(
	scheduleService service.ScheduleService,
	paymentService service.PaymentService,
	logger *logger.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		paymentService:  paymentService,
		logger:          logger,
	}
}

// @Summary Get a schedule line by ID
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("schedule ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.scheduleService.GetSchedule(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List schedules of an enrollment
// @Description Lists the enrollment's schedule lines, optionally filtered by status
// @Tags Schedules
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param status query string false "Schedule status filter"
// @Success 200 {array} dto.ScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /enrollments/{id}/schedules [get]
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("enrollment ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var statuses []types.ScheduleStatus
	if status := c.Query("status"); status != "" {
		s := types.ScheduleStatus(status)
		if err := s.Validate(); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid schedule status filter").
				Mark(ierr.ErrValidation))
			return
		}
		statuses = append(statuses, s)
	}

	response, err := h.scheduleService.ListSchedules(c.Request.Context(), id, statuses...)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Adjust a schedule's due date
// @Description Moves the effective due date and appends to the adjustment audit trail
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param adjustment body dto.AdjustScheduleDateRequest true "Date adjustment"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /schedules/{id}/date [put]
func (h *ScheduleHandler) AdjustDate(c *gin.Context) {
	id := c.Param("id")
	var req dto.AdjustScheduleDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.scheduleService.AdjustDate(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Pause a schedule line
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param pause body dto.PauseScheduleRequest true "Pause request"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /schedules/{id}/pause [post]
func (h *ScheduleHandler) Pause(c *gin.Context) {
	id := c.Param("id")
	var req dto.PauseScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.scheduleService.Pause(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Resume a paused schedule line
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /schedules/{id}/resume [post]
func (h *ScheduleHandler) Resume(c *gin.Context) {
	response, err := h.scheduleService.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Retry a failed schedule line
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /schedules/{id}/retry [post]
func (h *ScheduleHandler) Retry(c *gin.Context) {
	response, err := h.scheduleService.Retry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Record a payment failure for a schedule line
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param failure body dto.RecordFailureRequest true "Failure details"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /schedules/{id}/failure [post]
func (h *ScheduleHandler) RecordFailure(c *gin.Context) {
	id := c.Param("id")
	var req dto.RecordFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.scheduleService.RecordFailure(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Delay a set of schedules by a number of days
// @Description Applies the delay per schedule and reports successes and failures explicitly
// @Tags Schedules
// @Accept json
// @Produce json
// @Param delay body dto.BulkDelayRequest true "Bulk delay request"
// @Success 200 {object} dto.BulkDelayResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /schedules/bulk-delay [post]
func (h *ScheduleHandler) BulkDelay(c *gin.Context) {
	var req dto.BulkDelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.scheduleService.BulkDelay(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Mark overdue schedules
// @Description Flips pending schedules whose due date has passed to overdue
// @Tags Schedules
// @Produce json
// @Param as_of query string false "Cutoff time (RFC3339), defaults to now"
// @Success 200 {object} map[string]int
// @Failure 400 {object} ierr.ErrorResponse
// @Router /schedules/mark-overdue [post]
func (h *ScheduleHandler) MarkOverdue(c *gin.Context) {
	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("as_of must be a valid RFC3339 timestamp").
				Mark(ierr.ErrValidation))
			return
		}
		asOf = parsed
	}

	marked, err := h.scheduleService.MarkOverdue(c.Request.Context(), asOf)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// @Summary Record a payment against a schedule line
// @Description Records a completed payment and rolls the amount into the enrollment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /schedules/{id}/payments [post]
func (h *ScheduleHandler) RecordPayment(c *gin.Context) {
	id := c.Param("id")
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.paymentService.RecordPayment(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}
