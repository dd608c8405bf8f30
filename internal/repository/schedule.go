package repository

import (
	"context"
	"errors"
	"time"

	"github.com/enrollpay/enrollpay/internal/domain/schedule"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/types"
	"gorm.io/gorm"
)

type scheduleRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewScheduleRepository creates a new postgres-backed schedule repository
func NewScheduleRepository(db *gorm.DB, log *logger.Logger) schedule.Repository {
	return &scheduleRepository{db: db, logger: log}
}

func (r *scheduleRepository) Create(ctx context.Context, s *schedule.PaymentSchedule) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment schedule").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *scheduleRepository) CreateBulk(ctx context.Context, schedules []*schedule.PaymentSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&schedules).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment schedules").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *scheduleRepository) Get(ctx context.Context, id string) (*schedule.PaymentSchedule, error) {
	var s schedule.PaymentSchedule
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("schedule not found").
				WithHintf("Schedule %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment schedule").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *scheduleRepository) Update(ctx context.Context, s *schedule.PaymentSchedule) error {
	currentVersion := s.Version
	s.Version++

	result := r.db.WithContext(ctx).
		Model(&schedule.PaymentSchedule{}).
		Where("id = ? AND tenant_id = ? AND version = ?", s.ID, types.GetTenantID(ctx), currentVersion).
		Select("*").
		Updates(s)
	if result.Error != nil {
		s.Version = currentVersion
		return ierr.WithError(result.Error).
			WithHint("Failed to update payment schedule").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		s.Version = currentVersion
		return ierr.NewError("schedule was modified concurrently").
			WithHintf("Schedule %s was updated by another request, retry", s.ID).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}

func (r *scheduleRepository) DeleteByEnrollmentID(ctx context.Context, enrollmentID string) error {
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND tenant_id = ?", enrollmentID, types.GetTenantID(ctx)).
		Delete(&schedule.PaymentSchedule{}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete payment schedules").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *scheduleRepository) ListByEnrollmentID(ctx context.Context, enrollmentID string, statuses ...types.ScheduleStatus) ([]*schedule.PaymentSchedule, error) {
	query := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND tenant_id = ?", enrollmentID, types.GetTenantID(ctx))
	if len(statuses) > 0 {
		query = query.Where("schedule_status IN ?", statuses)
	}

	var schedules []*schedule.PaymentSchedule
	err := query.Order("payment_number ASC").Find(&schedules).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payment schedules").
			Mark(ierr.ErrDatabase)
	}
	return schedules, nil
}

func (r *scheduleRepository) ListPendingBefore(ctx context.Context, before time.Time) ([]*schedule.PaymentSchedule, error) {
	var schedules []*schedule.PaymentSchedule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND schedule_status = ? AND scheduled_date < ?",
			types.GetTenantID(ctx), types.ScheduleStatusPending, before).
		Order("scheduled_date ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pending payment schedules").
			Mark(ierr.ErrDatabase)
	}
	return schedules, nil
}
