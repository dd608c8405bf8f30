package repository

import (
	"context"
	"errors"

	"github.com/enrollpay/enrollpay/internal/domain/enrollment"
	ierr "github.com/enrollpay/enrollpay/internal/errors"
	"github.com/enrollpay/enrollpay/internal/logger"
	"github.com/enrollpay/enrollpay/internal/types"
	"gorm.io/gorm"
)

type enrollmentRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewEnrollmentRepository creates a new postgres-backed enrollment repository
func NewEnrollmentRepository(db *gorm.DB, log *logger.Logger) enrollment.Repository {
	return &enrollmentRepository{db: db, logger: log}
}

func (r *enrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("An enrollment with this idempotency key already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create enrollment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *enrollmentRepository) Get(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("enrollment not found").
				WithHintf("Enrollment %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get enrollment").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, e *enrollment.Enrollment) error {
	currentVersion := e.Version
	e.Version++

	result := r.db.WithContext(ctx).
		Model(&enrollment.Enrollment{}).
		Where("id = ? AND tenant_id = ? AND version = ?", e.ID, types.GetTenantID(ctx), currentVersion).
		Select("*").
		Updates(e)
	if result.Error != nil {
		e.Version = currentVersion
		return ierr.WithError(result.Error).
			WithHint("Failed to update enrollment").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		e.Version = currentVersion
		return ierr.NewError("enrollment was modified concurrently").
			WithHintf("Enrollment %s was updated by another request, retry", e.ID).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}

func (r *enrollmentRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		Delete(&enrollment.Enrollment{}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete enrollment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *enrollmentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND tenant_id = ?", key, types.GetTenantID(ctx)).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("enrollment not found").
				WithHint("No enrollment exists for this idempotency key").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up enrollment by idempotency key").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}
