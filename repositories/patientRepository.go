package repositories

import (
	"Samagra/cache"
	"Samagra/models"
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PatientCacheExpiry = 24 * time.Hour
)

type PatientRepository struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
}

func NewPatientRepository(db *gorm.DB, cache *cache.Cache, logger *zap.Logger) *PatientRepository {
	return &PatientRepository{db: db, cache: cache, logger: logger}
}

// GetByID returns nil, nil when the patient does not exist.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getPatientCacheKey(id)
	var patient models.Patient
	hit, err := r.cache.GetJSON(ctx, cacheKey, &patient)
	if err != nil {
		r.logger.Warn("failed to get patient from cache", zap.String("id", id), zap.Error(err))
	}
	if hit {
		return &patient, nil
	}

	err = r.db.WithContext(ctx).First(&patient, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get patient")
	}

	if err := r.cache.SetJSON(ctx, cacheKey, patient, PatientCacheExpiry); err != nil {
		r.logger.Warn("failed to set patient in cache", zap.String("id", id), zap.Error(err))
	}
	return &patient, nil
}

// Update writes the given columns and drops the cached copy.
func (r *PatientRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Patient{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update patient")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.cache.Delete(ctx, r.getPatientCacheKey(id))
}

func (r *PatientRepository) getPatientCacheKey(id string) string {
	return fmt.Sprintf("patient_cache:%s", id)
}
