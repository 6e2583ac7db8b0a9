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
	DoctorCacheExpiry = 7 * 24 * time.Hour
	doctorsCacheKey   = "doctors_cache"
)

type DoctorRepository struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
}

func NewDoctorRepository(db *gorm.DB, cache *cache.Cache, logger *zap.Logger) *DoctorRepository {
	return &DoctorRepository{db: db, cache: cache, logger: logger}
}

// GetByID returns nil, nil when the doctor does not exist.
func (r *DoctorRepository) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getDoctorCacheKey(id)
	var doctor models.Doctor
	hit, err := r.cache.GetJSON(ctx, cacheKey, &doctor)
	if err != nil {
		r.logger.Warn("failed to get doctor from cache", zap.String("id", id), zap.Error(err))
	}
	if hit {
		return &doctor, nil
	}

	err = r.db.WithContext(ctx).First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get doctor")
	}

	if err := r.cache.SetJSON(ctx, cacheKey, doctor, DoctorCacheExpiry); err != nil {
		r.logger.Warn("failed to set doctor in cache", zap.String("id", id), zap.Error(err))
	}
	return &doctor, nil
}

func (r *DoctorRepository) GetAll(ctx context.Context) ([]models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doctors := []models.Doctor{}
	hit, err := r.cache.GetJSON(ctx, doctorsCacheKey, &doctors)
	if err != nil {
		r.logger.Warn("failed to get doctors from cache", zap.Error(err))
	}
	if hit {
		return doctors, nil
	}

	err = r.db.WithContext(ctx).
		Order("last_name ASC").
		Order("first_name ASC").
		Find(&doctors).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get all doctors")
	}

	if err := r.cache.SetJSON(ctx, doctorsCacheKey, doctors, DoctorCacheExpiry); err != nil {
		r.logger.Warn("failed to set doctors in cache", zap.Error(err))
	}
	return doctors, nil
}

// Update writes the given columns and drops the cached copies.
func (r *DoctorRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Doctor{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update doctor")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.DeleteCache(ctx, id)
}

func (r *DoctorRepository) DeleteCache(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, r.getDoctorCacheKey(id), doctorsCacheKey)
}

func (r *DoctorRepository) getDoctorCacheKey(id string) string {
	return fmt.Sprintf("doctor_cache:%s", id)
}
