package repositories

import (
	"Samagra/models"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type DietPlanRepository struct {
	db *gorm.DB
}

func NewDietPlanRepository(db *gorm.DB) *DietPlanRepository {
	return &DietPlanRepository{db: db}
}

// Save deactivates the current plan for the same patient and week and
// inserts plan as the active one.
func (r *DietPlanRepository) Save(ctx context.Context, plan *models.DietPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.DietPlan{}).
			Where("patient_id = ? AND week_start_date = ? AND is_active = ?", plan.PatientID, plan.WeekStartDate, true).
			Update("is_active", false).Error
		if err != nil {
			return errors.Wrap(err, "failed to deactivate previous diet plan")
		}
		plan.IsActive = true
		if err := tx.Create(plan).Error; err != nil {
			return errors.Wrap(err, "failed to create diet plan")
		}
		return nil
	})
}

// Latest returns the newest plan for the week, or the newest active plan
// when weekStartDate is empty. It returns nil, nil when there is none.
func (r *DietPlanRepository) Latest(ctx context.Context, patientID, weekStartDate string) (*models.DietPlan, error) {
	q := r.db.WithContext(ctx).Where("patient_id = ?", patientID)
	if weekStartDate != "" {
		q = q.Where("week_start_date = ?", weekStartDate)
	} else {
		q = q.Where("is_active = ?", true)
	}

	var plan models.DietPlan
	if err := q.Order("created_at DESC").First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get diet plan")
	}
	return &plan, nil
}
