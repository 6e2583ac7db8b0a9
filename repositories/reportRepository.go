package repositories

import (
	"Samagra/models"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return errors.Wrap(err, "failed to create report")
	}
	return nil
}

// GetByID returns nil, nil when the report does not exist.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get report")
	}
	return &report, nil
}

// ListByDoctor lists a doctor's reports, newest first.
func (r *ReportRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Report, error) {
	return r.list(ctx, "doctor_id = ?", doctorID)
}

// ListByPatient lists the reports written about a patient, newest first.
func (r *ReportRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Report, error) {
	return r.list(ctx, "patient_id = ?", patientID)
}

func (r *ReportRepository) list(ctx context.Context, query string, arg interface{}) ([]models.Report, error) {
	reports := []models.Report{}
	err := r.db.WithContext(ctx).
		Where(query, arg).
		Where("is_archived = ?", false).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reports")
	}
	return reports, nil
}

// Update writes the named columns of report.
func (r *ReportRepository) Update(ctx context.Context, report *models.Report, columns ...string) error {
	res := r.db.WithContext(ctx).Model(report).Select(columns).Updates(report)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update report")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
