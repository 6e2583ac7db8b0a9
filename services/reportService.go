package services

import (
	"Samagra/models"
	"Samagra/utils"
	"context"
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Report, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Report, error)
	Update(ctx context.Context, report *models.Report, columns ...string) error
}

type CreateReportRequest struct {
	PatientID      string          `json:"patientId"`
	BasicInfo      json.RawMessage `json:"basicInfo"`
	DietaryHistory json.RawMessage `json:"dietaryHistory"`
	Measurements   json.RawMessage `json:"measurements"`
	BloodReports   json.RawMessage `json:"bloodReports"`
	Notes          string          `json:"notes"`
	VisitNumber    int             `json:"visitNumber"`
}

func (r CreateReportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PatientID, validation.Required),
		validation.Field(&r.BasicInfo, validation.Required, validation.By(jsonDocument)),
		validation.Field(&r.DietaryHistory, validation.By(optionalJSONDocument)),
		validation.Field(&r.Measurements, validation.By(optionalJSONDocument)),
		validation.Field(&r.BloodReports, validation.By(optionalJSONDocument)),
		validation.Field(&r.VisitNumber, validation.Required, validation.Min(1)),
	)
}

// UpdateReportRequest is a partial update. Nil fields are left unchanged.
type UpdateReportRequest struct {
	BasicInfo      json.RawMessage `json:"basicInfo"`
	DietaryHistory json.RawMessage `json:"dietaryHistory"`
	Measurements   json.RawMessage `json:"measurements"`
	BloodReports   json.RawMessage `json:"bloodReports"`
	Notes          *string         `json:"notes"`
	VisitNumber    *int            `json:"visitNumber"`
	IsArchived     *bool           `json:"isArchived"`
}

func (r UpdateReportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BasicInfo, validation.By(optionalJSONDocument)),
		validation.Field(&r.DietaryHistory, validation.By(optionalJSONDocument)),
		validation.Field(&r.Measurements, validation.By(optionalJSONDocument)),
		validation.Field(&r.BloodReports, validation.By(optionalJSONDocument)),
		validation.Field(&r.VisitNumber, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

func optionalJSONDocument(value interface{}) error {
	if raw, _ := value.(json.RawMessage); len(raw) == 0 {
		return nil
	}
	return jsonDocument(value)
}

type ReportService struct {
	reports  ReportStore
	patients PatientStore
	logger   *zap.Logger
}

func NewReportService(reports ReportStore, patients PatientStore, logger *zap.Logger) *ReportService {
	return &ReportService{reports: reports, patients: patients, logger: logger}
}

func (s *ReportService) Create(ctx context.Context, caller models.Identity, req CreateReportRequest) (*models.Report, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can create reports")
	}
	if err := req.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}

	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, utils.NotFoundf("patient not found")
	}

	report := &models.Report{
		ID:             uuid.New().String(),
		PatientID:      patient.ID,
		DoctorID:       caller.UserID,
		BasicInfo:      datatypes.JSON(req.BasicInfo),
		DietaryHistory: jsonOr(req.DietaryHistory, "[]"),
		Measurements:   jsonOr(req.Measurements, "{}"),
		BloodReports:   jsonOr(req.BloodReports, "{}"),
		Notes:          req.Notes,
		VisitNumber:    req.VisitNumber,
		CreatedBy:      models.CreatedByDoctor,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("report created", zap.String("report_id", report.ID), zap.String("patient_id", report.PatientID))
	return report, nil
}

// List returns the reports a doctor wrote or the reports about a patient,
// newest first.
func (s *ReportService) List(ctx context.Context, caller models.Identity) ([]models.Report, error) {
	switch {
	case caller.Is(models.RoleDoctor):
		return s.reports.ListByDoctor(ctx, caller.UserID)
	case caller.Is(models.RolePatient):
		return s.reports.ListByPatient(ctx, caller.UserID)
	default:
		return nil, utils.Forbiddenf("not allowed to view reports")
	}
}

// Update applies a partial update to a report the caller wrote.
func (s *ReportService) Update(ctx context.Context, caller models.Identity, id string, req UpdateReportRequest) (*models.Report, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can update reports")
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, utils.NotFoundf("report not found")
	}
	if report.DoctorID != caller.UserID {
		return nil, utils.Forbiddenf("not allowed to update this report")
	}
	if err := req.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}

	var columns []string
	setJSON := func(raw json.RawMessage, dst *datatypes.JSON, column string) {
		if len(raw) > 0 {
			*dst = datatypes.JSON(raw)
			columns = append(columns, column)
		}
	}
	setJSON(req.BasicInfo, &report.BasicInfo, "basic_info")
	setJSON(req.DietaryHistory, &report.DietaryHistory, "dietary_history")
	setJSON(req.Measurements, &report.Measurements, "measurements")
	setJSON(req.BloodReports, &report.BloodReports, "blood_reports")
	if req.Notes != nil {
		report.Notes = *req.Notes
		columns = append(columns, "notes")
	}
	if req.VisitNumber != nil {
		report.VisitNumber = *req.VisitNumber
		columns = append(columns, "visit_number")
	}
	if req.IsArchived != nil {
		report.IsArchived = *req.IsArchived
		columns = append(columns, "is_archived")
	}
	if len(columns) == 0 {
		return nil, utils.Validationf("no fields to update")
	}

	if err := s.reports.Update(ctx, report, columns...); err != nil {
		return nil, err
	}
	return report, nil
}

func jsonOr(raw json.RawMessage, fallback string) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON(fallback)
	}
	return datatypes.JSON(raw)
}
