package services

import (
	"Samagra/models"
	"Samagra/utils"
	"context"
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type DietPlanStore interface {
	Save(ctx context.Context, plan *models.DietPlan) error
	Latest(ctx context.Context, patientID, weekStartDate string) (*models.DietPlan, error)
}

type SaveDietPlanRequest struct {
	PatientID     string          `json:"patientId"`
	WeekStartDate string          `json:"weekStartDate"`
	Diet          json.RawMessage `json:"diet"`
}

func (r SaveDietPlanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PatientID, validation.Required),
		validation.Field(&r.WeekStartDate, validation.Required, validation.Date(utils.DateLayout).Error("must be in YYYY-MM-DD format")),
		validation.Field(&r.Diet, validation.Required, validation.By(jsonDocument)),
	)
}

// jsonDocument accepts a JSON object or array.
func jsonDocument(value interface{}) error {
	raw, _ := value.(json.RawMessage)
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("must be valid JSON")
	}
	switch doc.(type) {
	case map[string]interface{}, []interface{}:
		return nil
	default:
		return fmt.Errorf("must be a JSON object or array")
	}
}

type DietPlanService struct {
	plans    DietPlanStore
	patients PatientStore
	doctors  DoctorLookup
	locker   Locker
	logger   *zap.Logger
}

func NewDietPlanService(plans DietPlanStore, patients PatientStore, doctors DoctorLookup, locker Locker, logger *zap.Logger) *DietPlanService {
	return &DietPlanService{plans: plans, patients: patients, doctors: doctors, locker: locker, logger: logger}
}

// Save stores a new weekly plan for a patient and retires the previous one
// for the same week.
func (s *DietPlanService) Save(ctx context.Context, caller models.Identity, req SaveDietPlanRequest) (*models.DietPlan, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can save diet plans")
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
	doctor, err := s.doctors.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, utils.NotFoundf("doctor not found")
	}

	plan := &models.DietPlan{
		ID:            uuid.New().String(),
		DoctorID:      doctor.ID,
		DoctorName:    doctor.FullName(),
		PatientID:     patient.ID,
		PatientName:   patient.FullName(),
		WeekStartDate: req.WeekStartDate,
		Diet:          datatypes.JSON(req.Diet),
	}
	lockKey := fmt.Sprintf("diet_plan_lock:%s:%s", plan.PatientID, plan.WeekStartDate)
	err = s.locker.WithLock(ctx, lockKey, func() error {
		return s.plans.Save(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("diet plan saved",
		zap.String("diet_id", plan.ID),
		zap.String("patient_id", plan.PatientID),
		zap.String("week", plan.WeekStartDate),
	)
	return plan, nil
}

// Mine returns the caller's plan for the week, or the active plan when week
// is empty. It returns nil when there is none.
func (s *DietPlanService) Mine(ctx context.Context, caller models.Identity, weekStartDate string) (*models.DietPlan, error) {
	if !caller.Is(models.RolePatient) {
		return nil, utils.Forbiddenf("only patients can view their diet plan")
	}
	if weekStartDate != "" {
		if err := utils.ValidateDate(weekStartDate); err != nil {
			return nil, err
		}
	}
	return s.plans.Latest(ctx, caller.UserID, weekStartDate)
}

// ActiveForPatient returns a patient's active plan, or nil.
func (s *DietPlanService) ActiveForPatient(ctx context.Context, caller models.Identity, patientID string) (*models.DietPlan, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can view patient diet plans")
	}
	if patientID == "" {
		return nil, utils.Validationf("patientId is required")
	}
	return s.plans.Latest(ctx, patientID, "")
}
