package services

import (
	"Samagra/models"
	"Samagra/utils"
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

type PatientStore interface {
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

type PatientService struct {
	patients PatientStore
}

func NewPatientService(patients PatientStore) *PatientService {
	return &PatientService{patients: patients}
}

func (s *PatientService) GetMe(ctx context.Context, caller models.Identity) (*models.Patient, error) {
	if !caller.Is(models.RolePatient) {
		return nil, utils.Forbiddenf("only patients have a patient profile")
	}
	return s.get(ctx, caller.UserID)
}

// UpdateMe completes the caller's profile and marks it complete.
func (s *PatientService) UpdateMe(ctx context.Context, caller models.Identity, update ProfileUpdate) (*models.Patient, error) {
	if !caller.Is(models.RolePatient) {
		return nil, utils.Forbiddenf("only patients have a patient profile")
	}
	if update.HealthRecords == nil {
		update.HealthRecords = []string{}
	}
	if err := update.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}

	records, err := json.Marshal(update.HealthRecords)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode health records")
	}
	err = s.patients.Update(ctx, caller.UserID, map[string]interface{}{
		"date_of_birth":     update.DateOfBirth,
		"address":           strings.TrimSpace(update.Address),
		"age":               update.Age,
		"profile_picture":   update.ProfilePicture,
		"health_records":    datatypes.JSON(records),
		"profile_completed": true,
	})
	if err := profileNotFound(err, "patient"); err != nil {
		return nil, err
	}
	return s.get(ctx, caller.UserID)
}

func (s *PatientService) get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, utils.NotFoundf("patient not found")
	}
	return patient, nil
}
