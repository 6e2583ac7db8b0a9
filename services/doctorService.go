package services

import (
	"Samagra/models"
	"Samagra/utils"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DoctorStore interface {
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	GetAll(ctx context.Context) ([]models.Doctor, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

// ProfileUpdate carries the fields a user fills in after signup.
type ProfileUpdate struct {
	DateOfBirth    string   `json:"dob"`
	Address        string   `json:"address"`
	Age            int      `json:"age"`
	ProfilePicture string   `json:"profilePicture"`
	HealthRecords  []string `json:"healthRecords"`
}

var imageURLRegex = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)(\?.*)?$`)

var imageURLRules = []validation.Rule{is.URL, validation.Match(imageURLRegex).Error("must be an image URL")}

func (p ProfileUpdate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.DateOfBirth, validation.Required, validation.Date(utils.DateLayout).Error("must be in YYYY-MM-DD format")),
		validation.Field(&p.Address, validation.Length(0, 100)),
		validation.Field(&p.Age, validation.Required, validation.Min(1), validation.Max(150)),
		validation.Field(&p.ProfilePicture, imageURLRules...),
		validation.Field(&p.HealthRecords, validation.Each(imageURLRules...)),
	)
}

// TimeSlot is one working interval of a weekday.
type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Availability is a doctor's published working week.
type Availability struct {
	WeeklySchedule map[string][]TimeSlot `json:"weeklySchedule"`
	SlotDuration   int                   `json:"slotDuration"`
}

var weekdays = []interface{}{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (a Availability) Validate() error {
	if err := validation.ValidateStruct(&a,
		validation.Field(&a.WeeklySchedule, validation.Required),
		validation.Field(&a.SlotDuration, validation.Required, validation.Min(5), validation.Max(240)),
	); err != nil {
		return err
	}
	for day, slots := range a.WeeklySchedule {
		if err := validation.Validate(day, validation.In(weekdays...)); err != nil {
			return validation.Errors{"weeklySchedule": errors.Errorf("unknown day %q", day)}
		}
		for _, slot := range slots {
			err := validation.Errors{
				"startTime": utils.ValidateClock(slot.StartTime),
				"endTime":   utils.ValidateClock(slot.EndTime),
			}.Filter()
			if err == nil && slot.StartTime >= slot.EndTime {
				err = errors.New("startTime must be before endTime")
			}
			if err != nil {
				return validation.Errors{"weeklySchedule": errors.Errorf("%s: %s", day, err.Error())}
			}
		}
	}
	return nil
}

type DoctorService struct {
	doctors DoctorStore
	logger  *zap.Logger
}

func NewDoctorService(doctors DoctorStore, logger *zap.Logger) *DoctorService {
	return &DoctorService{doctors: doctors, logger: logger}
}

func (s *DoctorService) List(ctx context.Context) ([]models.Doctor, error) {
	return s.doctors.GetAll(ctx)
}

func (s *DoctorService) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, utils.NotFoundf("doctor not found")
	}
	return doctor, nil
}

func (s *DoctorService) GetMe(ctx context.Context, caller models.Identity) (*models.Doctor, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors have a doctor profile")
	}
	return s.GetByID(ctx, caller.UserID)
}

// UpdateMe completes the caller's profile.
func (s *DoctorService) UpdateMe(ctx context.Context, caller models.Identity, update ProfileUpdate) (*models.Doctor, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors have a doctor profile")
	}
	update.HealthRecords = nil
	if err := update.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}

	err := s.doctors.Update(ctx, caller.UserID, map[string]interface{}{
		"date_of_birth":     update.DateOfBirth,
		"address":           strings.TrimSpace(update.Address),
		"age":               update.Age,
		"profile_picture":   update.ProfilePicture,
		"profile_completed": true,
	})
	if err := profileNotFound(err, "doctor"); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, caller.UserID)
}

// SetAvailability replaces the caller's published working week.
func (s *DoctorService) SetAvailability(ctx context.Context, caller models.Identity, availability Availability) (*models.Doctor, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can set availability")
	}
	if err := availability.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}

	raw, err := json.Marshal(availability)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode availability")
	}
	err = s.doctors.Update(ctx, caller.UserID, map[string]interface{}{"availability": datatypes.JSON(raw)})
	if err := profileNotFound(err, "doctor"); err != nil {
		return nil, err
	}

	s.logger.Info("doctor availability updated", zap.String("doctor_id", caller.UserID), zap.Int("days", len(availability.WeeklySchedule)))
	return s.GetByID(ctx, caller.UserID)
}

func profileNotFound(err error, kind string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFoundf("%s not found", kind)
	}
	return err
}
