package services

import (
	"context"
	"encoding/json"
	"testing"

	"Samagra/models"
	"Samagra/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type memoryDoctors struct {
	rows map[string]*models.Doctor
}

func (m *memoryDoctors) GetByID(_ context.Context, id string) (*models.Doctor, error) {
	d, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memoryDoctors) GetAll(_ context.Context) ([]models.Doctor, error) {
	out := []models.Doctor{}
	for _, d := range m.rows {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memoryDoctors) Update(_ context.Context, id string, fields map[string]interface{}) error {
	d, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, v := range fields {
		switch column {
		case "date_of_birth":
			d.DateOfBirth = v.(string)
		case "address":
			d.Address = v.(string)
		case "age":
			d.Age = v.(int)
		case "profile_picture":
			d.ProfilePicture = v.(string)
		case "profile_completed":
			d.ProfileCompleted = v.(bool)
		case "availability":
			d.Availability = v.(datatypes.JSON)
		}
	}
	return nil
}

func validProfile() ProfileUpdate {
	return ProfileUpdate{
		DateOfBirth:    "1985-04-12",
		Address:        "12 MG Road",
		Age:            39,
		ProfilePicture: "https://cdn.example.com/me.png",
	}
}

func TestDoctorUpdateMeCompletesProfile(t *testing.T) {
	doctors := &memoryDoctors{rows: map[string]*models.Doctor{doctorID: {ID: doctorID, FirstName: "Dev"}}}
	svc := NewDoctorService(doctors, zap.NewNop())

	doctor, err := svc.UpdateMe(context.Background(), doctorCaller, validProfile())
	require.NoError(t, err)
	assert.True(t, doctor.ProfileCompleted)
	assert.Equal(t, "1985-04-12", doctor.DateOfBirth)
	assert.Equal(t, 39, doctor.Age)

	bad := validProfile()
	bad.ProfilePicture = "https://cdn.example.com/me.exe"
	_, err = svc.UpdateMe(context.Background(), doctorCaller, bad)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.UpdateMe(context.Background(), patientCaller, validProfile())
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))
}

func TestDoctorGetByIDNotFound(t *testing.T) {
	svc := NewDoctorService(&memoryDoctors{rows: map[string]*models.Doctor{}}, zap.NewNop())

	_, err := svc.GetByID(context.Background(), "missing")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = svc.UpdateMe(context.Background(), doctorCaller, validProfile())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestDoctorSetAvailability(t *testing.T) {
	doctors := &memoryDoctors{rows: map[string]*models.Doctor{doctorID: {ID: doctorID}}}
	svc := NewDoctorService(doctors, zap.NewNop())
	ctx := context.Background()

	availability := Availability{
		WeeklySchedule: map[string][]TimeSlot{
			"monday":   {{StartTime: "09:00", EndTime: "13:00"}, {StartTime: "14:00", EndTime: "17:00"}},
			"thursday": {{StartTime: "10:00", EndTime: "12:00"}},
		},
		SlotDuration: 30,
	}
	doctor, err := svc.SetAvailability(ctx, doctorCaller, availability)
	require.NoError(t, err)

	var stored Availability
	require.NoError(t, json.Unmarshal(doctor.Availability, &stored))
	assert.Equal(t, availability, stored)

	cases := map[string]Availability{
		"unknown day":    {WeeklySchedule: map[string][]TimeSlot{"funday": {{StartTime: "09:00", EndTime: "10:00"}}}, SlotDuration: 30},
		"inverted slot":  {WeeklySchedule: map[string][]TimeSlot{"monday": {{StartTime: "10:00", EndTime: "09:00"}}}, SlotDuration: 30},
		"bad clock":      {WeeklySchedule: map[string][]TimeSlot{"monday": {{StartTime: "9am", EndTime: "10:00"}}}, SlotDuration: 30},
		"no duration":    {WeeklySchedule: map[string][]TimeSlot{"monday": {{StartTime: "09:00", EndTime: "10:00"}}}},
		"empty schedule": {SlotDuration: 30},
	}
	for name, a := range cases {
		_, err := svc.SetAvailability(ctx, doctorCaller, a)
		assert.Equal(t, utils.KindValidation, utils.KindOf(err), name)
	}
}

func TestPatientUpdateMe(t *testing.T) {
	patients := &memoryPatients{rows: map[string]*models.Patient{patientID: {ID: patientID, FirstName: "Asha"}}}
	svc := NewPatientService(patients)
	ctx := context.Background()

	update := validProfile()
	update.HealthRecords = []string{"https://cdn.example.com/xray.jpg"}
	patient, err := svc.UpdateMe(ctx, patientCaller, update)
	require.NoError(t, err)
	assert.True(t, patient.ProfileCompleted)
	assert.JSONEq(t, `["https://cdn.example.com/xray.jpg"]`, string(patient.HealthRecords))

	update.HealthRecords = []string{"not a url"}
	_, err = svc.UpdateMe(ctx, patientCaller, update)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	noAge := validProfile()
	noAge.Age = 0
	_, err = svc.UpdateMe(ctx, patientCaller, noAge)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	me, err := svc.GetMe(ctx, patientCaller)
	require.NoError(t, err)
	assert.Equal(t, "Asha", me.FirstName)

	_, err = svc.GetMe(ctx, doctorCaller)
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))
}
