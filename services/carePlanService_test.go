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
)

func carePlanPatients() *memoryPatients {
	return &memoryPatients{rows: map[string]*models.Patient{patientID: {ID: patientID, FirstName: "Asha", LastName: "Rao"}}}
}

func TestDietPlanSaveReplacesWeek(t *testing.T) {
	plans := &memoryDietPlans{}
	locker := &keyLocker{}
	doctors := doctorDirectory{doctorID: {ID: doctorID, FirstName: "Dev"}}
	svc := NewDietPlanService(plans, carePlanPatients(), doctors, locker, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Save(ctx, doctorCaller, SaveDietPlanRequest{PatientID: patientID, WeekStartDate: "2025-03-10", Diet: json.RawMessage(`{"monday":{"breakfast":"oats"}}`)})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", first.PatientName)
	assert.Equal(t, "Dev", first.DoctorName)

	second, err := svc.Save(ctx, doctorCaller, SaveDietPlanRequest{PatientID: patientID, WeekStartDate: "2025-03-10", Diet: json.RawMessage(`{"monday":{"breakfast":"idli"}}`)})
	require.NoError(t, err)
	assert.Equal(t, []string{"diet_plan_lock:pat-1:2025-03-10", "diet_plan_lock:pat-1:2025-03-10"}, locker.taken)

	require.Len(t, plans.plans, 2)
	assert.False(t, plans.plans[0].IsActive)
	assert.True(t, plans.plans[1].IsActive)

	mine, err := svc.Mine(ctx, patientCaller, "")
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, second.ID, mine.ID)

	active, err := svc.ActiveForPatient(ctx, doctorCaller, patientID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	none, err := svc.Mine(ctx, patientCaller, "2025-03-17")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDietPlanSaveRejections(t *testing.T) {
	svc := NewDietPlanService(&memoryDietPlans{}, carePlanPatients(), doctorDirectory{doctorID: {ID: doctorID}}, &keyLocker{}, zap.NewNop())
	ctx := context.Background()
	diet := json.RawMessage(`{"monday":{}}`)

	_, err := svc.Save(ctx, patientCaller, SaveDietPlanRequest{PatientID: patientID, WeekStartDate: "2025-03-10", Diet: diet})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))

	_, err = svc.Save(ctx, doctorCaller, SaveDietPlanRequest{PatientID: patientID, WeekStartDate: "10/03/2025", Diet: diet})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.Save(ctx, doctorCaller, SaveDietPlanRequest{PatientID: patientID, WeekStartDate: "2025-03-10", Diet: json.RawMessage(`"salad"`)})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.Save(ctx, doctorCaller, SaveDietPlanRequest{PatientID: "ghost", WeekStartDate: "2025-03-10", Diet: diet})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestReportLifecycle(t *testing.T) {
	reports := &memoryReports{}
	svc := NewReportService(reports, carePlanPatients(), zap.NewNop())
	ctx := context.Background()

	report, err := svc.Create(ctx, doctorCaller, CreateReportRequest{
		PatientID:   patientID,
		BasicInfo:   json.RawMessage(`{"heightCm":170,"weightKg":68}`),
		Notes:       "first visit",
		VisitNumber: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, doctorID, report.DoctorID)
	assert.Equal(t, models.CreatedByDoctor, report.CreatedBy)
	assert.JSONEq(t, `[]`, string(report.DietaryHistory))
	assert.JSONEq(t, `{}`, string(report.BloodReports))

	_, err = svc.Create(ctx, doctorCaller, CreateReportRequest{PatientID: patientID, BasicInfo: json.RawMessage(`{}`), VisitNumber: 2})
	require.NoError(t, err)

	mine, err := svc.List(ctx, patientCaller)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, 2, mine[0].VisitNumber)

	notes := "revised"
	updated, err := svc.Update(ctx, doctorCaller, report.ID, UpdateReportRequest{Notes: &notes, Measurements: json.RawMessage(`{"waistCm":80}`)})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Notes)
	assert.JSONEq(t, `{"heightCm":170,"weightKg":68}`, string(updated.BasicInfo))
	assert.JSONEq(t, `{"waistCm":80}`, string(reports.rows[0].Measurements))
}

func TestReportRejections(t *testing.T) {
	reports := &memoryReports{rows: []models.Report{{ID: "r1", DoctorID: doctorID, PatientID: patientID, VisitNumber: 1}}}
	svc := NewReportService(reports, carePlanPatients(), zap.NewNop())
	ctx := context.Background()
	other := models.Identity{UserID: "doc-2", Role: models.RoleDoctor}
	notes := "x"

	_, err := svc.Create(ctx, doctorCaller, CreateReportRequest{PatientID: patientID, VisitNumber: 1})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.Create(ctx, doctorCaller, CreateReportRequest{PatientID: patientID, BasicInfo: json.RawMessage(`{}`)})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = svc.Create(ctx, patientCaller, CreateReportRequest{PatientID: patientID, BasicInfo: json.RawMessage(`{}`), VisitNumber: 1})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))

	_, err = svc.Update(ctx, other, "r1", UpdateReportRequest{Notes: &notes})
	assert.Equal(t, utils.KindAuthorization, utils.KindOf(err))

	_, err = svc.Update(ctx, doctorCaller, "missing", UpdateReportRequest{Notes: &notes})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = svc.Update(ctx, doctorCaller, "r1", UpdateReportRequest{})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}
