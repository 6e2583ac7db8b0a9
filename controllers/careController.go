package controllers

import (
	"Samagra/handlers"

	"github.com/gin-gonic/gin"
)

// CareHandlers groups the handlers behind the scheduling and records API.
type CareHandlers struct {
	Appointments *handlers.AppointmentHandler
	Doctors      *handlers.DoctorHandler
	Patients     *handlers.PatientHandler
	DietPlans    *handlers.DietPlanHandler
	Reports      *handlers.ReportHandler
}

// SetupCareRoutes mounts the doctor, patient, appointment, diet plan and
// report routes under api.
func SetupCareRoutes(api *gin.RouterGroup, guards Guards, h CareHandlers) {
	api.GET("/doctors", h.Doctors.GetAllDoctors)
	api.GET("/doctors/:id", h.Doctors.GetDoctorByID)

	api.GET("/availability", guards.Authenticated, h.Appointments.CheckAvailability)
	api.GET("/appointments/:id/reschedule-details", guards.Authenticated, h.Appointments.RescheduleDetails)
	api.GET("/reports", guards.Authenticated, h.Reports.List)

	patient := api.Group("", guards.Patient)
	{
		patient.POST("/appointments", h.Appointments.CreateAppointment)
		patient.GET("/appointments/mine", h.Appointments.PatientAppointments)
		patient.GET("/appointments/history", h.Appointments.PatientHistory)
		patient.GET("/appointments/upcoming", h.Appointments.PatientUpcoming)
		patient.GET("/patients/me", h.Patients.GetMe)
		patient.PUT("/patients/me", h.Patients.UpdateMe)
		patient.GET("/diet-plans/mine", h.DietPlans.Mine)
	}

	doctor := api.Group("", guards.Doctor)
	{
		doctor.GET("/doctor/appointments", h.Appointments.DoctorDay)
		doctor.POST("/doctor/blocks", h.Appointments.BlockCalendar)
		doctor.GET("/doctor/dashboard", h.Appointments.Dashboard)
		doctor.PATCH("/appointments/:id/status", h.Appointments.UpdateStatus)
		doctor.POST("/appointments/:id/report", h.Appointments.AttachReport)
		doctor.POST("/appointments/:id/reschedule", h.Appointments.Reschedule)
		doctor.POST("/appointments/:id/recurrence", h.Appointments.GenerateRecurrence)
		doctor.GET("/doctors/me", h.Doctors.GetMe)
		doctor.PUT("/doctors/me", h.Doctors.UpdateMe)
		doctor.PUT("/doctors/me/availability", h.Doctors.SetAvailability)
		doctor.POST("/diet-plans", h.DietPlans.Save)
		doctor.GET("/patients/:patient_id/diet-plan", h.DietPlans.ActiveForPatient)
		doctor.POST("/reports", h.Reports.Create)
		doctor.PUT("/reports/:id", h.Reports.Update)
	}
}
