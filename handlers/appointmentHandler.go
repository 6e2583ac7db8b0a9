package handlers

import (
	"Samagra/middlewares"
	"Samagra/models"
	"Samagra/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	service *services.AppointmentService
	logger  *zap.Logger
}

func NewAppointmentHandler(service *services.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: service, logger: logger}
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req services.CreateAppointmentRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	appointment, err := h.service.Create(c.Request.Context(), middlewares.CurrentIdentity(c), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, gin.H{
		"message":       "Appointment requested",
		"appointmentId": appointment.ID,
		"appointment":   appointment,
	})
}

// CheckAvailability answers whether doctorId is free for the queried slot.
func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	available, err := h.service.IsAvailable(c.Request.Context(),
		c.Query("doctorId"), c.Query("date"), c.Query("startTime"), c.Query("endTime"))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"available": available})
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, h.logger, &body) {
		return
	}
	appointment, err := h.service.UpdateStatus(c.Request.Context(), middlewares.CurrentIdentity(c), c.Param("id"), body.Status)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Status updated", "appointment": appointment})
}

func (h *AppointmentHandler) AttachReport(c *gin.Context) {
	var body struct {
		Report string `json:"report"`
	}
	if !bindJSON(c, h.logger, &body) {
		return
	}
	appointment, err := h.service.AttachReport(c.Request.Context(), middlewares.CurrentIdentity(c), c.Param("id"), body.Report)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Report added", "appointment": appointment})
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req services.RescheduleRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	result, err := h.service.Reschedule(c.Request.Context(), middlewares.CurrentIdentity(c), c.Param("id"), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{
		"message":                "Appointment rescheduled",
		"newAppointmentId":       result.Rescheduled.ID,
		"originalAppointment":    result.Original,
		"rescheduledAppointment": result.Rescheduled,
	})
}

func (h *AppointmentHandler) GenerateRecurrence(c *gin.Context) {
	next, err := h.service.GenerateRecurrence(c.Request.Context(), middlewares.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, gin.H{"appointmentId": next.ID, "appointment": next})
}

func (h *AppointmentHandler) BlockCalendar(c *gin.Context) {
	var req services.BlockRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	block, err := h.service.BlockCalendar(c.Request.Context(), middlewares.CurrentIdentity(c), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, gin.H{"message": "Calendar blocked", "block": block})
}

func (h *AppointmentHandler) DoctorDay(c *gin.Context) {
	appointments, err := h.service.DoctorDay(c.Request.Context(), middlewares.CurrentIdentity(c), c.Query("date"))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"appointments": appointments})
}

func (h *AppointmentHandler) PatientAppointments(c *gin.Context) {
	filter := c.DefaultQuery("filter", services.FilterAll)
	appointments, err := h.service.PatientAppointments(c.Request.Context(), middlewares.CurrentIdentity(c), filter)
	h.respondList(c, appointments, err)
}

func (h *AppointmentHandler) PatientHistory(c *gin.Context) {
	appointments, err := h.service.PatientHistory(c.Request.Context(), middlewares.CurrentIdentity(c))
	h.respondList(c, appointments, err)
}

func (h *AppointmentHandler) PatientUpcoming(c *gin.Context) {
	appointments, err := h.service.PatientUpcoming(c.Request.Context(), middlewares.CurrentIdentity(c))
	h.respondList(c, appointments, err)
}

func (h *AppointmentHandler) RescheduleDetails(c *gin.Context) {
	result, err := h.service.RescheduleDetails(c.Request.Context(), middlewares.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{
		"originalAppointment":    result.Original,
		"rescheduledAppointment": result.Rescheduled,
	})
}

func (h *AppointmentHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context(), middlewares.CurrentIdentity(c))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *AppointmentHandler) respondList(c *gin.Context, appointments []models.Appointment, err error) {
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"count": len(appointments), "appointments": appointments})
}
