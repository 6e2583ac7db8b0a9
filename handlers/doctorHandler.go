package handlers

import (
	"Samagra/middlewares"
	"Samagra/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DoctorHandler struct {
	service *services.DoctorService
	logger  *zap.Logger
}

func NewDoctorHandler(service *services.DoctorService, logger *zap.Logger) *DoctorHandler {
	return &DoctorHandler{service: service, logger: logger}
}

func (h *DoctorHandler) GetAllDoctors(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"count": len(doctors), "doctors": doctors})
}

func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctor, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"data": doctor})
}

func (h *DoctorHandler) GetMe(c *gin.Context) {
	doctor, err := h.service.GetMe(c.Request.Context(), middlewares.CurrentIdentity(c))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"data": doctor})
}

func (h *DoctorHandler) UpdateMe(c *gin.Context) {
	var update services.ProfileUpdate
	if !bindJSON(c, h.logger, &update) {
		return
	}
	doctor, err := h.service.UpdateMe(c.Request.Context(), middlewares.CurrentIdentity(c), update)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Profile updated", "data": doctor})
}

func (h *DoctorHandler) SetAvailability(c *gin.Context) {
	var availability services.Availability
	if !bindJSON(c, h.logger, &availability) {
		return
	}
	doctor, err := h.service.SetAvailability(c.Request.Context(), middlewares.CurrentIdentity(c), availability)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Availability updated", "data": doctor})
}
