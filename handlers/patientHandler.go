package handlers

import (
	"Samagra/middlewares"
	"Samagra/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PatientHandler struct {
	service *services.PatientService
	logger  *zap.Logger
}

func NewPatientHandler(service *services.PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{service: service, logger: logger}
}

func (h *PatientHandler) GetMe(c *gin.Context) {
	patient, err := h.service.GetMe(c.Request.Context(), middlewares.CurrentIdentity(c))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"data": patient})
}

func (h *PatientHandler) UpdateMe(c *gin.Context) {
	var update services.ProfileUpdate
	if !bindJSON(c, h.logger, &update) {
		return
	}
	patient, err := h.service.UpdateMe(c.Request.Context(), middlewares.CurrentIdentity(c), update)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Profile updated", "data": patient})
}
