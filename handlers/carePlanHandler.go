package handlers

import (
	"Samagra/middlewares"
	"Samagra/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DietPlanHandler struct {
	service *services.DietPlanService
	logger  *zap.Logger
}

func NewDietPlanHandler(service *services.DietPlanService, logger *zap.Logger) *DietPlanHandler {
	return &DietPlanHandler{service: service, logger: logger}
}

func (h *DietPlanHandler) Save(c *gin.Context) {
	var req services.SaveDietPlanRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	plan, err := h.service.Save(c.Request.Context(), middlewares.CurrentIdentity(c), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, gin.H{
		"message": "Diet plan saved successfully",
		"dietId":  plan.ID,
	})
}

// Mine returns the caller's plan for ?weekStartDate, or the active one.
func (h *DietPlanHandler) Mine(c *gin.Context) {
	plan, err := h.service.Mine(c.Request.Context(), middlewares.CurrentIdentity(c), c.Query("weekStartDate"))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"diet": plan})
}

func (h *DietPlanHandler) ActiveForPatient(c *gin.Context) {
	plan, err := h.service.ActiveForPatient(c.Request.Context(), middlewares.CurrentIdentity(c), c.Param("patient_id"))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"diet": plan})
}

type ReportHandler struct {
	service *services.ReportService
	logger  *zap.Logger
}

func NewReportHandler(service *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req services.CreateReportRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	report, err := h.service.Create(c.Request.Context(), middlewares.CurrentIdentity(c), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, gin.H{
		"message":  "Report created successfully",
		"reportId": report.ID,
	})
}

func (h *ReportHandler) List(c *gin.Context) {
	reports, err := h.service.List(c.Request.Context(), middlewares.CurrentIdentity(c))
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"count": len(reports), "reports": reports})
}

func (h *ReportHandler) Update(c *gin.Context) {
	var req services.UpdateReportRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	report, err := h.service.Update(c.Request.Context(), middlewares.CurrentIdentity(c), c.Param("id"), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Report updated successfully", "report": report})
}
