package handlers

import (
	"Samagra/middlewares"
	"Samagra/services"
	"Samagra/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService services.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		AuthService: authService,
		logger:      logger,
	}
}

// RegisterPatient creates a patient account and its profile
func (h *AuthHandler) RegisterPatient(c *gin.Context) {
	var req services.RegisterPatientRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	patient, err := h.AuthService.RegisterPatient(c.Request.Context(), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, gin.H{
		"message": "Patient registered successfully",
		"uid":     patient.ID,
	})
}

// RegisterDoctor creates a doctor account and its profile
func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	var req services.RegisterDoctorRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	doctor, err := h.AuthService.RegisterDoctor(c.Request.Context(), req)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusCreated, gin.H{
		"message": "Doctor registered successfully",
		"uid":     doctor.ID,
	})
}

// Login authenticates the user, sets the auth cookies and returns the tokens
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, h.logger, &credentials) {
		return
	}

	session, err := h.AuthService.Login(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}

	utils.SetAuthCookies(c, session.AccessToken, session.RefreshToken)
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{
		"accessToken":  session.AccessToken,
		"refreshToken": session.RefreshToken,
		"uid":          session.UserID,
		"role":         session.Role,
	})
}

// RefreshToken issues a new access token. The refresh token comes from the
// body or, failing that, from its cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, h.logger, &body) {
		return
	}
	if body.RefreshToken == "" {
		body.RefreshToken = utils.RefreshTokenFromCookie(c)
	}

	accessToken, err := h.AuthService.Refresh(c.Request.Context(), body.RefreshToken)
	if err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"accessToken": accessToken})
}

// Logoff logs the user out by clearing cookies
func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c)
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// SendResetCode mails a password reset code to the given address
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if !bindJSON(c, h.logger, &data) {
		return
	}
	if err := h.AuthService.SendResetCode(c.Request.Context(), data.Email); err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

// ChangePassword sets a new password using a reset code
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var data struct {
		Email       string `json:"email"`
		ResetCode   string `json:"resetCode"`
		NewPassword string `json:"newPassword"`
	}
	if !bindJSON(c, h.logger, &data) {
		return
	}
	if err := h.AuthService.ChangePassword(c.Request.Context(), data.Email, data.ResetCode, data.NewPassword); err != nil {
		middlewares.RespondError(c, h.logger, err)
		return
	}
	middlewares.RespondSuccess(c, http.StatusOK, gin.H{"message": "Password reset successful"})
}
