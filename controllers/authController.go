package controllers

import (
	"Samagra/handlers"
	"Samagra/middlewares"
	"Samagra/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Guards are the role checks shared by the route groups.
type Guards struct {
	Authenticated gin.HandlerFunc
	Patient       gin.HandlerFunc
	Doctor        gin.HandlerFunc
}

func NewGuards(resolver middlewares.IdentityResolver, logger *zap.Logger) Guards {
	return Guards{
		Authenticated: middlewares.RequireRole(resolver, logger),
		Patient:       middlewares.RequireRole(resolver, logger, models.RolePatient),
		Doctor:        middlewares.RequireRole(resolver, logger, models.RoleDoctor),
	}
}

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes mounts the public authentication routes under api
func (ac *AuthController) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register/patient", ac.Handler.RegisterPatient)
		auth.POST("/register/doctor", ac.Handler.RegisterDoctor)
		auth.POST("/login", ac.Handler.Login)
		auth.POST("/refresh-token", ac.Handler.RefreshToken)
		auth.POST("/send-reset-code", ac.Handler.SendResetCode)
		auth.POST("/change-password", ac.Handler.ChangePassword)
		auth.POST("/logoff", ac.Handler.Logoff)
	}
}
