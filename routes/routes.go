package routes

import (
	"Samagra/cache"
	"Samagra/config"
	"Samagra/controllers"
	"Samagra/database"
	"Samagra/handlers"
	"Samagra/middlewares"
	"Samagra/repositories"
	"Samagra/services"
	"Samagra/utils"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the connections and settings the router is built from.
type Dependencies struct {
	Config *config.AppConfig
	Logger *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Cache  *cache.Cache
}

// SetupRoutes initializes the routes and middleware for the server. The
// returned drain function waits for in-flight background notifications.
func SetupRoutes(deps Dependencies) (http.Handler, func(), error) {
	cfg, logger := deps.Config, deps.Logger

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	metrics := middlewares.NewMetrics()
	router.Use(middlewares.LoggingMiddleware(logger))
	router.Use(middlewares.SecurityHeaders())
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(cfg.AllowedOrigins)))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}))
	router.Use(metrics.Middleware())

	issuer, err := newIssuer(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Initialize repositories, services, and handlers
	appointmentRepo := repositories.NewAppointmentRepository(deps.DB, deps.Cache, logger)
	doctorRepo := repositories.NewDoctorRepository(deps.DB, deps.Cache, logger)
	patientRepo := repositories.NewPatientRepository(deps.DB, deps.Cache, logger)
	userRepo := repositories.NewUserRepository(deps.DB, deps.Cache)
	dietPlanRepo := repositories.NewDietPlanRepository(deps.DB)
	reportRepo := repositories.NewReportRepository(deps.DB)

	locker := database.NewLocker(deps.Redis, logger)
	mailer := utils.NewMailer(utils.MailerConfig{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	}, logger)

	appointmentService := services.NewAppointmentService(appointmentRepo, doctorRepo, mailer, metrics, logger, services.AppointmentOptions{
		RecurrenceChecksAvailability: cfg.RecurrenceChecksAvailability,
	})
	authService := services.NewAuthService(userRepo, locker, issuer, utils.NewResetCodeStore(deps.Cache), mailer, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	care := controllers.CareHandlers{
		Appointments: handlers.NewAppointmentHandler(appointmentService, logger),
		Doctors:      handlers.NewDoctorHandler(services.NewDoctorService(doctorRepo, logger), logger),
		Patients:     handlers.NewPatientHandler(services.NewPatientService(patientRepo), logger),
		DietPlans:    handlers.NewDietPlanHandler(services.NewDietPlanService(dietPlanRepo, patientRepo, doctorRepo, locker, logger), logger),
		Reports:      handlers.NewReportHandler(services.NewReportService(reportRepo, patientRepo, logger), logger),
	}

	// Register routes
	api := router.Group("/api/v1")
	controllers.NewAuthController(authHandler).RegisterRoutes(api)
	guards := controllers.NewGuards(middlewares.NewIdentityResolver(cfg.AuthMode, issuer), logger)
	controllers.SetupCareRoutes(api, guards, care)

	root := &controllers.RootController{
		Checks: []controllers.HealthCheck{
			{Name: "database", Check: func(ctx context.Context) error { return database.Ping(ctx, deps.DB) }},
			{Name: "redis", Check: deps.Cache.Ping},
		},
		PoolStats:    func() map[string]uint32 { return database.RedisPoolStats(deps.Redis) },
		Metrics:      metrics,
		MetricsToken: cfg.MetricsToken,
	}
	root.SetupRootRoute(router)

	return router, appointmentService.Wait, nil
}

// newIssuer returns the token issuer for the configured auth mode. Header
// mode still signs paseto tokens at login.
func newIssuer(cfg *config.AppConfig) (utils.TokenIssuer, error) {
	if cfg.AuthMode == config.AuthModeJWT {
		issuer, err := utils.NewJWTIssuer(cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		return issuer, nil
	}
	issuer, err := utils.NewPasetoIssuer(cfg.SymmetricKey)
	if err != nil {
		return nil, err
	}
	return issuer, nil
}
