// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	appctx "clinicash/internal/core/context"
	"clinicash/internal/domain/adjustment"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/auth"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/domain/reception"
	"clinicash/internal/domain/settlement"
	"clinicash/internal/storage/postgres"
	"clinicash/internal/transport/http/v1/handlers"
	"clinicash/internal/transport/http/v1/middleware"
	"clinicash/pkg/logger"
)

// RouterConfig holds the wired services and infrastructure.
type RouterConfig struct {
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	// Pool is nil when the in-memory backend is active.
	Pool *postgres.Pool

	AuthService        *auth.Service
	LedgerService      *ledger.Service
	AppointmentService *appointment.Service
	SettlementService  *settlement.Service
	AdjustmentService  *adjustment.Service
	ReceptionService   *reception.Service

	Professionals professional.Repository
	Treatments    treatment.Repository
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	registerHandler := handlers.NewRegisterHandler(base, cfg.LedgerService)
	appointmentHandler := handlers.NewAppointmentHandler(base, cfg.AppointmentService, cfg.Treatments)
	settlementHandler := handlers.NewSettlementHandler(base, cfg.SettlementService)
	adjustmentHandler := handlers.NewAdjustmentHandler(base, cfg.AdjustmentService)
	receptionHandler := handlers.NewReceptionHandler(base, cfg.ReceptionService)
	catalogHandler := handlers.NewCatalogHandler(base, cfg.Professionals, cfg.Treatments)

	api := router.Group("/api/v1")
	{
		// Public auth endpoints
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		staff := protected.Group("")
		staff.Use(middleware.RequireRole(appctx.RoleAdmin, appctx.RoleReception))
		adminOnly := protected.Group("")
		adminOnly.Use(middleware.RequireRole(appctx.RoleAdmin))

		// Account management is an admin concern
		adminOnly.POST("/auth/register", authHandler.Register)

		// Registers and the movement log
		registers := staff.Group("/registers")
		{
			registers.GET("", registerHandler.List)
			registers.POST("/open", registerHandler.Open)
			registers.PUT("/reception/fixed-fund", registerHandler.SetFixedFund)
			registers.GET("/:type", registerHandler.Get)
			registers.POST("/:type/close", registerHandler.Close)
		}
		staff.POST("/transactions", registerHandler.PostTransaction)
		staff.GET("/transactions", registerHandler.ListTransactions)

		// Appointment money flows
		appointments := staff.Group("/appointments")
		{
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("", appointmentHandler.List)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.POST("/:id/payments", appointmentHandler.AddPayment)
			appointments.DELETE("/:id/payments/:paymentId", appointmentHandler.RemovePayment)
			appointments.POST("/:id/attend", appointmentHandler.MarkAttended)
			appointments.POST("/:id/no-show", appointmentHandler.MarkNoShow)
			appointments.POST("/:id/reassign", adjustmentHandler.Reassign)
			appointments.GET("/:id/adjustments", adjustmentHandler.ListByAppointment)
		}

		// Settlements: professionals may read their own listings, staff
		// generate and confirm.
		protected.GET("/settlements", settlementHandler.ListByProfessional)
		protected.GET("/settlements/:id", settlementHandler.Get)
		staff.POST("/settlements/daily", settlementHandler.GenerateDaily)
		staff.POST("/settlements/monthly", settlementHandler.GenerateMonthly)
		staff.POST("/settlements/:id/confirm", settlementHandler.Confirm)
		staff.POST("/settlements/:id/payments", settlementHandler.RecordPayment)
		staff.DELETE("/settlements/:id", settlementHandler.Delete)

		// Adjustments
		adjustments := staff.Group("/adjustments")
		{
			adjustments.GET("/pending", adjustmentHandler.ListPending)
			adjustments.GET("/:id", adjustmentHandler.Get)
			adjustments.POST("/:id/done", adjustmentHandler.MarkDone)
			adjustments.POST("/:id/confirm", adjustmentHandler.ConfirmResolution)
		}

		// Reception closes
		receptionGroup := staff.Group("/reception")
		{
			receptionGroup.POST("/close/daily", receptionHandler.CloseDaily)
			receptionGroup.POST("/close/monthly", receptionHandler.CloseMonthly)
			receptionGroup.GET("/closes/daily", receptionHandler.ListDaily)
			receptionGroup.GET("/closes/monthly", receptionHandler.ListMonthly)
		}

		// Catalogs
		catalogs := protected.Group("/catalogs")
		{
			catalogs.GET("/professionals", catalogHandler.ListProfessionals)
			catalogs.GET("/professionals/:id", catalogHandler.GetProfessional)
			catalogs.GET("/treatments", catalogHandler.ListTreatments)
			catalogs.GET("/treatments/:id", catalogHandler.GetTreatment)
		}
		adminOnly.POST("/catalogs/professionals", catalogHandler.CreateProfessional)
		adminOnly.POST("/catalogs/treatments", catalogHandler.CreateTreatment)
	}

	return router
}
