package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pd-care-server/internal/config"
	"pd-care-server/internal/handlers"
	"pd-care-server/internal/middleware"
	"pd-care-server/internal/models"
	"pd-care-server/internal/schedule"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, scheduler *schedule.Service) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	patientHandler := handlers.NewPatientHandler(db, scheduler)
	scheduleHandler := handlers.NewScheduleHandler(scheduler)
	treatmentHandler := handlers.NewTreatmentHandler(db)
	prescriptionHandler := handlers.NewPrescriptionHandler(db)
	labResultHandler := handlers.NewLabResultHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)

	clinicians := middleware.RoleAuthMiddleware(models.RoleStaff, models.RoleDoctor, models.RoleAdmin)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes (typically admin-only)
		userRoutes := private.Group("/users")
		{
			// Doctor directory - accessible by all authenticated users
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin)) // Only Admins
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Patient registration and lookup (clinic side registers PD patients)
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin), patientHandler.RegisterPatient)
			patientRoutes.GET("", clinicians, patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID) // Authorization inside handler
		}

		// Checkup schedule routes
		scheduleRoutes := private.Group("/schedules")
		{
			// Listings
			scheduleRoutes.GET("", scheduleHandler.GetSchedules) // Logic inside handler differentiates by role
			scheduleRoutes.GET("/upcoming", middleware.RoleAuthMiddleware(models.RolePatient), scheduleHandler.GetUpcoming)
			scheduleRoutes.GET("/reschedule-requests", clinicians, scheduleHandler.GetRescheduleRequests)

			// Daily booking capacity probe
			scheduleRoutes.POST("/daily-limit", scheduleHandler.DailyLimitStatus)

			// Reschedule workflow
			scheduleRoutes.POST("/:id/reschedule-request", middleware.RoleAuthMiddleware(models.RolePatient), scheduleHandler.RequestReschedule)
			scheduleRoutes.POST("/:id/reschedule/approve", clinicians, scheduleHandler.ApproveReschedule)
			scheduleRoutes.POST("/:id/reschedule/deny", clinicians, scheduleHandler.DenyReschedule)
			scheduleRoutes.POST("/reschedule-missed", middleware.RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin), scheduleHandler.RescheduleMissed)

			// Attendance confirmation (patient, inside the window)
			scheduleRoutes.POST("/:id/confirm", middleware.RoleAuthMiddleware(models.RolePatient), scheduleHandler.Confirm)

			// Terminal transitions
			scheduleRoutes.PATCH("/:id/complete", clinicians, scheduleHandler.CompleteCheckup)
			scheduleRoutes.PATCH("/:id/cancel", clinicians, scheduleHandler.CancelSchedule)
		}

		// PD exchange logs
		treatmentRoutes := private.Group("/treatments")
		{
			treatmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), treatmentHandler.LogTreatment)
			treatmentRoutes.GET("", treatmentHandler.GetTreatments)         // Auth in handler
			treatmentRoutes.GET("/:id", treatmentHandler.GetTreatmentByID) // Auth in handler
		}

		// Prescriptions
		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), prescriptionHandler.CreatePrescription)
			prescriptionRoutes.GET("/patient/:patientId", prescriptionHandler.GetPrescriptionsForPatient) // Auth in handler
			prescriptionRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), prescriptionHandler.UpdatePrescription)
		}

		// Lab results
		labResultRoutes := private.Group("/lab-results")
		{
			labResultRoutes.POST("", clinicians, labResultHandler.CreateLabResult)
			labResultRoutes.GET("/patient/:patientId", labResultHandler.GetLabResultsForPatient) // Auth in handler
		}

		// In-app notifications
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationAsRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
