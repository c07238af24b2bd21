package api

import (
	"net/http"

	"healthyhowlz/backend/internal/domain" // Needed for RoleMiddleware
	"healthyhowlz/backend/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trainerService service.TrainerService,
	planService service.PlanService,
	templateService service.TemplateService,
	sessionService service.SessionService,
	clientService service.ClientService,
) {
	authHandler := NewAuthHandler(authService)
	trainerHandler := NewTrainerHandler(trainerService, sessionService)
	planHandler := NewPlanHandler(planService)
	templateHandler := NewTemplateHandler(templateService)
	sessionHandler := NewSessionHandler(sessionService)
	measurementHandler := NewMeasurementHandler(clientService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// Profile, for both roles
		protected.GET("/me/profile", authHandler.GetProfile)
		protected.PUT("/me/profile", authHandler.UpdateProfile)

		// --- Client Self-Service Routes ---
		meGroup := protected.Group("/me")
		meGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			// GET /api/v1/me/sessions?start_date=...&end_date=...
			meGroup.GET("/sessions", sessionHandler.GetMySessions)

			// Plan viewing for the authenticated client
			meGroup.GET("/diet-plans/current", planHandler.GetCurrentVersion(domain.PlanTypeDiet))
			meGroup.GET("/diet-plans/versions", planHandler.GetVersions(domain.PlanTypeDiet))
			meGroup.GET("/diet-plans/:versionId", planHandler.GetVersionByID)
			meGroup.GET("/workout-plans/current", planHandler.GetCurrentVersion(domain.PlanTypeWorkout))
			meGroup.GET("/workout-plans/versions", planHandler.GetVersions(domain.PlanTypeWorkout))
			meGroup.GET("/workout-plans/:versionId", planHandler.GetVersionByID)

			// Body measurements + progress photos
			meGroup.POST("/measurements", measurementHandler.LogMeasurement)
			meGroup.GET("/measurements", measurementHandler.GetMeasurements)
			meGroup.POST("/measurements/photo-upload-url", measurementHandler.RequestPhotoUploadURL)
			meGroup.GET("/measurements/photo-download-url", measurementHandler.GetPhotoDownloadURL)
		}

		// --- Trainer Specific Routes ---
		// All routes in this group require authentication (from 'protected')
		// AND the user to have the 'trainer' role.
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// Roster management
			trainerApiGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", trainerHandler.GetManagedClients)
			trainerApiGroup.GET("/clients/:clientId", trainerHandler.GetClientDetail)
			trainerApiGroup.PATCH("/clients/:clientId/allotment", trainerHandler.SetSessionAllotment)
			trainerApiGroup.POST("/clients/:clientId/sessions/complete", trainerHandler.CompleteNextSession)

			// Plan versioning per managed client
			trainerApiGroup.GET("/clients/:clientId/diet-plans/current", planHandler.GetCurrentVersion(domain.PlanTypeDiet))
			trainerApiGroup.GET("/clients/:clientId/diet-plans/versions", planHandler.GetVersions(domain.PlanTypeDiet))
			trainerApiGroup.GET("/clients/:clientId/diet-plans/:versionId", planHandler.GetVersionByID)
			trainerApiGroup.POST("/clients/:clientId/diet-plans", planHandler.CreateVersion(domain.PlanTypeDiet))
			trainerApiGroup.GET("/clients/:clientId/workout-plans/current", planHandler.GetCurrentVersion(domain.PlanTypeWorkout))
			trainerApiGroup.GET("/clients/:clientId/workout-plans/versions", planHandler.GetVersions(domain.PlanTypeWorkout))
			trainerApiGroup.GET("/clients/:clientId/workout-plans/:versionId", planHandler.GetVersionByID)
			trainerApiGroup.POST("/clients/:clientId/workout-plans", planHandler.CreateVersion(domain.PlanTypeWorkout))

			// Client measurements, read-only for the trainer
			trainerApiGroup.GET("/clients/:clientId/measurements", measurementHandler.GetMeasurements)
			trainerApiGroup.GET("/clients/:clientId/measurements/photo-download-url", measurementHandler.GetPhotoDownloadURL)

			// Template library
			trainerApiGroup.GET("/templates/diet", templateHandler.GetTemplates(domain.PlanTypeDiet))
			trainerApiGroup.POST("/templates/diet", templateHandler.CreateTemplate(domain.PlanTypeDiet))
			trainerApiGroup.GET("/templates/workout", templateHandler.GetTemplates(domain.PlanTypeWorkout))
			trainerApiGroup.POST("/templates/workout", templateHandler.CreateTemplate(domain.PlanTypeWorkout))
			trainerApiGroup.GET("/templates/:templateId", templateHandler.GetTemplateByID)
			trainerApiGroup.PUT("/templates/:templateId", templateHandler.UpdateTemplate)
			trainerApiGroup.DELETE("/templates/:templateId", templateHandler.DeleteTemplate)

			// Session scheduling and lifecycle
			trainerApiGroup.POST("/sessions", sessionHandler.CreateSessions)
			trainerApiGroup.GET("/sessions", sessionHandler.GetTrainerSessions)
			trainerApiGroup.PATCH("/sessions/:sessionId", sessionHandler.PatchSession)
			trainerApiGroup.DELETE("/sessions/:sessionId", sessionHandler.DeleteSession)
		}
	}
}
