package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmwangi/bursaryhub/internal/app/controllers"
	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/config"
	"github.com/jmwangi/bursaryhub/internal/middleware"
	"github.com/jmwangi/bursaryhub/internal/pkg/metrics"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	cfg *config.Config,
	authController *controllers.AuthController,
	applicationController *controllers.ApplicationController,
	officerController *controllers.OfficerController,
	geographyController *controllers.GeographyController,
	siteController *controllers.SiteController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}, "Service healthy"))
	})

	if cfg.Metrics.Enabled {
		router.GET("/metrics", metrics.Handler())
	}

	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	geography := v1.Group("/geography")
	{
		geography.GET("/counties", geographyController.ListCounties)
		geography.GET("/constituencies", geographyController.ListConstituencies)
		geography.GET("/wards", geographyController.ListWards)
	}

	v1.GET("/site", siteController.Profile)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authProtected := authenticated.Group("/auth")
		{
			authProtected.POST("/logout", authController.Logout)
			authProtected.GET("/me", authController.Profile)
			authProtected.POST("/upgrade", authController.Upgrade)
			authProtected.POST("/verify", authController.VerificationStatus)
			authProtected.PUT("/password", authController.ChangePassword)
		}

		// Application routes are student-only. Submission additionally
		// requires a verified account; the service enforces it too so the
		// rule survives any future route change.
		applications := authenticated.Group("/applications")
		applications.Use(authMiddleware.RoleRequired(models.RoleStudent))
		{
			applications.POST("", authMiddleware.VerifiedStudentRequired(), applicationController.Submit)
			applications.GET("", applicationController.ListMine)
			applications.GET("/:id", applicationController.Get)
		}

		officers := authenticated.Group("/officers")
		officers.Use(authMiddleware.RoleRequired(models.RoleOfficer, models.RoleAdmin))
		{
			officers.GET("/review", officerController.ListReviewQueue)
			officers.PUT("/review/:id", officerController.Review)
			officers.GET("/activity", officerController.Activity)

			officersAdmin := officers.Group("")
			officersAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				officersAdmin.POST("", officerController.CreateOfficer)
				officersAdmin.GET("", officerController.ListOfficers)
			}
		}

		site := authenticated.Group("/site")
		site.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			site.PUT("/deadline", siteController.UpdateDeadline)
		}
	}
}
