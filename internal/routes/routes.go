package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/partnerly/backend/internal/config"
	"github.com/partnerly/backend/internal/handlers"
	"github.com/partnerly/backend/internal/jobs"
	"github.com/partnerly/backend/internal/middleware"
	"github.com/partnerly/backend/internal/services/storage"
	"github.com/partnerly/backend/internal/verification"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	svc *verification.Service,
	uploader storage.Uploader,
	notifier *jobs.NotificationJob,
) {
	// 60 requests/second per IP, 10 auth attempts per minute
	rateLimiter := middleware.NewRateLimiter(60, 10, 20, 5)
	router.Use(rateLimiter.IPRateLimiterMiddleware())

	authHandler := handlers.NewAuthHandler(db, cfg, notifier)
	onboardingHandler := handlers.NewOnboardingHandler(db, svc, uploader, notifier)
	partnerHandler := handlers.NewPartnerHandler(db, svc)
	adminHandler := handlers.NewAdminHandler(db, svc, notifier)

	authGroup := router.Group("/api/auth")
	authGroup.Use(rateLimiter.AuthRateLimiterMiddleware())
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/refresh", authHandler.RefreshToken)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.GET("/verify-email", authHandler.VerifyEmail)
		authGroup.POST("/resend-verification", authHandler.ResendVerificationEmail)
		authGroup.POST("/google", authHandler.GoogleAuth)
	}

	// Public: answers LOGIN when the token is missing or invalid
	router.GET("/api/route", partnerHandler.Route)

	onboardingGroup := router.Group("/api/partner/onboarding")
	onboardingGroup.Use(middleware.AuthMiddleware())
	{
		onboardingGroup.GET("/status", onboardingHandler.Status)
		onboardingGroup.PUT("/company", onboardingHandler.SaveCompany)
		onboardingGroup.PUT("/services", onboardingHandler.SaveServices)
		onboardingGroup.PUT("/locations", onboardingHandler.SaveLocations)
		onboardingGroup.POST("/portfolio", onboardingHandler.AddPortfolioImage)
		onboardingGroup.DELETE("/portfolio/:imageId", onboardingHandler.RemovePortfolioImage)
		onboardingGroup.POST("/documents", onboardingHandler.UploadDocument)
		onboardingGroup.POST("/submit", onboardingHandler.Submit)
	}

	partnerGroup := router.Group("/api/partner")
	partnerGroup.Use(middleware.AuthMiddleware())
	{
		partnerGroup.GET("/profile", partnerHandler.Profile)
		partnerGroup.GET("/history", partnerHandler.History)
		partnerGroup.GET("/dashboard", partnerHandler.Dashboard)
	}

	adminGroup := router.Group("/api/admin/partners")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		adminGroup.GET("", adminHandler.ListPartners)
		adminGroup.POST("/bulk", adminHandler.BulkDecision)
		adminGroup.GET("/:id", adminHandler.GetPartner)
		adminGroup.POST("/:id/verify", adminHandler.VerifyPartner)
		adminGroup.POST("/:id/reject", adminHandler.RejectPartner)
		adminGroup.GET("/:id/history", adminHandler.PartnerHistory)
		adminGroup.POST("/:id/documents/:docId/approve", adminHandler.ApproveDocument)
		adminGroup.POST("/:id/documents/:docId/reject", adminHandler.RejectDocument)
	}
}
