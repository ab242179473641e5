package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/partnerly/backend/internal/config"
	"github.com/partnerly/backend/internal/database"
	"github.com/partnerly/backend/internal/database/migrations"
	"github.com/partnerly/backend/internal/jobs"
	"github.com/partnerly/backend/internal/queue"
	"github.com/partnerly/backend/internal/routes"
	"github.com/partnerly/backend/internal/services/email"
	"github.com/partnerly/backend/internal/services/storage"
	"github.com/partnerly/backend/internal/verification"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Invalid redis URL: %v", err)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)

	emailSvc := email.NewEmailService(cfg.SMTP, cfg.FrontendURL)
	uploader := storage.NewCloudinaryService(cfg.Storage)

	verificationSvc := verification.NewService(
		verification.NewGormStore(db),
		verification.NewRedisLocker(redisClient),
		verification.Config{RequireDocumentResubmission: cfg.Verification.RequireDocumentResubmission},
	)

	jobQueue := queue.NewQueue(db)
	notifier := jobs.RegisterAllJobHandlers(jobQueue, db, emailSvc)
	jobQueue.StartProcessing()
	defer jobQueue.Close()

	staleJob, err := jobs.ScheduleRecurringJobs(db, emailSvc, cfg.Verification)
	if err != nil {
		log.Fatalf("Failed to schedule recurring jobs: %v", err)
	}
	defer staleJob.Stop()

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(router, db, cfg, verificationSvc, uploader, notifier)

	fmt.Printf("Partnerly API server running on port %s\n", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
