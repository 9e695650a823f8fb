package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sunilgupta-arch/taskflow/controllers"
	"github.com/sunilgupta-arch/taskflow/database"
	"github.com/sunilgupta-arch/taskflow/middleware"
	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/notify"
	"github.com/sunilgupta-arch/taskflow/repository/gormstore"
	"github.com/sunilgupta-arch/taskflow/routes"
	"github.com/sunilgupta-arch/taskflow/scheduler"
	"github.com/sunilgupta-arch/taskflow/services"
	"github.com/sunilgupta-arch/taskflow/utils"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	// Always attempt to load so DB_HOST, DB_NAME, etc are available when running locally.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	// Validate required environment variables
	requiredEnvVars := []string{"DB_HOST", "DB_USER", "DB_PASS", "DB_NAME", "JWT_SECRET"}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto-migrate only in development to avoid accidental production schema changes
	if strings.ToLower(os.Getenv("ENV")) == "development" {
		log.Println("Running in development mode - performing auto-migration")
		if err := db.AutoMigrate(
			&models.User{},
			&models.Task{},
			&models.TaskAttachment{},
			&models.RewardEntry{},
			&models.AttendanceLog{},
		); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		log.Println("Auto-migration completed successfully")
	} else {
		log.Println("Running in production mode - skipping auto-migration")
	}

	store := gormstore.New(db)

	var notifier notify.Notifier = notify.Nop{}
	if utils.RedisClient != nil {
		notifier = notify.NewRedisNotifier(utils.RedisClient)
		log.Println("Redis notifier enabled")
	}

	taskSvc := services.NewTaskService(store, notifier)
	rewardSvc := services.NewRewardService(store, notifier)

	sched := scheduler.New(store)
	sched.Start()

	router := routes.InitRouter(routes.Controllers{
		Auth:       controllers.NewAuthController(store),
		Tasks:      controllers.NewTaskController(taskSvc),
		Rewards:    controllers.NewRewardController(rewardSvc),
		Attendance: controllers.NewAttendanceController(store),
		Cron:       controllers.NewCronController(sched),
	})

	// Wrap router with global middleware in recommended order
	// Logging -> Security headers -> Request ID -> Max Body -> Timeout -> Recovery
	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(
						middleware.RecoveryMiddleware(router),
					),
				),
			),
		),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sched.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := notifier.Close(); err != nil {
		log.Printf("[warn] notifier close: %v", err)
	}

	log.Println("Server exited")
}
