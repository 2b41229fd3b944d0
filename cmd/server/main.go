package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"estatecrm/internal/adapters/http/middleware"
	"estatecrm/internal/adapters/http/routes"
	"estatecrm/internal/adapters/persistence/models"
	"estatecrm/internal/adapters/persistence/repositories"
	"estatecrm/internal/adapters/storage/objectstore"
	"estatecrm/internal/config"
	"estatecrm/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "estatecrm/docs" // Swagger docs
)

// @title EstateCRM API
// @version 1.0
// @description Real-estate agency CRM backend API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@estate.example.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.crm.estate.example.com
// @BasePath /api
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the initial superuser account
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed initial data: %v", err)
	}

	// Optional Redis identity cache
	rdb := config.NewRedisClient(cfg)

	// Optional object store; without a bucket the file endpoints stay off
	var store services.ObjectStore
	if cfg.S3.Bucket != "" {
		s3Store, err := objectstore.NewS3Store(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("❌ Failed to initialize object store: %v", err)
		}
		store = s3Store
	} else {
		log.Println("⚠️ No S3 bucket configured, file endpoints disabled")
	}

	// Start cron service (expired refresh token purge, 03:30 daily)
	cronService := services.NewCronService(repositories.NewRefreshTokenRepository(db))
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "EstateCRM API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass dependencies for injection)
	routes.Setup(app, db, rdb, store, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
