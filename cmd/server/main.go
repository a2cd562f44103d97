package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"aphc-housingportal/internal/adapters/http/middleware"
	"aphc-housingportal/internal/adapters/http/routes"
	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "aphc-housingportal/docs" // Swagger docs
)

// @title AP Housing Portal API
// @version 1.0
// @description Housing subsidy application portal for Andhra Pradesh Housing Corporation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@housing.ap.gov.in

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host housing.ap.gov.in
// @BasePath /api/v1
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

	// Seed default staff accounts (dev convenience)
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed staff accounts: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AP Housing Portal API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	cronService, err := routes.Setup(app, db, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to set up routes: %v", err)
	}

	// Start cron maintenance (OTP sweep, token purge)
	cronService.Start()
	defer cronService.Stop()

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
