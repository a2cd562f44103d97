package routes

import (
	"aphc-housingportal/internal/adapters/http/handlers"
	"aphc-housingportal/internal/adapters/http/middleware"
	"aphc-housingportal/internal/adapters/persistence/repositories"
	"aphc-housingportal/internal/config"
	"aphc-housingportal/internal/core/services"
	"aphc-housingportal/internal/pkg/vault"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and wires the full
// service graph. Returns the cron service so main can manage its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) (*services.CronService, error) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	approvalRepo := repositories.NewApprovalRepository(db)
	otpRepo := repositories.NewOtpRepository(db)
	bankRepo := repositories.NewBankDetailsRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	contactRepo := repositories.NewContactRepository(db)

	// Bank detail vault
	bankVault, err := vault.New(cfg.Vault.Secret)
	if err != nil {
		return nil, err
	}

	// Initialize services
	auditService := services.NewAuditService(auditRepo)
	gateway := services.NewHTTPGateway(services.SMSGatewayConfig{
		APIURL:   cfg.SMS.APIURL,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
		Enabled:  cfg.SMS.APIKey != "",
	})
	notifyService := services.NewNotificationService(gateway, auditService)
	otpService := services.NewOtpService(otpRepo, notifyService, auditService)
	identityService := services.NewIdentityService(approvalRepo, auditService)
	appService := services.NewApplicationService(appRepo, paymentRepo, approvalRepo,
		otpService, notifyService, auditService, cfg.Fee)
	bankService := services.NewBankService(bankRepo, identityService, bankVault,
		auditService)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, auditService,
		services.AuthConfig{
			AccessSecret:        cfg.JWT.AccessSecret,
			RefreshSecret:       cfg.JWT.RefreshSecret,
			AccessExpiryMinutes: cfg.JWT.AccessTokenMins,
			RefreshExpiryDays:   cfg.JWT.RefreshTokenDays,
		})
	docService := services.NewDocumentService(identityService, otpService,
		services.NewCertificateGenerator(), auditService)
	contactService := services.NewContactService(contactRepo, auditService)
	cronService := services.NewCronService(otpService, refreshTokenRepo, appRepo,
		userRepo, notifyService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	otpHandler := handlers.NewOtpHandler(otpService)
	appHandler := handlers.NewApplicationHandler(appService)
	adminHandler := handlers.NewAdminHandler(appService, bankService, auditService)
	bankHandler := handlers.NewBankHandler(bankService, identityService)
	downloadHandler := handlers.NewDownloadHandler(docService)
	contactHandler := handlers.NewContactHandler(contactService)

	// Health check
	app.Get("/health", healthHandler.Check)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupPublicRoutes(apiV1, otpHandler, appHandler, bankHandler, downloadHandler, contactHandler)
	setupAuthRoutes(apiV1, authHandler, cfg)
	setupAdminRoutes(apiV1, adminHandler, cfg)

	return cronService, nil
}

// setupPublicRoutes configures the citizen-facing routes
func setupPublicRoutes(
	router fiber.Router,
	otpHandler *handlers.OtpHandler,
	appHandler *handlers.ApplicationHandler,
	bankHandler *handlers.BankHandler,
	downloadHandler *handlers.DownloadHandler,
	contactHandler *handlers.ContactHandler,
) {
	// OTP issuance is the hottest abuse target, strictest limiter
	router.Post("/otp/send", middleware.StrictRateLimiter(), otpHandler.Send)

	applications := router.Group("/applications")
	applications.Post("/register", appHandler.Register)
	applications.Post("/payment", appHandler.RecordPayment)
	applications.Post("/status", appHandler.CheckStatus)
	applications.Get("/transaction/:ref", appHandler.CheckStatusByTransaction)

	bank := router.Group("/bank-details")
	bank.Post("/verify", bankHandler.VerifyIdentity)
	bank.Post("/", bankHandler.Submit)

	download := router.Group("/download")
	download.Post("/request", middleware.StrictRateLimiter(), downloadHandler.Request)
	download.Post("/", downloadHandler.Download)

	router.Post("/contact", contactHandler.Submit)
}

// setupAuthRoutes configures staff authentication routes
func setupAuthRoutes(router fiber.Router, authHandler *handlers.AuthHandler, cfg *config.Config) {
	auth := router.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)
}

// setupAdminRoutes configures the protected review console routes
func setupAdminRoutes(router fiber.Router, adminHandler *handlers.AdminHandler, cfg *config.Config) {
	admin := router.Group("/admin", middleware.AuthMiddleware(cfg), middleware.WorkerOrAdmin())

	admin.Get("/applications", adminHandler.ListApplications)
	admin.Get("/applications/:id", adminHandler.GetApplication)
	admin.Post("/applications/:id/approve", adminHandler.Approve)
	admin.Post("/applications/:id/reject", adminHandler.Reject)

	// Decrypted bank view and audit trail are admin only
	admin.Get("/bank-details/:uniqueId", middleware.AdminOnly(), adminHandler.RevealBankDetails)
	admin.Get("/audit", middleware.AdminOnly(), adminHandler.ListAuditEvents)
}
