package routes

import (
	"bloodlink/internal/adapters/http/handlers"
	"bloodlink/internal/adapters/http/middleware"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/config"
	"bloodlink/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	donationRepo := repositories.NewDonationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	requestService := services.NewRequestService(requestRepo, userRepo)
	donationService := services.NewDonationService(donationRepo, requestRepo, userRepo)
	statsService := services.NewStatsService(db, requestRepo, userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService, authService)
	requestHandler := handlers.NewRequestHandler(requestService)
	donationHandler := handlers.NewDonationHandler(donationService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler,
		requestHandler, donationHandler, statsHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	requestHandler *handlers.RequestHandler,
	donationHandler *handlers.DonationHandler,
	statsHandler *handlers.StatsHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Blood request routes
	requestRoutes := router.Group("/requests")
	setupRequestRoutes(requestRoutes, requestHandler, cfg)

	// Donation routes (Donors only)
	donationRoutes := router.Group("/donations")
	donationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDonationRoutes(donationRoutes, donationHandler)

	// Statistics routes
	statsRoutes := router.Group("/stats")
	setupStatsRoutes(statsRoutes, statsHandler, cfg)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/users")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(profileRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (stricter rate limit against credential stuffing)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupRequestRoutes configures blood request routes
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler, cfg *config.Config) {
	// Public browsing of the active request board
	router.Get("/", handler.List)

	// Authenticated routes
	auth := router.Group("")
	auth.Use(middleware.AuthMiddleware(cfg))

	auth.Get("/mine", handler.ListMine)
	auth.Get("/donors", handler.Donors)
	auth.Post("/", middleware.RequesterOnly(), handler.Create)
	auth.Get("/:id", handler.Get)
	auth.Patch("/:id", handler.Update)
	auth.Post("/:id/fulfill", middleware.DonorOnly(), handler.Fulfill)
	auth.Post("/:id/cancel", handler.Cancel)
}

// setupDonationRoutes configures donation record routes
func setupDonationRoutes(router fiber.Router, handler *handlers.DonationHandler) {
	router.Post("/", middleware.DonorOnly(), handler.Create)
	router.Get("/mine", handler.ListMine)
	router.Get("/:id", handler.Get)
	router.Patch("/:id", middleware.DonorOnly(), handler.Update)
	router.Post("/:id/complete", middleware.DonorOnly(), handler.Complete)
	router.Post("/:id/cancel", middleware.DonorOnly(), handler.Cancel)
}

// setupStatsRoutes configures statistics routes
func setupStatsRoutes(router fiber.Router, handler *handlers.StatsHandler, cfg *config.Config) {
	// Public aggregates (short cache)
	router.Get("/requests", middleware.StatsCache(), handler.Requests)
	router.Get("/donations", middleware.StatsCache(), handler.Donations)
	router.Get("/leaderboard", middleware.StatsCache(), handler.Leaderboard)
	router.Get("/blood-groups", middleware.StatsCache(), handler.BloodGroups)

	// Authenticated summaries
	router.Get("/me", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders(), handler.Me)
	router.Get("/users/:id", middleware.AuthMiddleware(cfg), handler.User)
}

// setupUserRoutes configures profile and account routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/profile", handler.GetProfile)
	router.Patch("/profile", handler.UpdateProfile)
	router.Delete("/profile", middleware.StrictRateLimiter(), handler.DeleteAccount)

	// Admin only
	router.Get("/", middleware.AdminOnly(), handler.List)
}
