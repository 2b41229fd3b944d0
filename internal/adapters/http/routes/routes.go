package routes

import (
	"time"

	"estatecrm/internal/adapters/cache"
	"estatecrm/internal/adapters/http/handlers"
	"estatecrm/internal/adapters/http/middleware"
	"estatecrm/internal/adapters/persistence/repositories"
	"estatecrm/internal/config"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// identityCacheTTL keeps role and approval lookups off the hot path while
// bounding how long a revoked approval stays effective
const identityCacheTTL = 60 * time.Second

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, rdb *redis.Client, store services.ObjectStore, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	resourceRepo := repositories.NewResourceRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Identity cache (nil Redis client degrades to direct DB lookups)
	idCache := cache.NewIdentityCache(rdb, identityCacheTTL)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo, idCache)
	resourceService := services.NewResourceService(resourceRepo)
	reportService := services.NewReportService(userRepo, reportRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	api := app.Group("/api")

	// Auth routes (public, stricter rate limit, never cached)
	authRoutes := api.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, userHandler, userRepo, idCache, cfg)

	// Everything below requires a valid token and an approved account
	protected := api.Group("", middleware.Protected(cfg), middleware.ApprovalGate(userRepo, idCache))

	// User management routes (manage_users holders only)
	userRoutes := protected.Group("/users")
	userRoutes.Use(middleware.RequireCapability(domain.CapManageUsers))
	setupUserRoutes(userRoutes, userHandler)

	// Generic resource routes
	for _, def := range services.Resources() {
		setupResourceRoutes(protected.Group("/"+def.Name), resourceHandler, def.Name)
	}

	// Report signing rides on top of the generic reports resource
	protected.Post("/reports/:id/sign", reportHandler.Sign)

	// File routes (only when an object store is configured)
	if store != nil {
		fileService := services.NewFileService(store, resourceRepo)
		fileHandler := handlers.NewFileHandler(fileService)
		protected.Post("/files/upload", fileHandler.Upload)
		protected.Get("/files/*", middleware.PrivateCacheHeaders(5*time.Minute), fileHandler.Download)
	}
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(
	router fiber.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	userRepo repositories.UserRepository,
	idCache *cache.IdentityCache,
	cfg *config.Config,
) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), authHandler.Refresh)
	router.Post("/logout", authHandler.Logout)

	// Protected routes. Me and logout-all stay reachable for unapproved
	// accounts so a pending user can still see their own status.
	router.Get("/me", middleware.Protected(cfg), authHandler.Me)
	router.Post("/logout-all", middleware.Protected(cfg), authHandler.LogoutAll)
	router.Post("/signing-key", middleware.Protected(cfg), middleware.ApprovalGate(userRepo, idCache), userHandler.SigningKey)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
	router.Post("/:id/approve", handler.ApproveUser)
}

// setupResourceRoutes registers the generic CRUD surface for one resource
func setupResourceRoutes(router fiber.Router, handler *handlers.ResourceHandler, name string) {
	router.Get("/", handler.List(name))
	router.Post("/", handler.Create(name))
	router.Get("/:id", handler.Get(name))
	router.Put("/:id", handler.Update(name))
	router.Delete("/:id", handler.Delete(name))
}
