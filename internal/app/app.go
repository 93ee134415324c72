// Package app assembles the HTTP application from its repositories,
// services and handlers.
package app

import (
	"errors"
	"time"

	"contactbook/internal/config"
	"contactbook/internal/handlers"
	"contactbook/internal/middleware"
	"contactbook/internal/repositories"
	"contactbook/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Options tunes New.
type Options struct {
	// Publisher receives contact events; nil disables publishing.
	Publisher services.EventPublisher
	// AccessLog enables the per-request access log.
	AccessLog bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// New wires repositories, services and handlers into a Fiber app.
func New(cfg *config.Config, db *gorm.DB, opts Options) *fiber.App {
	// Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	contactRepo := repositories.NewGORMContactRepository(db)

	// Services
	credentials := services.NewCredentialService(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	contactService := services.NewContactService(contactRepo, opts.Publisher, cfg.BirthdayWindowDays)
	if opts.Now != nil {
		credentials.WithClock(opts.Now)
		contactService.WithClock(opts.Now)
	}
	authService := services.NewAuthService(userRepo, credentials)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	contactHandler := handlers.NewContactHandler(contactService)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			log.Warn().Err(err).Msg("health check: database unreachable")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
		})
	})

	// Public routes
	authHandler.RegisterRoutes(app)

	// Protected routes
	contacts := app.Group("/contacts", middleware.AuthRequired(authService))
	contactHandler.RegisterRoutes(contacts)

	return app
}

// errorHandler renders errors that escaped the handlers, such as unknown
// routes, as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{
		"message": message,
	})
}
