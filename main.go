package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
	"gorm.io/gorm/logger"

	"contactbook/internal/app"
	"contactbook/internal/config"
	"contactbook/internal/database"
	"contactbook/internal/logging"
	"contactbook/internal/services"
	"contactbook/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Setup(cfg.LogLevel, os.Stderr)

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, logger.Warn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to access database pool")
	}
	defer sqlDB.Close()

	// --- Contact events (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient

		// Audit trail of contact changes.
		if err := mqClient.Consume(func(msg amqp.Delivery) error {
			log.Info().Str("event", msg.Type).RawJSON("payload", msg.Body).Msg("contact event")
			return nil
		}); err != nil {
			log.Error().Err(err).Msg("Failed to start RabbitMQ consumer")
		}
	} else {
		log.Info().Msg("RABBITMQ_URL not set, contact events are disabled")
	}

	// --- HTTP ---
	fiberApp := app.New(cfg, db, app.Options{Publisher: publisher, AccessLog: true})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("Starting server")
		if err := fiberApp.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := fiberApp.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	log.Info().Msg("Server gracefully stopped")
}
