package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the service needs at startup.
type Config struct {
	AppPort  string
	LogLevel string

	// Database
	DBDriver    string // "postgres" or "sqlite"
	DatabaseDSN string

	// Tokens
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Empty disables contact event publishing.
	RabbitMQURL string

	BirthdayWindowDays int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper builds a Config from the given viper instance, applying defaults
// and environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "contacts.db")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("BIRTHDAY_WINDOW_DAYS", 7)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DBDriver:           v.GetString("DB_DRIVER"),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		AccessSecret:       v.GetString("JWT_ACCESS_SECRET"),
		RefreshSecret:      v.GetString("JWT_REFRESH_SECRET"),
		AccessTokenTTL:     v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:    v.GetDuration("REFRESH_TOKEN_TTL"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		BirthdayWindowDays: v.GetInt("BIRTHDAY_WINDOW_DAYS"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	// A bare number such as ACCESS_TOKEN_TTL=900 parses as nanoseconds.
	if c.AccessTokenTTL < time.Second || c.RefreshTokenTTL < time.Second {
		return fmt.Errorf("token TTLs must be at least 1s and carry a unit such as 15m, got %s and %s",
			c.AccessTokenTTL, c.RefreshTokenTTL)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.BirthdayWindowDays < 0 {
		return fmt.Errorf("BIRTHDAY_WINDOW_DAYS must not be negative, got %d", c.BirthdayWindowDays)
	}
	return nil
}
