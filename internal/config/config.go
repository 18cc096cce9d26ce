// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	RabbitMQ RabbitMQConfig
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     string `mapstructure:"APP_PORT" validate:"required"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects and tunes the product store.
type DatabaseConfig struct {
	Driver       string        `mapstructure:"DB_DRIVER" validate:"required,oneof=postgres sqlite memory"`
	DSN          string        `mapstructure:"DATABASE_URL" validate:"required_unless=Driver memory"`
	QueryTimeout time.Duration `mapstructure:"QUERY_TIMEOUT" validate:"gte=0"`
}

// CORSConfig lists the origins browsers may call the API from.
type CORSConfig struct {
	FrontendURL string `mapstructure:"FRONTEND_URL" validate:"omitempty,url"`
	BackendURL  string `mapstructure:"BACKEND_URL" validate:"omitempty,url"`
}

// RabbitMQConfig enables product event publishing when URL is set.
type RabbitMQConfig struct {
	URL   string `mapstructure:"RABBITMQ_URL" validate:"omitempty,url"`
	Queue string `mapstructure:"RABBITMQ_QUEUE"`
}

var defaults = map[string]any{
	"APP_PORT":       ":4000",
	"LOG_LEVEL":      "info",
	"DB_DRIVER":      DriverPostgres,
	"DATABASE_URL":   "host=localhost user=postgres password=postgres dbname=products port=5432 sslmode=disable",
	"QUERY_TIMEOUT":  "5s",
	"FRONTEND_URL":   "",
	"BACKEND_URL":    "",
	"RABBITMQ_URL":   "",
	"RABBITMQ_QUEUE": "product_events",
}

// Load reads the configuration from the environment, and from the file named
// by CONFIG_FILE when set, then validates it.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	for _, section := range []any{&cfg.Server, &cfg.Database, &cfg.CORS, &cfg.RabbitMQ} {
		if err := v.Unmarshal(section); err != nil {
			return nil, fmt.Errorf("failed to decode configuration: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// AllowedOrigins returns the configured CORS origins, skipping unset ones.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range []string{c.CORS.FrontendURL, c.CORS.BackendURL} {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimSuffix(o, "/"))
		}
	}
	return origins
}
