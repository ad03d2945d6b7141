// Package config loads and validates the application configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/football-manager-sim/internal/logger"
	"github.com/maxviazov/football-manager-sim/internal/simulation"
	"github.com/maxviazov/football-manager-sim/internal/softstate"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	App        AppConfig           `mapstructure:"app"`
	Logger     logger.LoggerConfig `mapstructure:"logger"`
	Store      StoreConfig         `mapstructure:"store"`
	Postgres   PostgresConfig      `mapstructure:"postgres"`
	Simulation simulation.Config   `mapstructure:"simulation"`
	SoftState  softstate.Config    `mapstructure:"softstate"`
	HTTP       HTTPConfig          `mapstructure:"http"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Port    int    `mapstructure:"port" validate:"gt=0,lte=65535"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory file postgres"`
	// Path is the JSON-lines log for the file driver.
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

type HTTPConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"gte=0"`
}

// Default returns a complete configuration backed by the in-memory store.
func Default() *Config {
	return &Config{
		App: AppConfig{Name: "football-manager-sim", Version: "0.1.0", Env: "dev", Port: 8080},
		Logger: logger.LoggerConfig{
			Level: "info", Format: "console", OutputTarget: "stdout", TimeField: "ts", TimeFormat: "rfc3339",
			Env: "dev", StacktraceMinLevel: "error",
		},
		Store: StoreConfig{Driver: DriverMemory, Path: "data/events.jsonl"},
		Postgres: PostgresConfig{
			Host: "localhost", Port: 5432, SSLMode: "disable",
			MaxConns: 10, MinConns: 1, MaxConnLifetime: 3600, MaxConnIdleTime: 300, HealthCheckPeriod: 30,
		},
		Simulation: simulation.DefaultConfig(),
		SoftState:  softstate.DefaultConfig(),
		HTTP:       HTTPConfig{AllowedOrigins: []string{"*"}, RateLimit: 20, RateBurst: 40},
	}
}

// Validate checks tags and the cross-section rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	var errs []error
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.User == "" || c.Postgres.Password == "" || c.Postgres.DBName == "" {
			errs = append(errs, errors.New("postgres.user, postgres.password and postgres.db are required for the postgres driver"))
		}
		if c.Postgres.Host == "" || c.Postgres.Port <= 0 {
			errs = append(errs, errors.New("postgres.host and postgres.port are required for the postgres driver"))
		}
	case DriverFile:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the file driver"))
		}
	}
	if c.SoftState.Provider == softstate.ProviderGemini && c.SoftState.APIKey == "" {
		errs = append(errs, errors.New("softstate.api_key is required for the gemini provider"))
	}
	return errors.Join(errs...)
}
