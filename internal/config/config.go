package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Coach    CoachConfig
	Audit    AuditConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
	GinMode           string
}

// DatabaseConfig selects the store backend. URL is a Postgres connection
// string for the postgres driver and a file path for sqlite.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// CoachConfig holds the engine parameters and the zone that defines "today".
type CoachConfig struct {
	ActivityCoefficient float64
	MaxReductionRate    float64
	Location            *time.Location
}

// AuditConfig drives the nightly risk snapshot job and the morning reminder
// sweep. Both specs are evaluated in Coach.Location.
type AuditConfig struct {
	Schedule         string
	ReminderSchedule string
	Workers          int
	Enabled          bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultHost                = "0.0.0.0"
	defaultPort                = 8080
	defaultReadTimeout         = 10 * time.Second
	defaultWriteTimeout        = 15 * time.Second
	defaultIdleTimeout         = 60 * time.Second
	defaultShutdownTimeout     = 10 * time.Second
	defaultGinMode             = "release"
	defaultSQLitePath          = "diet-mentor.db"
	defaultLoggingLevel        = "info"
	defaultLoggingFormat       = "text"
	defaultActivityCoefficient = 1.4
	defaultMaxReductionRate    = 0.04
	defaultTimezone            = "Asia/Tokyo"
	defaultAuditSchedule       = "30 23 * * *"
	defaultReminderSchedule    = "0 10 * * *"
	defaultAuditWorkers        = 4
)

var ErrMissingDatabaseURL = errors.New("DB_URL is required for the postgres driver")

// Load reads configuration from environment variables, applying defaults.
// A .env file in the working directory is loaded first when present.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
			GinMode:           valueOrDefault("GIN_MODE", defaultGinMode),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(valueOrDefault("DB_DRIVER", DriverPostgres)),
			URL:    os.Getenv("DB_URL"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Audit: AuditConfig{
			Schedule:         valueOrDefault("AUDIT_SCHEDULE", defaultAuditSchedule),
			ReminderSchedule: valueOrDefault("REMINDER_SCHEDULE", defaultReminderSchedule),
			Workers:          parseIntWithDefault("AUDIT_WORKERS", defaultAuditWorkers),
			Enabled:          parseBoolWithDefault("AUDIT_ENABLED", true),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	for key, dst := range map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":     &cfg.HTTP.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    &cfg.HTTP.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":     &cfg.HTTP.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.HTTP.ShutdownTimeout,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.URL == "" {
			return Config{}, ErrMissingDatabaseURL
		}
	case DriverSQLite:
		if cfg.Database.URL == "" {
			cfg.Database.URL = defaultSQLitePath
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.Coach.ActivityCoefficient, err = parseFloatWithDefault("COACH_ACTIVITY_COEFFICIENT", defaultActivityCoefficient); err != nil {
		return Config{}, err
	}
	if cfg.Coach.ActivityCoefficient <= 0 {
		return Config{}, fmt.Errorf("COACH_ACTIVITY_COEFFICIENT must be positive, got %g", cfg.Coach.ActivityCoefficient)
	}
	if cfg.Coach.MaxReductionRate, err = parseFloatWithDefault("COACH_MAX_REDUCTION_RATE", defaultMaxReductionRate); err != nil {
		return Config{}, err
	}

	tz := valueOrDefault("COACH_TIMEZONE", defaultTimezone)
	if cfg.Coach.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("invalid COACH_TIMEZONE %q: %w", tz, err)
	}

	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = defaultAuditWorkers
	}

	return cfg, nil
}

// AllowedOrigins splits AllowedOriginsCSV, dropping blanks.
func (c HTTPConfig) AllowedOrigins() []string {
	if c.AllowedOriginsCSV == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(c.AllowedOriginsCSV, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseFloatWithDefault(key string, fallback float64) (float64, error) {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		return val, nil
	}
	return fallback, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
