package config

import (
	"fmt"
	"lexi-leaderboard/internal/constants"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

type Config struct {
	ServerPort       string
	MetricsPort      string
	LogLevel         string
	StoreDriver      string
	DBPath           string
	AllowedOrigins   []string
	RateLimitEnabled bool
	CORSDebug        bool
	PurgeInterval    time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		MetricsPort:      getEnv("METRICS_PORT", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite)),
		DBPath:           getEnv("DB_PATH", "leaderboard.db"),
		AllowedOrigins:   ParseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		RateLimitEnabled: getEnvBool(logger, "RATE_LIMIT_ENABLED", true),
		CORSDebug:        getEnvBool(logger, "CORS_DEBUG", false),
		PurgeInterval:    getEnvDuration(logger, "PURGE_INTERVAL", constants.PurgeInterval),
	}

	switch cfg.StoreDriver {
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("metrics_port", cfg.MetricsPort).
		Str("log_level", cfg.LogLevel).
		Str("store_driver", cfg.StoreDriver).
		Str("db_path", cfg.DBPath).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("rate_limit_enabled", cfg.RateLimitEnabled).
		Dur("purge_interval", cfg.PurgeInterval).
		Msg("configuration loaded")

	return cfg, nil
}

// ParseOrigins splits a comma separated allow-list. An empty result means
// every origin is allowed.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(logger zerolog.Logger, key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Bool("default", fallback).Msg("invalid bool, using default")
		return fallback
	}
	return b
}

func getEnvDuration(logger zerolog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn().Str("key", key).Str("value", v).Dur("default", fallback).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

var Module = fx.Provide(Load)
