package constants

import "time"

const (
	MaxNameLength = 12
	MaxScore      = 999999
	DefaultLimit  = 20
	MaxLimit      = 100
	StorageLimit  = 5000
)

const (
	RateLimitMax    = 3
	RateLimitWindow = 60 * time.Second
)

const (
	ScoreKeyPrefix     = "lb:v1"
	RateLimitKeyPrefix = "rl:v1"
	UnknownClientID    = "unknown"
)

const (
	DatabaseTimeout = 5 * time.Second
	ShutdownTimeout = 5 * time.Second
	PurgeInterval   = 10 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	MaxRequestBodyBytes = 16 << 10
	AppendMaxAttempts   = 3
	PreflightMaxAge     = 86400
)
