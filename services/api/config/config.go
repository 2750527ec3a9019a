package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort             = 5000
	defaultHistoryLimit     = 20
	defaultRefreshInterval  = 60 * time.Second
	defaultQueryTimeout     = 5 * time.Second
	defaultReadingsTable    = "room_state"
	defaultPersonsColumn    = "total_persons"
	defaultTimestampColumn  = "timestamp"
	defaultBreakerThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second
)

// Config holds environment-driven settings for the occupancy API.
type Config struct {
	DatabaseURL string
	Port        int
	BearerToken string

	HistoryLimit    int
	RefreshInterval time.Duration
	QueryTimeout    time.Duration
	RefreshOnRead   bool

	ReadingsTable   string
	PersonsColumn   string
	TimestampColumn string

	BreakerThreshold uint32
	BreakerTimeout   time.Duration

	RedisURL string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:             defaultPort,
		HistoryLimit:     defaultHistoryLimit,
		RefreshInterval:  defaultRefreshInterval,
		QueryTimeout:     defaultQueryTimeout,
		ReadingsTable:    defaultReadingsTable,
		PersonsColumn:    defaultPersonsColumn,
		TimestampColumn:  defaultTimestampColumn,
		BreakerThreshold: defaultBreakerThreshold,
		BreakerTimeout:   defaultBreakerTimeout,
		LogLevel:         "info",
		LogFormat:        "json",
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if limitStr := os.Getenv("OCCUPANCY_HISTORY_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			cfg.HistoryLimit = limit
		} else {
			return cfg, fmt.Errorf("invalid OCCUPANCY_HISTORY_LIMIT: %s", limitStr)
		}
	}

	var err error
	if cfg.RefreshInterval, err = positiveDuration("OCCUPANCY_REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return cfg, err
	}
	if cfg.QueryTimeout, err = positiveDuration("OCCUPANCY_QUERY_TIMEOUT", cfg.QueryTimeout); err != nil {
		return cfg, err
	}
	if cfg.BreakerTimeout, err = positiveDuration("BREAKER_OPEN_TIMEOUT", cfg.BreakerTimeout); err != nil {
		return cfg, err
	}

	onRead := strings.TrimSpace(os.Getenv("OCCUPANCY_REFRESH_ON_READ"))
	cfg.RefreshOnRead = onRead == "1" || strings.EqualFold(onRead, "true")

	if v := strings.TrimSpace(os.Getenv("OCCUPANCY_TABLE")); v != "" {
		cfg.ReadingsTable = v
	}
	if v := strings.TrimSpace(os.Getenv("OCCUPANCY_PERSONS_COLUMN")); v != "" {
		cfg.PersonsColumn = v
	}
	if v := strings.TrimSpace(os.Getenv("OCCUPANCY_TIMESTAMP_COLUMN")); v != "" {
		cfg.TimestampColumn = v
	}

	if v := strings.TrimSpace(os.Getenv("BREAKER_FAILURE_THRESHOLD")); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return cfg, fmt.Errorf("invalid BREAKER_FAILURE_THRESHOLD: %s", v)
		}
		cfg.BreakerThreshold = uint32(n)
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return cfg, nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func positiveDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return fallback, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
