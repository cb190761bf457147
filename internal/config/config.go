package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store selects the snapshot persistence backend
type Store string

const (
	StoreMemory Store = "memory"
	StoreRedis  Store = "redis"
	StoreSQLite Store = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Store     Store
	Redis     RedisConfig
	SQLite    SQLiteConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Combat    CombatConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// URL, when set, wins over Addr/Password/DB
	URL string
}

// SQLiteConfig holds the sqlite database location
type SQLiteConfig struct {
	Path string
}

// LogConfig is passed to logger.New
type LogConfig struct {
	Level  string
	Format string
}

// TelemetryConfig toggles OpenTelemetry export
type TelemetryConfig struct {
	Enabled bool
}

// CombatConfig holds the tunables of an encounter
type CombatConfig struct {
	AreaWidth                 float64
	AreaDepth                 float64
	GridSize                  float64
	DefaultMovement           float64
	LOSCacheTTL               time.Duration
	PersistentEffectThreshold int
	DefaultTerrain            bool
	StaticInitiative          bool
	Seed                      int64
}

// DefaultCombatConfig returns the stock encounter tunables
func DefaultCombatConfig() CombatConfig {
	return CombatConfig{
		AreaWidth:                 20,
		AreaDepth:                 20,
		GridSize:                  1,
		DefaultMovement:           30,
		LOSCacheTTL:               500 * time.Millisecond,
		PersistentEffectThreshold: 10,
		DefaultTerrain:            true,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	defaults := DefaultCombatConfig()

	cfg := &Config{
		Store: Store(strings.ToLower(getEnvOrDefault("STORE", string(StoreMemory)))),
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			URL:      os.Getenv("REDIS_URL"),
		},
		SQLite: SQLiteConfig{
			Path: getEnvOrDefault("SQLITE_PATH", "combat.db"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
		Telemetry: TelemetryConfig{
			Enabled: getEnvAsBoolOrDefault("OTEL_ENABLED", false),
		},
		Combat: CombatConfig{
			AreaWidth:                 getEnvAsFloatOrDefault("COMBAT_AREA_WIDTH", defaults.AreaWidth),
			AreaDepth:                 getEnvAsFloatOrDefault("COMBAT_AREA_DEPTH", defaults.AreaDepth),
			GridSize:                  getEnvAsFloatOrDefault("COMBAT_GRID_SIZE", defaults.GridSize),
			DefaultMovement:           getEnvAsFloatOrDefault("COMBAT_DEFAULT_MOVEMENT", defaults.DefaultMovement),
			LOSCacheTTL:               getEnvAsDurationOrDefault("COMBAT_LOS_CACHE_TTL", defaults.LOSCacheTTL),
			PersistentEffectThreshold: getEnvAsIntOrDefault("COMBAT_PERSISTENT_EFFECT_THRESHOLD", defaults.PersistentEffectThreshold),
			DefaultTerrain:            getEnvAsBoolOrDefault("COMBAT_DEFAULT_TERRAIN", defaults.DefaultTerrain),
			StaticInitiative:          getEnvAsBoolOrDefault("COMBAT_STATIC_INITIATIVE", false),
			Seed:                      int64(getEnvAsIntOrDefault("COMBAT_SEED", 0)),
		},
	}

	// Validate
	switch cfg.Store {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return nil, fmt.Errorf("STORE must be one of memory, redis, sqlite (got %q)", cfg.Store)
	}
	if cfg.Combat.GridSize <= 0 {
		return nil, fmt.Errorf("COMBAT_GRID_SIZE must be positive")
	}
	if cfg.Combat.AreaWidth <= 0 || cfg.Combat.AreaDepth <= 0 {
		return nil, fmt.Errorf("COMBAT_AREA_WIDTH and COMBAT_AREA_DEPTH must be positive")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
