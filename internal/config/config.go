package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCacheTTLSeconds is the query cache TTL; other values are an operational override.
const DefaultCacheTTLSeconds = 300

type Config struct {
	Port        string
	Environment string

	// File backend (v1) and seed source
	StationsFile string

	// Document backend (v2)
	DatabaseURL     string
	DocStoreEnabled bool
	BunDebug        bool

	// Cache
	CacheTTL  time.Duration
	CacheSize int

	// Live feed
	LiveFeedEnabled  bool
	LiveFeedSchedule string
	LiveFeedTarget   string // v1, v2 or both

	AllowedOrigins []string
}

// Load loads environment variables and returns a Config struct
func Load() *Config {
	_ = godotenv.Load()

	allowedOrigins := strings.Split(
		getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		",",
	)
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	return &Config{
		Port:             getEnv("APP_PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		StationsFile:     getEnv("STATIONS_FILE", "data/dublin.json"),
		DatabaseURL:      getEnv("DATABASE_URL", "file:stations.db?cache=shared"),
		DocStoreEnabled:  getEnvAsBool("DOCSTORE_ENABLED", true),
		BunDebug:         getEnvAsBool("BUNDEBUG", false),
		CacheTTL:         cacheTTL(),
		CacheSize:        getEnvAsInt("CACHE_SIZE", 1000),
		LiveFeedEnabled:  getEnvAsBool("LIVE_FEED_ENABLED", true),
		LiveFeedSchedule: getEnv("LIVE_FEED_SCHEDULE", "@every 15s"),
		LiveFeedTarget:   strings.ToLower(getEnv("LIVE_FEED_TARGET", "v1")),
		AllowedOrigins:   allowedOrigins,
	}
}

func cacheTTL() time.Duration {
	seconds := getEnvAsInt("CACHE_TTL_SECONDS", DefaultCacheTTLSeconds)
	if seconds != DefaultCacheTTLSeconds {
		log.Printf("warning: CACHE_TTL_SECONDS=%d overrides the fixed %ds query cache TTL\n", seconds, DefaultCacheTTLSeconds)
	}
	return time.Duration(seconds) * time.Second
}

// CacheTTLOverridden reports whether the cache TTL differs from the fixed default.
func (c *Config) CacheTTLOverridden() bool {
	return c.CacheTTL != DefaultCacheTTLSeconds*time.Second
}

// IsPostgres reports whether DatabaseURL points at a postgres server rather than sqlite.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("invalid bool for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}

func getEnvAsInt(key string, fallback int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("invalid int for %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return val
}
