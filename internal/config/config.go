// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process exits with an error.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all runtime configuration for the candidate review service.
type Config struct {
	Port        string
	GRPCPort    string // "off" disables the gRPC listener
	StoreDriver string
	DatabaseURL string
	RedisURL    string // optional: events are dropped when empty

	// Zero keeps the pgx pool defaults.
	DBMaxConns        int32
	DBMaxConnLifetime time.Duration

	DefaultSort         string
	StrictStatusUpdates bool
	EnableSeed          bool
	CORSAllowedOrigins  []string
	MaxUploadMB         int

	LogLevel  string
	LogPretty bool
	LogFile   string
}

// GRPCEnabled reports whether the gRPC listener should be started.
func (c *Config) GRPCEnabled() bool {
	return c.GRPCPort != "" && c.GRPCPort != "off"
}

// Load reads the optional .env file and the environment and returns a validated Config.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetDefault("PORT", "8000")
	v.SetDefault("GRPC_PORT", "9090")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DEFAULT_SORT", "name")
	v.SetDefault("STRICT_STATUS_UPDATES", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("DB_MAX_CONNS", "0")
	v.SetDefault("DB_MAX_CONN_LIFETIME", "0s")

	driver := strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER")))
	if driver != DriverPostgres && driver != DriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, driver)
	}

	dbURL := v.GetString("DATABASE_URL")
	if driver == DriverPostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
	}

	sortBy := v.GetString("DEFAULT_SORT")
	switch sortBy {
	case "name", "application_date", "rating":
	default:
		return nil, fmt.Errorf("DEFAULT_SORT must be one of name, application_date, rating, got %q", sortBy)
	}

	maxUpload := v.GetInt("MAX_UPLOAD_MB")
	if maxUpload < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", v.GetString("MAX_UPLOAD_MB"))
	}

	maxConns, err := strconv.Atoi(strings.TrimSpace(v.GetString("DB_MAX_CONNS")))
	if err != nil || maxConns < 0 || maxConns > math.MaxInt32 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be a non-negative integer, got %q", v.GetString("DB_MAX_CONNS"))
	}
	lifetime, err := time.ParseDuration(strings.TrimSpace(v.GetString("DB_MAX_CONN_LIFETIME")))
	if err != nil || lifetime < 0 {
		return nil, fmt.Errorf("DB_MAX_CONN_LIFETIME must be a non-negative duration such as 30m, got %q", v.GetString("DB_MAX_CONN_LIFETIME"))
	}

	// Seeding wipes the store, so it is only on by default for the throwaway in-memory store.
	enableSeed := driver == DriverMemory
	if v.IsSet("ENABLE_SEED") {
		enableSeed = v.GetBool("ENABLE_SEED")
	}

	return &Config{
		Port:                v.GetString("PORT"),
		GRPCPort:            v.GetString("GRPC_PORT"),
		StoreDriver:         driver,
		DatabaseURL:         dbURL,
		RedisURL:            v.GetString("REDIS_URL"),
		DBMaxConns:          int32(maxConns),
		DBMaxConnLifetime:   lifetime,
		DefaultSort:         sortBy,
		StrictStatusUpdates: v.GetBool("STRICT_STATUS_UPDATES"),
		EnableSeed:          enableSeed,
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MaxUploadMB:         maxUpload,
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogPretty:           v.GetBool("LOG_PRETTY"),
		LogFile:             v.GetString("LOG_FILE"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
