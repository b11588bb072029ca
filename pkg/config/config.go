// Package config loads runtime configuration for the chainhook engine: the
// env-var driven Config controlling the Bitcoin node connection, ordinal
// cache database and replay behaviour, plus the YAML-backed chainhook
// specification map loaded via LoadSpecifications.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all environment-driven configuration for chainhookd.
type Config struct {
	// Bitcoin RPC
	BitcoinRPCHost       string
	BitcoinRPCUser       string
	BitcoinRPCPass       string
	BitcoinRPCDisableTLS bool
	BitcoinRPCMaxRetries int
	BitcoinRPCRetryBase  time.Duration
	BitcoinRPCRetryMax   time.Duration

	// Ordinal cache (Postgres)
	OrdinalCacheURL      string
	OrdinalCacheRequired bool
	OrdinalCacheFanOut   int

	// Replay driver
	SpecificationsPath  string
	TipConfirmationLag  uint64
	ScanPollInterval    time.Duration

	// Operational HTTP endpoints
	MetricsAddr string
	HealthAddr  string

	LogLevel string
}

// Load reads configuration from environment variables, applying the same
// safe-default-unless-required posture the rest of the ambient stack uses.
func Load() (*Config, error) {
	cfg := &Config{
		BitcoinRPCHost:       getEnv("BITCOIN_RPC_HOST", "localhost:8332"),
		BitcoinRPCUser:       getEnv("BITCOIN_RPC_USER", ""),
		BitcoinRPCPass:       getEnv("BITCOIN_RPC_PASS", ""),
		BitcoinRPCDisableTLS: getEnvBool("BITCOIN_RPC_DISABLE_TLS", true),
		BitcoinRPCMaxRetries: getEnvInt("BITCOIN_RPC_MAX_RETRIES", 5),
		BitcoinRPCRetryBase:  getEnvDuration("BITCOIN_RPC_RETRY_BASE", 250*time.Millisecond),
		BitcoinRPCRetryMax:   getEnvDuration("BITCOIN_RPC_RETRY_MAX", 8*time.Second),

		OrdinalCacheURL:      getEnv("ORDINAL_CACHE_DATABASE_URL", ""),
		OrdinalCacheRequired: getEnvBool("ORDINAL_CACHE_REQUIRED", false),
		OrdinalCacheFanOut:   getEnvInt("ORDINAL_CACHE_FAN_OUT", 8),

		SpecificationsPath: getEnv("CHAINHOOK_SPECIFICATIONS_PATH", "./specifications.yaml"),
		TipConfirmationLag: uint64(getEnvInt("TIP_CONFIRMATION_LAG", 0)),
		ScanPollInterval:   getEnvDuration("SCAN_POLL_INTERVAL", 10*time.Second),

		MetricsAddr: getEnv("API_HOST", "0.0.0.0") + ":" + getEnv("METRICS_PORT", "9090"),
		HealthAddr:  getEnv("API_HOST", "0.0.0.0") + ":" + getEnv("HEALTH_CHECK_PORT", "8081"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// Validate checks that configuration required to start the service is
// present. Ordinal cache configuration is only required when
// OrdinalCacheRequired is set, mirroring the teacher's DatabaseRequired
// pattern: ordinal-aware chainhooks degrade to a hard error at startup only
// when the operator has opted into requiring the cache.
func (c *Config) Validate() error {
	var errs []string

	if c.BitcoinRPCHost == "" {
		errs = append(errs, "BITCOIN_RPC_HOST is required but not set")
	}
	if c.BitcoinRPCUser == "" {
		errs = append(errs, "BITCOIN_RPC_USER is required but not set")
	}
	if c.BitcoinRPCPass == "" {
		errs = append(errs, "BITCOIN_RPC_PASS is required but not set")
	}
	if c.SpecificationsPath == "" {
		errs = append(errs, "CHAINHOOK_SPECIFICATIONS_PATH is required but not set")
	}
	if c.OrdinalCacheRequired && c.OrdinalCacheURL == "" {
		errs = append(errs, "ORDINAL_CACHE_DATABASE_URL is required when ORDINAL_CACHE_REQUIRED is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
