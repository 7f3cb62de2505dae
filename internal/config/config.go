package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration. Values come from the environment,
// optionally overridden by a YAML file named by CONFIG_FILE.
type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"database_url"`
	JWKSURL     string `yaml:"jwks_url"`
	CORSOrigins string `yaml:"cors_origins"`
	TablePrefix string `yaml:"table_prefix"`

	UploadDir     string `yaml:"upload_dir"`
	UploadBaseURL string `yaml:"upload_base_url"`
	MaxUploadSize int64  `yaml:"max_upload_size"`

	// Onboarding rate limit: attempts allowed per client IP within the
	// refill window, and how long idle limiter state is kept.
	OnboardingBurst    int           `yaml:"onboarding_burst"`
	OnboardingInterval time.Duration `yaml:"onboarding_interval"`
	RateLimitTTL       time.Duration `yaml:"rate_limit_ttl"`

	CacheSize int `yaml:"cache_size"`

	// LogDir, when set, mirrors logs to rotating files in that directory.
	LogDir      string `yaml:"log_dir"`
	MaxLogFiles int    `yaml:"max_log_files"`

	Debug bool `yaml:"debug"`
}

// Load builds the configuration from the environment plus the optional YAML
// overlay.
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/uploads"),
		MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", 32<<20),

		OnboardingBurst:    getEnvInt("ONBOARDING_BURST", 5),
		OnboardingInterval: getEnvDuration("ONBOARDING_INTERVAL", time.Minute),
		RateLimitTTL:       getEnvDuration("RATE_LIMIT_TTL", time.Hour),

		CacheSize: getEnvInt("CACHE_SIZE", 1024),

		LogDir:      getEnv("LOG_DIR", ""),
		MaxLogFiles: getEnvInt("MAX_LOG_FILES", 10),

		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	return cfg, nil
}

// getDefaultDebug returns the default debug setting based on environment.
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment.
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
