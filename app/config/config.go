// Package config loads application configuration from the environment, an
// optional .env file and an optional config.yml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendHTTP  = "http"
	BackendLocal = "local"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Dataset         string        `mapstructure:"SANITY_DATASET" validate:"required"`
	ProjectID       string        `mapstructure:"SANITY_PROJECT_ID" validate:"required_if=CMSBackend http"`
	APIVersion      string        `mapstructure:"SANITY_API_VERSION" validate:"required"`
	UseCDN          bool          `mapstructure:"SANITY_USE_CDN"`
	Token           string        `mapstructure:"SANITY_API_TOKEN"`
	APIHost         string        `mapstructure:"SANITY_API_HOST"`
	CMSBackend      string        `mapstructure:"CMS_BACKEND" validate:"oneof=http local"`
	DBPath          string        `mapstructure:"DB_PATH" validate:"required_if=CMSBackend local"`
	Addr            string        `mapstructure:"ADDR" validate:"required"`
	RevalidateSecs  int           `mapstructure:"REVALIDATE_SECONDS" validate:"gt=0"`
	GenerateTimeout time.Duration `mapstructure:"GENERATE_TIMEOUT" validate:"gt=0"`
	CacheBackend    string        `mapstructure:"CACHE_BACKEND" validate:"oneof=memory redis"`
	RedisURL        string        `mapstructure:"REDIS_URL" validate:"required_if=CacheBackend redis"`
	AllowedOrigins  string        `mapstructure:"ALLOWED_ORIGINS"`
	Env             string        `mapstructure:"APP_ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

var defaults = map[string]any{
	"SANITY_DATASET":     "production",
	"SANITY_PROJECT_ID":  "",
	"SANITY_API_VERSION": "2021-03-25",
	"SANITY_API_TOKEN":   "",
	"SANITY_API_HOST":    "",
	"CMS_BACKEND":        BackendLocal,
	"DB_PATH":            "data/badger",
	"ADDR":               ":8080",
	"REVALIDATE_SECONDS": 60,
	"GENERATE_TIMEOUT":   "30s",
	"CACHE_BACKEND":      CacheMemory,
	"REDIS_URL":          "",
	"ALLOWED_ORIGINS":    "*",
	"APP_ENV":            "development",
	"LOG_LEVEL":          "info",
}

// Load reads .env (if present), config.yml (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.yml: %w", err)
		}
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// The CDN serves cached reads; only production opts in by default.
	v.SetDefault("SANITY_USE_CDN", v.GetString("APP_ENV") == "production")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks required values and enumerations.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Revalidate is the page freshness window.
func (c *Config) Revalidate() time.Duration {
	return time.Duration(c.RevalidateSecs) * time.Second
}

// Origins splits ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	var out []string
	for _, part := range strings.Split(c.AllowedOrigins, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
