package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Progress  ProgressConfig  `mapstructure:"progress"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port               string        `mapstructure:"port"`
	Env                string        `mapstructure:"env"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

// IsProduction reports whether the server runs with env=production
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
	// JWTSecret enables local HS256 verification of access tokens. When
	// empty every token is verified against the auth server.
	JWTSecret string `mapstructure:"jwt_secret"`
}

// LogConfig selects the logger backend and format
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Backend   string `mapstructure:"backend"`
	AddSource bool   `mapstructure:"add_source"`
}

// CacheConfig configures the catalog cache. An empty RedisURL disables it.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ProgressConfig holds the calendar and list defaults used by the services
type ProgressConfig struct {
	Timezone            string `mapstructure:"timezone"`
	RecommendationLimit int    `mapstructure:"recommendation_limit"`
	HistoryLimit        int    `mapstructure:"history_limit"`
}

// Location loads the configured IANA timezone
func (p ProgressConfig) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid progress.timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// WorkerConfig holds the scheduled job configuration
type WorkerConfig struct {
	// StreakSchedule is a cron spec with a leading seconds field
	StreakSchedule string `mapstructure:"streak_schedule"`
}

// RateLimitConfig bounds unauthenticated auth endpoints per client IP
type RateLimitConfig struct {
	AuthPerMinute int `mapstructure:"auth_per_minute"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SMALLSTEPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by hosting platforms and the Supabase CLI
	_ = v.BindEnv("server.port", "SMALLSTEPS_SERVER_PORT", "PORT")
	_ = v.BindEnv("supabase.url", "SMALLSTEPS_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "SMALLSTEPS_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	_ = v.BindEnv("supabase.jwt_secret", "SMALLSTEPS_SUPABASE_JWT_SECRET", "SUPABASE_JWT_SECRET")
	_ = v.BindEnv("cache.redis_url", "SMALLSTEPS_CACHE_REDIS_URL", "REDIS_URL")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.backend", "zap")
	v.SetDefault("log.add_source", false)

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("progress.timezone", "UTC")
	v.SetDefault("progress.recommendation_limit", 5)
	v.SetDefault("progress.history_limit", 20)

	v.SetDefault("worker.streak_schedule", "0 5 0 * * *")

	v.SetDefault("ratelimit.auth_per_minute", 10)

	v.SetDefault("supabase.jwt_secret", "")
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if _, err := c.Progress.Location(); err != nil {
		return err
	}
	if c.Progress.RecommendationLimit <= 0 {
		return fmt.Errorf("progress.recommendation_limit must be positive")
	}
	if c.Progress.HistoryLimit <= 0 {
		return fmt.Errorf("progress.history_limit must be positive")
	}
	if c.Worker.StreakSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Worker.StreakSchedule); err != nil {
			return fmt.Errorf("invalid worker.streak_schedule: %w", err)
		}
	}
	switch c.Log.Backend {
	case "", "zap", "slog":
	default:
		return fmt.Errorf("log.backend must be zap or slog, got %q", c.Log.Backend)
	}
	return nil
}
