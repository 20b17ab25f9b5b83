package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration is returned when a required setting is missing or still a placeholder
var ErrConfiguration = errors.New("invalid configuration")

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "TASTYLOG"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Appwrite  AppwriteConfig  `mapstructure:"appwrite"`
	Map       MapConfig       `mapstructure:"map"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Executor  ExecutorConfig  `mapstructure:"executor"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AppwriteConfig holds the remote store project settings
type AppwriteConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	ProjectID         string        `mapstructure:"project_id"`
	APIKey            string        `mapstructure:"api_key"`
	DatabaseID        string        `mapstructure:"database_id"`
	UsersCollectionID string        `mapstructure:"users_collection_id"`
	FoodCollectionID  string        `mapstructure:"food_collection_id"`
	BucketID          string        `mapstructure:"bucket_id"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// MapConfig holds the tile service key and the fallback map center
type MapConfig struct {
	APIKey     string  `mapstructure:"api_key"`
	DefaultLat float64 `mapstructure:"default_lat"`
	DefaultLng float64 `mapstructure:"default_lng"`
}

// CacheConfig holds record cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// ExecutorConfig sizes the background executor queue
type ExecutorConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// Load loads configuration from environment variables (including a .env file)
// and the optional YAML file at path. Environment variables win over the file.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover a missing one
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding variables already set
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key gets a default so
// that AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("appwrite.endpoint", "https://cloud.appwrite.io/v1")
	v.SetDefault("appwrite.project_id", "")
	v.SetDefault("appwrite.api_key", "")
	v.SetDefault("appwrite.database_id", "")
	v.SetDefault("appwrite.users_collection_id", "")
	v.SetDefault("appwrite.food_collection_id", "")
	v.SetDefault("appwrite.bucket_id", "")
	v.SetDefault("appwrite.timeout", "30s")
	v.SetDefault("appwrite.requests_per_second", 0)

	v.SetDefault("map.api_key", "")
	v.SetDefault("map.default_lat", 35.86166)
	v.SetDefault("map.default_lng", 104.195397)

	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("executor.queue_size", 64)
}

// validate validates the configuration
func validate(config *Config) error {
	required := []struct {
		key   string
		value string
	}{
		{"appwrite.endpoint", config.Appwrite.Endpoint},
		{"appwrite.project_id", config.Appwrite.ProjectID},
		{"appwrite.database_id", config.Appwrite.DatabaseID},
		{"appwrite.users_collection_id", config.Appwrite.UsersCollectionID},
		{"appwrite.food_collection_id", config.Appwrite.FoodCollectionID},
		{"appwrite.bucket_id", config.Appwrite.BucketID},
		{"map.api_key", config.Map.APIKey},
	}

	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required (set %s)", ErrConfiguration, field.key, envName(field.key))
		}
		if isPlaceholder(field.value) {
			return fmt.Errorf("%w: %s is still a placeholder (%q)", ErrConfiguration, field.key, field.value)
		}
	}

	// The API key is optional, but a template value left in place is a mistake
	if config.Appwrite.APIKey != "" && isPlaceholder(config.Appwrite.APIKey) {
		return fmt.Errorf("%w: appwrite.api_key is still a placeholder", ErrConfiguration)
	}

	if !strings.HasPrefix(config.Appwrite.Endpoint, "http://") && !strings.HasPrefix(config.Appwrite.Endpoint, "https://") {
		return fmt.Errorf("%w: appwrite.endpoint must be an http(s) URL, got: %s", ErrConfiguration, config.Appwrite.Endpoint)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("%w: ratelimit.per_ip must not be negative", ErrConfiguration)
	}

	if config.Executor.QueueSize < 0 {
		return fmt.Errorf("%w: executor.queue_size must not be negative", ErrConfiguration)
	}

	return nil
}

// isPlaceholder reports values copied unchanged from a config template
func isPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(v, "your_") && strings.HasSuffix(v, "_here"):
		return true
	case strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">"):
		return true
	case v == "changeme":
		return true
	}
	return false
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
