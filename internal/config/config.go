package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port      string `yaml:"port" env:"PORT"`
		Mode      string `yaml:"mode" env:"APP_ENV"`
		PublicURL string `yaml:"public_url" env:"PUBLIC_URL"`
	} `yaml:"server"`

	Database struct {
		URL             string `yaml:"url" env:"DATABASE_URL"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret" env:"JWT_SECRET"`
		Expiration string `yaml:"expiration" env:"JWT_EXPIRES_IN"`
		Issuer     string `yaml:"issuer" env:"JWT_ISSUER"`
		CookieName string `yaml:"cookie_name" env:"JWT_COOKIE_NAME"`
	} `yaml:"jwt"`

	CORS struct {
		Origins []string `yaml:"origins" env:"CORS_ORIGINS"`
	} `yaml:"cors"`

	Storage struct {
		Driver      string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalDir    string `yaml:"local_dir" env:"UPLOAD_DIR"`
		MaxUploadMB int    `yaml:"max_upload_mb" env:"UPLOAD_MAX_MB"`
		MinIO       struct {
			Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
			AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
			SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
			Bucket    string `yaml:"bucket" env:"MINIO_BUCKET"`
			UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL"`
		} `yaml:"minio"`
	} `yaml:"storage"`

	Redis struct {
		URL string `yaml:"url" env:"REDIS_URL"`
	} `yaml:"redis"`

	Chat struct {
		HeartbeatInterval string `yaml:"heartbeat_interval" env:"CHAT_HEARTBEAT_INTERVAL"`
		BufferSize        int    `yaml:"buffer_size" env:"CHAT_BUFFER_SIZE"`
		Topic             string `yaml:"topic" env:"CHAT_REDIS_TOPIC"`
	} `yaml:"chat"`

	RateLimit struct {
		AuthPerMinute int `yaml:"auth_per_minute" env:"AUTH_RATE_PER_MINUTE"`
		AuthBurst     int `yaml:"auth_burst" env:"AUTH_RATE_BURST"`
	} `yaml:"rate_limit"`

	Cleanup struct {
		Queue       string `yaml:"queue" env:"CLEANUP_QUEUE"`
		MaxRetry    int    `yaml:"max_retry" env:"CLEANUP_MAX_RETRY"`
		Concurrency int    `yaml:"concurrency" env:"CLEANUP_CONCURRENCY"`
	} `yaml:"cleanup"`

	Seed struct {
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from .env, a YAML file and environment variables,
// in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "4000"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "bmvt"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.Expiration = "168h"
	config.JWT.Issuer = "bmvt"
	config.JWT.CookieName = "token"

	config.CORS.Origins = []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"https://*.vercel.app",
	}

	config.Storage.Driver = "local"
	config.Storage.LocalDir = "uploads"
	config.Storage.MaxUploadMB = 20
	config.Storage.MinIO.Bucket = "bmvt-uploads"

	config.Chat.HeartbeatInterval = "25s"
	config.Chat.BufferSize = 32
	config.Chat.Topic = "bmvt:chat"

	config.RateLimit.AuthPerMinute = 20
	config.RateLimit.AuthBurst = 10

	config.Cleanup.Queue = "cleanup"
	config.Cleanup.MaxRetry = 5
	config.Cleanup.Concurrency = 2

	config.Seed.AdminName = "Administrateur"
	config.Seed.AdminEmail = "admin@bmvt.local"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database url or host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.Expiration); err != nil {
		return fmt.Errorf("invalid JWT expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Chat.HeartbeatInterval); err != nil {
		return fmt.Errorf("invalid chat heartbeat interval: %w", err)
	}

	switch strings.ToLower(config.Storage.Driver) {
	case "local":
	case "minio":
		if config.Storage.MinIO.Endpoint == "" || config.Storage.MinIO.Bucket == "" {
			return fmt.Errorf("minio endpoint and bucket are required when storage driver is minio")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
