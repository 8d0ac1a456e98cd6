// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Development defaults that must never reach production.
const (
	defaultDBPassword    = "changeme"
	defaultJWTSecret     = "dev-secret-change-me"
	defaultAdminPassword = "admin123"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	CacheTTL       time.Duration

	// Bearer tokens
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Uploads
	StorageDriver string // "local" or "s3"
	UploadDir     string
	PublicBaseURL string
	MaxFileSize   int64

	// S3-compatible object storage
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// HTTP edge
	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigins     []string

	// Seeding
	AdminPassword string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "pressroom")
	v.SetDefault("POSTGRES_PASSWORD", defaultDBPassword)
	v.SetDefault("POSTGRES_DB", "pressroom")

	v.SetDefault("VALKEY_HOST", "localhost")
	v.SetDefault("VALKEY_PORT", "6379")
	v.SetDefault("VALKEY_PASSWORD", "")
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "pressroom")
	v.SetDefault("JWT_TTL", "168h")

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("MAX_FILE_SIZE", 5<<20)

	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "fsn1")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "pressroom-media")
	v.SetDefault("S3_PUBLIC_URL", "")

	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.SetDefault("ADMIN_PASSWORD", defaultAdminPassword)
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTIssuer: v.GetString("JWT_ISSUER"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		MaxFileSize:   v.GetInt64("MAX_FILE_SIZE"),

		S3Endpoint:  v.GetString("S3_ENDPOINT"),
		S3Region:    v.GetString("S3_REGION"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),
		S3Bucket:    v.GetString("S3_BUCKET"),
		S3PublicURL: v.GetString("S3_PUBLIC_URL"),

		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),

		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "local", "s3":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be local or s3, got %q", c.StorageDriver)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	if c.Env == "production" {
		if c.DBPassword == defaultDBPassword {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be set to at least 32 characters in production")
		}
		if c.AdminPassword == defaultAdminPassword {
			return fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the cache address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
