// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD", "CACHE_TTL",
	"JWT_SECRET", "JWT_ISSUER", "JWT_TTL",
	"STORAGE_DRIVER", "UPLOAD_DIR", "PUBLIC_BASE_URL", "MAX_FILE_SIZE",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
	"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "CORS_ORIGINS", "ADMIN_PASSWORD",
}

// clearEnv blanks every variable Load reads; empty values fall through to
// the defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("DBUser", cfg.DBUser, "pressroom")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("DBName", cfg.DBName, "pressroom")
	check("ValkeyHost", cfg.ValkeyHost, "localhost")
	check("ValkeyPort", cfg.ValkeyPort, "6379")
	check("JWTIssuer", cfg.JWTIssuer, "pressroom")
	check("StorageDriver", cfg.StorageDriver, "local")
	check("UploadDir", cfg.UploadDir, "uploads")
	check("PublicBaseURL", cfg.PublicBaseURL, "http://localhost:8080")
	check("S3Bucket", cfg.S3Bucket, "pressroom-media")

	if cfg.JWTTTL != 168*time.Hour {
		t.Errorf("JWTTTL = %v", cfg.JWTTTL)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.MaxFileSize != 5<<20 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if cfg.RateLimitMax != 100 || cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("rate limit = %d per %v", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.IsDev() || cfg.IsProduction() {
		t.Error("default env should be development")
	}
}

// TestLoad_EnvOverrides verifies that environment variables override the
// default values.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	overrides := map[string]string{
		"APP_HOST":          "127.0.0.1",
		"APP_PORT":          "9090",
		"APP_ENV":           "testing",
		"POSTGRES_HOST":     "db.example.com",
		"POSTGRES_PASSWORD": "testpass",
		"VALKEY_PASSWORD":   "cachepass",
		"CACHE_TTL":         "30s",
		"JWT_SECRET":        "a-very-long-secret-for-testing-purposes",
		"JWT_TTL":           "1h",
		"STORAGE_DRIVER":    "S3",
		"PUBLIC_BASE_URL":   "https://cms.example.com/",
		"MAX_FILE_SIZE":     "1048576",
		"S3_ENDPOINT":       "https://s3.example.com",
		"S3_BUCKET":         "my-media",
		"RATE_LIMIT_MAX":    "10",
		"RATE_LIMIT_WINDOW": "1m",
		"CORS_ORIGINS":      "https://a.example.com, https://b.example.com,,",
	}
	for key, val := range overrides {
		t.Setenv(key, val)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.Env != "testing" || cfg.DBHost != "db.example.com" || cfg.ValkeyPassword != "cachepass" {
		t.Errorf("string overrides not applied: %+v", cfg)
	}
	if cfg.CacheTTL != 30*time.Second || cfg.JWTTTL != time.Hour {
		t.Errorf("durations = %v, %v", cfg.CacheTTL, cfg.JWTTTL)
	}
	if cfg.StorageDriver != "s3" {
		t.Errorf("StorageDriver = %q, want lowercased s3", cfg.StorageDriver)
	}
	if cfg.PublicBaseURL != "https://cms.example.com" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if cfg.MaxFileSize != 1<<20 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if cfg.S3Endpoint != "https://s3.example.com" || cfg.S3Bucket != "my-media" {
		t.Errorf("S3 = %q %q", cfg.S3Endpoint, cfg.S3Bucket)
	}
	if cfg.RateLimitMax != 10 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d per %v", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown storage driver", "STORAGE_DRIVER", "ftp"},
		{"zero ttl", "JWT_TTL", "0s"},
		{"negative rate limit", "RATE_LIMIT_MAX", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

// TestLoad_ProductionRequiresSecrets verifies that production mode rejects
// the development defaults.
func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	good := map[string]string{
		"APP_ENV":           "production",
		"POSTGRES_PASSWORD": "s3cur3-pr0d-p@ssw0rd",
		"JWT_SECRET":        strings.Repeat("k", 32),
		"ADMIN_PASSWORD":    "another-strong-one",
	}
	tests := []struct {
		name    string
		unset   string
		value   string
		wantErr string
	}{
		{"default db password", "POSTGRES_PASSWORD", "", "POSTGRES_PASSWORD"},
		{"explicit changeme", "POSTGRES_PASSWORD", "changeme", "POSTGRES_PASSWORD"},
		{"default jwt secret", "JWT_SECRET", "", "JWT_SECRET"},
		{"short jwt secret", "JWT_SECRET", "short", "JWT_SECRET"},
		{"default admin password", "ADMIN_PASSWORD", "", "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range good {
				t.Setenv(k, v)
			}
			t.Setenv(tt.unset, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s, got: %v", tt.wantErr, err)
			}
		})
	}

	t.Run("accepts real secrets", func(t *testing.T) {
		clearEnv(t)
		for k, v := range good {
			t.Setenv(k, v)
		}
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if !cfg.IsProduction() {
			t.Error("IsProduction should be true")
		}
	})
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d"}
	want := "postgres://u:p@h:5432/d?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
