package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// MinIOConfig holds object storage settings for serving assets from a bucket.
// Assets are read from the local static directory unless Bucket is set.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables.
type AppConfig struct {
	Host           string
	Port           string
	StaticDir      string
	TemplateDir    string
	PageTitle      string
	StaticMaxAge   int
	MetricsEnabled bool
	LogTZ          string
	MinIO          MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the file.
func Load() *AppConfig {
	return &AppConfig{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "5000"),
		StaticDir:      getEnv("STATIC_DIR", "static"),
		TemplateDir:    getEnv("TEMPLATE_DIR", "templates"),
		PageTitle:      getEnv("PAGE_TITLE", "3D Tennis Court"),
		StaticMaxAge:   getEnvInt("STATIC_MAX_AGE_SEC", 0),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		LogTZ:          getEnv("LOG_TZ", "UTC"),
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("ASSET_BUCKET", ""),
			Prefix:    getEnv("ASSET_PREFIX", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// Validate checks the values that cannot be defaulted away.
func (c *AppConfig) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Port)
	}
	if c.StaticMaxAge < 0 {
		return fmt.Errorf("invalid static max age: %d", c.StaticMaxAge)
	}
	if _, err := time.LoadLocation(c.LogTZ); err != nil {
		return fmt.Errorf("invalid log timezone %q: %w", c.LogTZ, err)
	}
	return nil
}

// Address returns the listen address, e.g. "0.0.0.0:5000".
func (c *AppConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Location returns the timezone used for log timestamps, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.LogTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UseObjectStorage reports whether assets are served from a bucket.
func (c *AppConfig) UseObjectStorage() bool {
	return c.MinIO.Bucket != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
