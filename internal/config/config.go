package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	AppEnv   string
	HTTPPort string
	Database DatabaseConfig
	Logger   LoggerConfig
	Render   RenderConfig
	Archive  ArchiveConfig

	CORSAllowedOrigins []string

	warnings []string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type RenderConfig struct {
	CopyLabel    string
	MaxLineItems int
	Workers      int
}

// ArchiveConfig selects where reprinted documents are stored. S3 wins when a
// bucket is configured.
type ArchiveConfig struct {
	Dir      string
	S3Bucket string
	S3Region string
	S3Prefix string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "production"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite"),
			DSN:    getEnv("DATABASE_DSN", "billing.db"),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", "json"),
		},
		Render: RenderConfig{
			CopyLabel: getEnv("RENDER_COPY_LABEL", "Duplicate Copy"),
		},
		Archive: ArchiveConfig{
			Dir:      getEnv("ARCHIVE_DIR", "invoices"),
			S3Bucket: getEnv("ARCHIVE_S3_BUCKET", ""),
			S3Region: getEnv("ARCHIVE_S3_REGION", "ap-south-1"),
			S3Prefix: getEnv("ARCHIVE_S3_PREFIX", "invoices"),
		},
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
	cfg.Logger.DisableCaller = cfg.getEnvBool("LOGGER_DISABLE_CALLER", false)
	cfg.Logger.DisableStacktrace = cfg.getEnvBool("LOGGER_DISABLE_STACKTRACE", true)
	cfg.Render.MaxLineItems = cfg.getEnvInt("RENDER_MAX_LINE_ITEMS", 1000)
	cfg.Render.Workers = cfg.getEnvInt("RENDER_WORKERS", 4)

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		cfg.warn("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		cfg.warn("unsupported DATABASE_DRIVER %q, defaulting to sqlite", cfg.Database.Driver)
		cfg.Database.Driver = "sqlite"
	}
	return cfg
}

// Warnings lists the values Load replaced with defaults.
func (c Config) Warnings() []string { return c.warnings }

// IsDevelopment reports whether the service runs on a developer machine.
func (c Config) IsDevelopment() bool { return c.AppEnv == "development" }

func (c *Config) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func (c *Config) getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil || i <= 0 {
		c.warn("invalid %s value %q, defaulting to %d", key, value, fallback)
		return fallback
	}
	return i
}

func (c *Config) getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		c.warn("invalid %s value %q, defaulting to %t", key, value, fallback)
		return fallback
	}
	return b
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
