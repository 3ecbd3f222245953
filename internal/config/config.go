// Package config provides configuration management for the book catalog service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SSL mode constants for database connections.
const (
	// SSLModeDisable disables SSL (use only for local development).
	SSLModeDisable = "disable"
	// SSLModeRequire requires SSL but does not verify certificates.
	SSLModeRequire = "require"
	// SSLModeVerifyCA verifies the server certificate against a CA.
	SSLModeVerifyCA = "verify-ca"
	// SSLModeVerifyFull verifies the server certificate and hostname.
	SSLModeVerifyFull = "verify-full"
)

// Config holds all configuration for the book catalog service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Auth contains the shared secret gating mutating operations.
	Auth AuthConfig `mapstructure:"auth"`
	// Media contains blob storage settings.
	Media MediaConfig `mapstructure:"media"`
	// Catalog contains input size ceilings and pagination bounds.
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading a request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the maximum keep-alive idle time.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// UploadRatePerSecond limits mutating requests per second per process.
	UploadRatePerSecond float64 `mapstructure:"upload_rate_per_second"`
	// UploadRateBurst is the burst size of the mutation rate limiter.
	UploadRateBurst int `mapstructure:"upload_rate_burst"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string `mapstructure:"host"`
	// Port is the PostgreSQL server port (default: 5432).
	Port int `mapstructure:"port"`
	// User is the database username.
	User string `mapstructure:"user"`
	// Password is the database password (use environment variable in production).
	Password string `mapstructure:"password"`
	// Name is the database name.
	Name string `mapstructure:"name"`
	// SSLMode controls SSL connection security (require, verify-ca, verify-full, disable).
	SSLMode string `mapstructure:"ssl_mode"`
	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32 `mapstructure:"max_conns"`
	// MinConns is the minimum number of connections to keep open.
	MinConns int32 `mapstructure:"min_conns"`
	// MaxConnLifetime is the maximum lifetime of a connection before it's closed.
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// MaxConnIdleTime is the maximum time a connection can be idle before it's closed.
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	// HealthCheckPeriod is the interval between health checks of idle connections.
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	// ConnectTimeout is the maximum time to wait for a connection.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// MigrationPath is the path to migration files (relative or absolute).
	MigrationPath string `mapstructure:"migration_path"`
	// MigrationAutoRun enables automatic migration on startup (default: false).
	MigrationAutoRun bool `mapstructure:"migration_auto_run"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// AuthConfig holds the mutation authorization settings.
type AuthConfig struct {
	// APIKey is the shared secret (loaded exclusively from the
	// BOOKCATALOG_AUTH_API_KEY environment variable).
	APIKey string `mapstructure:"-"`
}

// MediaConfig holds blob storage settings.
type MediaConfig struct {
	// Root is the directory holding image blobs, keyed by image ID.
	Root string `mapstructure:"root"`
}

// CatalogConfig holds input ceilings and pagination bounds. These are
// operational limits, not domain rules, so they live in configuration.
type CatalogConfig struct {
	// MaxTitleLen bounds book and chapter titles, in characters.
	MaxTitleLen int `mapstructure:"max_title_len"`
	// MaxAuthorLen bounds the author field, in characters.
	MaxAuthorLen int `mapstructure:"max_author_len"`
	// MaxTextLen bounds descriptions and chapter content, in characters.
	MaxTextLen int `mapstructure:"max_text_len"`
	// MaxChapterNumber bounds the chapter sequence number.
	MaxChapterNumber int `mapstructure:"max_chapter_number"`
	// MaxPageSize bounds the limit parameter of listing operations.
	MaxPageSize int `mapstructure:"max_page_size"`
	// MaxUploadBytes bounds the image payload size.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	// AllowedImageTypes is the MIME whitelist for image uploads.
	AllowedImageTypes []string `mapstructure:"allowed_image_types"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("BOOKCATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/book-catalog-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The API key is a secret and loads exclusively from the environment.
	// The field uses mapstructure:"-" to prevent loading from config files.
	cfg.Auth.APIKey = os.Getenv("BOOKCATALOG_AUTH_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.upload_rate_per_second", 10.0)
	v.SetDefault("server.upload_rate_burst", 20)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "bookcatalog")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "book_catalog_service")
	// Default to "require" for production security. Use BOOKCATALOG_DATABASE_SSL_MODE=disable for local development.
	v.SetDefault("database.ssl_mode", SSLModeRequire)
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.migration_path", "migrations")
	v.SetDefault("database.migration_auto_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Media defaults
	v.SetDefault("media.root", "images")

	// Catalog defaults
	v.SetDefault("catalog.max_title_len", 1000)
	v.SetDefault("catalog.max_author_len", 1000)
	v.SetDefault("catalog.max_text_len", 1000000)
	v.SetDefault("catalog.max_chapter_number", 10000)
	v.SetDefault("catalog.max_page_size", 100)
	v.SetDefault("catalog.max_upload_bytes", 5<<20)
	v.SetDefault("catalog.allowed_image_types", []string{"image/png", "image/jpeg"})
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns (%d) must be >= min_conns (%d)", c.Database.MaxConns, c.Database.MinConns)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Media.Root == "" {
		return fmt.Errorf("media root is required")
	}

	if c.Catalog.MaxTitleLen <= 0 {
		return fmt.Errorf("catalog max_title_len must be positive")
	}
	if c.Catalog.MaxAuthorLen <= 0 {
		return fmt.Errorf("catalog max_author_len must be positive")
	}
	if c.Catalog.MaxTextLen <= 0 {
		return fmt.Errorf("catalog max_text_len must be positive")
	}
	if c.Catalog.MaxChapterNumber <= 0 {
		return fmt.Errorf("catalog max_chapter_number must be positive")
	}
	if c.Catalog.MaxPageSize <= 0 {
		return fmt.Errorf("catalog max_page_size must be positive")
	}
	if c.Catalog.MaxUploadBytes <= 0 {
		return fmt.Errorf("catalog max_upload_bytes must be positive")
	}
	if len(c.Catalog.AllowedImageTypes) == 0 {
		return fmt.Errorf("catalog allowed_image_types must not be empty")
	}
	for _, mt := range c.Catalog.AllowedImageTypes {
		if !strings.HasPrefix(mt, "image/") {
			return fmt.Errorf("catalog allowed_image_types entry %q is not an image MIME type", mt)
		}
	}

	return nil
}
