package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"oneof=development staging production test"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustProxy      bool          `mapstructure:"trust_proxy"`
}

// StorageConfig holds the object storage bucket configuration
type StorageConfig struct {
	URL          string        `mapstructure:"url" validate:"required,url"`
	Key          string        `mapstructure:"key" validate:"required"`
	Bucket       string        `mapstructure:"bucket" validate:"required"`
	Document     string        `mapstructure:"document" validate:"required"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl" validate:"gt=0"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds the passcode gate configuration
type AuthConfig struct {
	SecretKey    string        `mapstructure:"secret_key" validate:"required"`
	Passcode     string        `mapstructure:"passcode"`
	PasscodeHash string        `mapstructure:"passcode_hash"`
	SessionTTL   time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	CookieName   string        `mapstructure:"cookie_name" validate:"required"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format" validate:"oneof=json console"`
	Output   string `mapstructure:"output" validate:"oneof=stdout file"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	LoginRateLimit  int           `mapstructure:"login_rate_limit" validate:"min=1"`
	LoginRateWindow time.Duration `mapstructure:"login_rate_window" validate:"gt=0"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from the environment and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Session cookies never travel over plain HTTP in production
	if cfg.App.IsProduction() {
		cfg.Auth.CookieSecure = true
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "DateIdeas")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.trust_proxy", false)

	// Storage defaults
	v.SetDefault("storage.bucket", "uploads")
	v.SetDefault("storage.document", "date_ideas.json")
	v.SetDefault("storage.signed_url_ttl", "1h")
	v.SetDefault("storage.timeout", "30s")

	// Auth defaults
	v.SetDefault("auth.session_ttl", "720h")
	v.SetDefault("auth.cookie_name", "session")
	v.SetDefault("auth.cookie_secure", false)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")

	// Security defaults
	v.SetDefault("security.login_rate_limit", 5)
	v.SetDefault("security.login_rate_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("app.debug", "APP_DEBUG")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	v.BindEnv("server.trust_proxy", "SERVER_TRUST_PROXY")

	// Storage
	v.BindEnv("storage.url", "SUPABASE_URL")
	v.BindEnv("storage.key", "SUPABASE_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.document", "STORAGE_DOCUMENT")
	v.BindEnv("storage.signed_url_ttl", "STORAGE_SIGNED_URL_TTL")
	v.BindEnv("storage.timeout", "STORAGE_TIMEOUT")

	// Auth
	v.BindEnv("auth.secret_key", "APP_SECRET_KEY")
	v.BindEnv("auth.passcode", "PASSCODE")
	v.BindEnv("auth.passcode_hash", "PASSCODE_HASH")
	v.BindEnv("auth.session_ttl", "SESSION_TTL")
	v.BindEnv("auth.cookie_name", "SESSION_COOKIE_NAME")
	v.BindEnv("auth.cookie_secure", "SESSION_COOKIE_SECURE")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.login_rate_limit", "LOGIN_RATE_LIMIT")
	v.BindEnv("security.login_rate_window", "LOGIN_RATE_WINDOW")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if cfg.Auth.Passcode == "" && cfg.Auth.PasscodeHash == "" {
		return errors.New("one of PASSCODE or PASSCODE_HASH is required")
	}

	if cfg.Logger.Output == "file" && cfg.Logger.Filename == "" {
		return errors.New("LOG_FILENAME is required when LOG_OUTPUT is file")
	}

	return nil
}

// Address returns the listen address for the HTTP server
func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
