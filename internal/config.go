package internal

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Public names under which the hosting platform exposes the backend address and key.
const (
	EnvPublicBackendURL    = "PUBLIC_SUPABASE_URL"
	EnvPublicBackendAPIKey = "PUBLIC_SUPABASE_PUBLISHABLE_KEY"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Backend       BackendConfig       `mapstructure:"backend"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

// BackendConfig addresses the hosted database backend. Both values are public.
type BackendConfig struct {
	URL            string `mapstructure:"url"`
	PublishableKey string `mapstructure:"publishable_key"`
	Schema         string `mapstructure:"schema"`
}

// DatabaseConfig is the direct connection to the backend's Postgres, used by admin tooling only.
type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfigFromEnv builds the configuration from environment variables only.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		},
		Backend: BackendConfig{
			URL:            os.Getenv(EnvPublicBackendURL),
			PublishableKey: os.Getenv(EnvPublicBackendAPIKey),
			Schema:         getEnv("BACKEND_SCHEMA", ""),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

// Validate checks everything the HTTP server and CLI need. The direct database
// connection is checked separately by ValidateDatabase.
func (c *Config) Validate() error {
	var errs []ValidationError

	if err := c.Backend.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "backend", Message: fmt.Sprintf("backend config: %v", err), Code: string(codeOf(err))})
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "http_server", Message: fmt.Sprintf("server config: %v", err), Code: string(ErrCodeInvalidConfig)})
	}

	if err := c.Admin.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "admin", Message: fmt.Sprintf("admin config: %v", err), Code: string(ErrCodeInvalidConfig)})
	} else if c.Admin.Enabled() && strings.TrimSpace(c.Database.Source) == "" {
		// the publishable key is only granted SELECT, admin writes use the direct connection
		errs = append(errs, ValidationError{Field: "admin", Message: "admin config: database.source is required when admin writes are enabled", Code: string(ErrCodeInvalidConfig)})
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "observability.logging", Message: fmt.Sprintf("logging config: %v", err), Code: string(ErrCodeInvalidConfig)})
	}

	return joinConfigErrors(errs)
}

// ValidateDatabase checks what migrate and seed need: the direct database
// connection and logging. The backend handle is not required.
func (c *Config) ValidateDatabase() error {
	var errs []ValidationError

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "database", Message: fmt.Sprintf("database config: %v", err), Code: string(ErrCodeInvalidConfig)})
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "observability.logging", Message: fmt.Sprintf("logging config: %v", err), Code: string(ErrCodeInvalidConfig)})
	}

	return joinConfigErrors(errs)
}

func joinConfigErrors(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Message
	}
	code := ErrCodeInvalidConfig
	if len(errs) == 1 {
		code = ErrorCode(errs[0].Code)
	}
	err := NewConfigurationError(strings.Join(messages, "; "), code)
	err.Details = ValidationErrors{Errors: errs}
	return err
}

func codeOf(err error) ErrorCode {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInvalidConfig
}

// Validate reports a ConfigurationError when the endpoint or key is absent or the
// endpoint is not an absolute http(s) URL.
func (c *BackendConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return ErrMissingEndpointURL
	}
	if strings.TrimSpace(c.PublishableKey) == "" {
		return ErrMissingPublicAPIKey
	}
	u, err := url.ParseRequestURI(c.URL)
	if err != nil {
		return ErrInvalidEndpointURL.WithCause(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidEndpointURL.WithCause(fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return ErrInvalidEndpointURL.WithCause(fmt.Errorf("missing host"))
	}
	return nil
}

// EndpointURL returns the configured URL without a trailing slash.
func (c *BackendConfig) EndpointURL() string {
	return strings.TrimRight(strings.TrimSpace(c.URL), "/")
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return fmt.Errorf("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

// Validate accepts an empty hash (admin routes disabled) or a bcrypt hash.
func (c *AdminConfig) Validate() error {
	if c.PasswordHash == "" {
		return nil
	}
	if c.Username == "" {
		return fmt.Errorf("username is required when password_hash is set")
	}
	if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
		return fmt.Errorf("password_hash is not a bcrypt hash: %w", err)
	}
	return nil
}

// Enabled reports whether admin write routes should be mounted.
func (c *AdminConfig) Enabled() bool {
	return c.PasswordHash != ""
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
