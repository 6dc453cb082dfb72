package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Identity      IdentityConfig      `mapstructure:"identity" validate:"required"`
	AI            AIConfig            `mapstructure:"ai"`
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

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

// SecurityConfig holds the secrets used to verify bearer credentials issued
// by the identity provider. Tokens are HS256-signed with JWTSecret.
type SecurityConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" validate:"required,min=32"`
	BCryptCost int    `mapstructure:"bcrypt_cost"`
}

// IdentityConfig points at the identity provider's admin API. The service
// role key authorizes account creation, deletion and sign-in link issuance.
type IdentityConfig struct {
	AdminAPIURL    string        `mapstructure:"admin_api_url" validate:"required,url"`
	ServiceRoleKey string        `mapstructure:"service_role_key" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AIConfig configures the LLM provider used for risk suggestions. The
// request timeout is the single hard bound the suggestion workflow honours.
type AIConfig struct {
	BaseURL             string        `mapstructure:"base_url" validate:"required,url"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	ConfidenceThreshold int           `mapstructure:"confidence_threshold"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
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

// LoadConfigFromEnv builds the configuration entirely from environment
// variables, used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("PUBLIC_APP_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Security: SecurityConfig{
			JWTSecret:  getEnv("IDENTITY_JWT_SECRET", ""),
			BCryptCost: getEnvAsInt("BCRYPT_COST", 10),
		},
		Identity: IdentityConfig{
			AdminAPIURL:    getEnv("IDENTITY_ADMIN_API_URL", ""),
			ServiceRoleKey: getEnv("IDENTITY_SERVICE_ROLE_KEY", ""),
			RequestTimeout: getEnvAsDuration("IDENTITY_REQUEST_TIMEOUT", 10*time.Second),
		},
		AI: AIConfig{
			BaseURL:             getEnv("AI_API_URL", "https://api.openai.com/v1"),
			APIKey:              getEnv("AI_API_KEY", ""),
			Model:               getEnv("AI_MODEL", "gpt-4o-mini"),
			RequestTimeout:      getEnvAsDuration("AI_REQUEST_TIMEOUT", 30*time.Second),
			ConfidenceThreshold: getEnvAsInt("AI_CONFIDENCE_THRESHOLD", 70),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Identity.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("identity config: %v", err))
	}

	if err := c.AI.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("ai config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
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
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	return nil
}

func (c *IdentityConfig) Validate() error {
	if c.AdminAPIURL == "" {
		return errors.New("admin_api_url is required")
	}
	if c.ServiceRoleKey == "" {
		return errors.New("service_role_key is required")
	}
	return nil
}

func (c *AIConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 100 {
		return errors.New("confidence_threshold must be between 0 and 100")
	}
	return nil
}
