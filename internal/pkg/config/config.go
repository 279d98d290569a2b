package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session store drivers
const (
	SessionDriverMemory   = "memory"
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// BackendConfig describes the upstream /api/* service.
// A zero TimeoutSeconds means requests never time out.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SessionConfig holds session issuance and storage configuration
type SessionConfig struct {
	Driver     string `mapstructure:"driver"`
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	TTLHours   int    `mapstructure:"ttl_hours"`
	CookieName string `mapstructure:"cookie_name"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/grse-dashboard")

	// Environment variable overrides, e.g. BACKEND_BASE_URL
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)

	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:5000")
	v.SetDefault("backend.timeout_seconds", 0)

	// Session defaults
	v.SetDefault("session.driver", SessionDriverMemory)
	v.SetDefault("session.secret", "change-me-dashboard-session-secret")
	v.SetDefault("session.issuer", "grse-dashboard")
	v.SetDefault("session.ttl_hours", 12)
	v.SetDefault("session.cookie_name", "grse_session")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "grse")
	v.SetDefault("database.password", "grse")
	v.SetDefault("database.dbname", "grse_dashboard")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// Validate checks values viper cannot default sensibly
func (c *Config) Validate() error {
	switch c.Session.Driver {
	case SessionDriverMemory, SessionDriverRedis, SessionDriverPostgres:
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		return fmt.Errorf("session.secret is required")
	}
	if c.Session.TTLHours <= 0 {
		return fmt.Errorf("session.ttl_hours must be positive")
	}
	return nil
}

// SessionTTL returns the session lifetime
func (c *SessionConfig) SessionTTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Timeout returns the upstream request timeout, zero meaning none
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DSN returns PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns server address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
