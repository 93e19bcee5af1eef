package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session drivers
const (
	SessionMemory   = "memory"
	SessionRedis    = "redis"
	SessionMySQL    = "mysql"
	SessionPostgres = "postgres"
)

// Config holds all configuration for the console
type Config struct {
	AppMode  string
	Port     string
	Upstream UpstreamConfig
	Session  SessionConfig
	Database DatabaseConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cookie   CookieConfig
	Log      LogConfig
}

// UpstreamConfig points at the borrower-record REST API
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig selects where bearer tokens are kept
type SessionConfig struct {
	Driver        string
	TTL           time.Duration
	CookieName    string
	PurgeSchedule string
}

// DatabaseConfig holds MySQL configuration for the mysql session driver
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// PostgresConfig holds the connection string for the postgres session driver
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds redis configuration for the redis session driver
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CookieConfig holds session cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional in production
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	upstream, err := loadUpstreamConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Upstream: upstream,
		Session:  session,
		Database: loadDatabaseConfig(appMode),
		Postgres: PostgresConfig{DSN: getEnv("POSTGRES_DSN", "postgres://postgres@localhost:5432/daterbo_console?sslmode=disable")},
		Redis:    loadRedisConfig(),
		Cookie:   loadCookieConfig(appMode),
		Log:      loadLogConfig(appMode),
	}

	return cfg, nil
}

func loadUpstreamConfig() (UpstreamConfig, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(getEnv("API_BASE_URL", "http://localhost:8070/api")), "/")
	if baseURL == "" {
		return UpstreamConfig{}, fmt.Errorf("API_BASE_URL is empty")
	}
	timeout, _ := strconv.Atoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "30"))
	if timeout <= 0 {
		timeout = 30
	}
	return UpstreamConfig{
		BaseURL: baseURL,
		Timeout: time.Duration(timeout) * time.Second,
	}, nil
}

func loadSessionConfig() (SessionConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(getEnv("SESSION_DRIVER", SessionMemory)))
	switch driver {
	case SessionMemory, SessionRedis, SessionMySQL, SessionPostgres:
	default:
		return SessionConfig{}, fmt.Errorf("invalid SESSION_DRIVER: '%s' (must be memory, redis, mysql or postgres)", driver)
	}
	hours, _ := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "12"))
	if hours <= 0 {
		hours = 12
	}
	return SessionConfig{
		Driver:        driver,
		TTL:           time.Duration(hours) * time.Hour,
		CookieName:    getEnv("SESSION_COOKIE", "daterbo_session"),
		PurgeSchedule: getEnv("TOKEN_PURGE_SCHEDULE", "@every 1h"),
	}, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "daterbo_console"),
	}
}

func loadRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "Lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadLogConfig(mode string) LogConfig {
	format := "console"
	if mode == "prod" {
		format = "json"
	}
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", format),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:3001"
	}
	return origins
}
