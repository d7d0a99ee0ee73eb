package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yukikurage/taskhub-api/internal/constants"
)

const defaultJWTSecret = "default-secret-key-change-me"

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Supported values for TOKEN_BLACKLIST_BACKEND.
const (
	BlacklistDatabase = "database"
	BlacklistRedis    = "redis"
	BlacklistMemory   = "memory"
)

type Config struct {
	AppEnv   string
	GinMode  string
	HTTPPort string

	DB         DBConfig
	Auth       AuthConfig
	Pagination PaginationConfig

	RedisURL string
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	LogLevel string
}

// AuthConfig holds token lifetimes and cookie settings shared by the
// authenticator and the auth handlers.
type AuthConfig struct {
	JWTSecret            string
	JWTIssuer            string
	AccessTokenLifetime  time.Duration
	RefreshTokenLifetime time.Duration
	RotateRefreshTokens  bool
	BlacklistBackend     string
	UsernameMaxRetries   int

	CookiesEnabled    bool
	AccessCookieName  string
	RefreshCookieName string
	CookieSecure      bool
	CookieHTTPOnly    bool
	CookieSameSite    http.SameSite
	CookieDomain      string
}

type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Skipping .env: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:   v.GetString("APP_ENV"),
		GinMode:  v.GetString("GIN_MODE"),
		HTTPPort: v.GetString("HTTP_PORT"),
		DB: DBConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			LogLevel: v.GetString("DB_LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret:            v.GetString("JWT_SECRET"),
			JWTIssuer:            v.GetString("JWT_ISSUER"),
			AccessTokenLifetime:  v.GetDuration("ACCESS_TOKEN_LIFETIME"),
			RefreshTokenLifetime: v.GetDuration("REFRESH_TOKEN_LIFETIME"),
			RotateRefreshTokens:  v.GetBool("ROTATE_REFRESH_TOKENS"),
			BlacklistBackend:     strings.ToLower(v.GetString("TOKEN_BLACKLIST_BACKEND")),
			UsernameMaxRetries:   v.GetInt("USERNAME_MAX_RETRIES"),
			CookiesEnabled:       v.GetBool("AUTH_COOKIES_ENABLED"),
			AccessCookieName:     v.GetString("JWT_AUTH_COOKIE"),
			RefreshCookieName:    v.GetString("JWT_AUTH_REFRESH_COOKIE"),
			CookieSecure:         v.GetBool("JWT_AUTH_COOKIE_SECURE"),
			CookieHTTPOnly:       v.GetBool("JWT_AUTH_COOKIE_HTTP_ONLY"),
			CookieSameSite:       parseSameSite(v.GetString("JWT_AUTH_COOKIE_SAMESITE")),
			CookieDomain:         v.GetString("JWT_AUTH_COOKIE_DOMAIN"),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: v.GetInt("DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("MAX_PAGE_SIZE"),
		},
		RedisURL: v.GetString("REDIS_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("HTTP_PORT", "8080")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "taskuser")
	v.SetDefault("DB_PASSWORD", "taskpassword")
	v.SetDefault("DB_NAME", "task_management")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "taskhub")
	v.SetDefault("ACCESS_TOKEN_LIFETIME", "5m")
	v.SetDefault("REFRESH_TOKEN_LIFETIME", "24h")
	v.SetDefault("ROTATE_REFRESH_TOKENS", false)
	v.SetDefault("TOKEN_BLACKLIST_BACKEND", BlacklistDatabase)
	v.SetDefault("USERNAME_MAX_RETRIES", 5)

	v.SetDefault("AUTH_COOKIES_ENABLED", true)
	v.SetDefault("JWT_AUTH_COOKIE", "access_token")
	v.SetDefault("JWT_AUTH_REFRESH_COOKIE", "refresh_token")
	v.SetDefault("JWT_AUTH_COOKIE_SECURE", true)
	v.SetDefault("JWT_AUTH_COOKIE_HTTP_ONLY", true)
	v.SetDefault("JWT_AUTH_COOKIE_SAMESITE", "Lax")
	v.SetDefault("JWT_AUTH_COOKIE_DOMAIN", "")

	v.SetDefault("DEFAULT_PAGE_SIZE", constants.DefaultPageSize)
	v.SetDefault("MAX_PAGE_SIZE", constants.MaxPageSize)

	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
}

// Validate rejects configurations the server cannot safely run with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	switch c.Auth.BlacklistBackend {
	case BlacklistDatabase, BlacklistRedis, BlacklistMemory:
	default:
		return fmt.Errorf("unsupported TOKEN_BLACKLIST_BACKEND %q", c.Auth.BlacklistBackend)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed in release mode")
	}
	if c.Auth.AccessTokenLifetime <= 0 || c.Auth.RefreshTokenLifetime <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.Pagination.DefaultPageSize < 1 || c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("invalid pagination sizes: default=%d max=%d",
			c.Pagination.DefaultPageSize, c.Pagination.MaxPageSize)
	}
	if c.Auth.UsernameMaxRetries < 0 {
		return errors.New("USERNAME_MAX_RETRIES must not be negative")
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
