// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/logging"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. An in-memory database
// lives on a single connection, so the pool is capped at one.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, logging.Discard()))
	return db
}

// Config returns a configuration suitable for tests: SQLite, memory
// blacklist and cookies enabled.
func Config() *config.Config {
	return &config.Config{
		AppEnv:   "test",
		GinMode:  "test",
		HTTPPort: "0",
		DB: config.DBConfig{
			Driver: config.DriverSQLite,
			Name:   ":memory:",
		},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret",
			JWTIssuer:            "taskhub-test",
			AccessTokenLifetime:  5 * time.Minute,
			RefreshTokenLifetime: 24 * time.Hour,
			BlacklistBackend:     config.BlacklistMemory,
			UsernameMaxRetries:   10,
			CookiesEnabled:       true,
			AccessCookieName:     "access_token",
			RefreshCookieName:    "refresh_token",
			CookieSecure:         true,
			CookieHTTPOnly:       true,
			CookieSameSite:       http.SameSiteLaxMode,
		},
		Pagination: config.PaginationConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
	}
}
