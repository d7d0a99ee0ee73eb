package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/database"
	"github.com/yukikurage/taskhub-api/internal/testutil"
	"github.com/yukikurage/taskhub-api/internal/token"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newClaims(expiresIn time.Duration) *token.Claims {
	return &token.Claims{
		UserID:    uuid.New(),
		TokenType: token.TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := database.Open(postgres.New(postgres.Config{Conn: sqlDB}), logger.Silent)
	require.NoError(t, err)
	return db, mock
}

func TestBlacklistRepository_RevokeOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewBlacklistRepository(testutil.NewDB(t))
	claims := newClaims(time.Hour)

	revoked, err := repo.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	first, err := repo.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.Revoke(ctx, claims)
	require.NoError(t, err)
	assert.False(t, second)

	revoked, err = repo.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestBlacklistRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewBlacklistRepository(testutil.NewDB(t))

	expired := newClaims(-time.Minute)
	live := newClaims(time.Hour)
	for _, c := range []*token.Claims{expired, live} {
		_, err := repo.Revoke(ctx, c)
		require.NoError(t, err)
	}

	deleted, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	revoked, err := repo.IsRevoked(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = repo.IsRevoked(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestBlacklistRepository_PostgresConflictIsNotAWin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBlacklistRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "blacklisted_tokens" .* ON CONFLICT \("jti"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	won, err := repo.Revoke(context.Background(), newClaims(time.Hour))
	require.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklistRepository_PostgresInsertWins(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBlacklistRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "blacklisted_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	won, err := repo.Revoke(context.Background(), newClaims(time.Hour))
	require.NoError(t, err)
	assert.True(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklistRepository_PropagatesDatabaseErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBlacklistRepository(db)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT count\(\*\) FROM "blacklisted_tokens"`).WillReturnError(boom)

	_, err := repo.IsRevoked(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, boom)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "blacklisted_tokens"`).WillReturnError(boom)
	mock.ExpectRollback()

	_, err = repo.DeleteExpired(context.Background(), time.Now())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
