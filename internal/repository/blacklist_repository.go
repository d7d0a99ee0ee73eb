package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/token"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBlacklistRepository is a GORM implementation of BlacklistRepository
type GormBlacklistRepository struct {
	db *gorm.DB
}

// NewBlacklistRepository creates a new BlacklistRepository
func NewBlacklistRepository(db *gorm.DB) BlacklistRepository {
	return &GormBlacklistRepository{db: db}
}

// Revoke inserts the jti unless it is already present. The unique index on
// jti decides the winner between concurrent callers.
func (r *GormBlacklistRepository) Revoke(ctx context.Context, claims *token.Claims) (bool, error) {
	entry := &models.BlacklistedToken{
		JTI:    claims.ID,
		UserID: claims.UserID,
	}
	if claims.ExpiresAt != nil {
		entry.ExpiresAt = claims.ExpiresAt.Time
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "jti"}},
			DoNothing: true,
		}).
		Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IsRevoked reports whether jti has been blacklisted
func (r *GormBlacklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlacklistedToken{}).Where("jti = ?", jti).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteExpired removes entries whose token expired before cutoff
func (r *GormBlacklistRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&models.BlacklistedToken{})
	return result.RowsAffected, result.Error
}
