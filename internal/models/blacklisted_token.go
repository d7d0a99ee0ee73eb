package models

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistedToken records a revoked token by its jti. The unique index on
// JTI makes revocation an insert-if-absent.
type BlacklistedToken struct {
	ID        uint64    `gorm:"primarykey"`
	JTI       string    `gorm:"column:jti;type:varchar(64);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
