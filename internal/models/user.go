package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	Email        string     `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(150);not null;default:''" json:"first_name"`
	LastName     string     `gorm:"type:varchar(150);not null;default:''" json:"last_name"`
	Avatar       *string    `gorm:"type:text" json:"avatar"`
	Phone        *string    `gorm:"type:varchar(15)" json:"phone"`
	IsActive     bool       `gorm:"not null;default:true" json:"-"`
	DateJoined   time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`
	UpdatedAt    time.Time  `json:"-"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
