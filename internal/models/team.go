package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	OwnerID   uuid.UUID `gorm:"type:varchar(36);not null;index" json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner    User         `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Members  []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Projects []Project    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
