package models

import "github.com/google/uuid"

type TeamRole string

const (
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
)

// TeamMember links a user to a team. Each (team, user) pair appears once.
type TeamMember struct {
	ID     uint64    `gorm:"primarykey" json:"id"`
	TeamID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_team_members_team_user" json:"team_id"`
	UserID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_team_members_team_user" json:"user_id"`
	Role   TeamRole  `gorm:"type:varchar(20);not null" json:"role"`
}
