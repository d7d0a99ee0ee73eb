package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskhub-api/internal/models"
)

// UserDTO represents a user profile in API responses
type UserDTO struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Avatar     *string    `json:"avatar"`
	Phone      *string    `json:"phone"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

// ToUserDTO converts a user model to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Avatar:     user.Avatar,
		Phone:      user.Phone,
		DateJoined: user.DateJoined,
		LastLogin:  user.LastLogin,
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
	User    UserDTO `json:"user"`
}

// RefreshResponse is returned by token refresh. Refresh is only present
// when refresh tokens are rotated.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
