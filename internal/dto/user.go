package dto

import (
	"time"

	"github.com/yukikurage/assessment-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64            `json:"id"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	GlobalRole models.GlobalRole `json:"global_role"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by login; the token is an alternative to the session cookie.
type AuthResponse struct {
	User        UserDTO   `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		GlobalRole: user.GlobalRole,
	}
}
