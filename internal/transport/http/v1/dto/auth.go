package dto

import (
	"time"

	"clinicash/internal/core/id"
	"clinicash/internal/domain/auth"
)

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Name           string `json:"name" binding:"required"`
	Role           string `json:"role" binding:"required,oneof=admin reception professional"`
	ProfessionalID string `json:"professionalId,omitempty"`
}

// UserResponse is the public shape of a user account.
type UserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	ProfessionalID string `json:"professionalId,omitempty"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// FromUser maps a user entity to its response shape.
func FromUser(u *auth.User) UserResponse {
	resp := UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
	if !id.IsNil(u.ProfessionalID) {
		resp.ProfessionalID = u.ProfessionalID.String()
	}
	return resp
}
