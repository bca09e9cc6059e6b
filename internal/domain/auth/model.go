// Package auth provides authentication for the cash-register and
// settlement surfaces.
package auth

import (
	"context"
	"time"

	"clinicash/internal/core/id"
)

// User is an application account. Reception staff and administrators manage
// registers and closes; professionals see their own settlements.
type User struct {
	ID           id.ID  `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Name         string `db:"name" json:"name"`

	// Role: admin, reception or professional.
	Role string `db:"role" json:"role"`

	// ProfessionalID links professional accounts to their catalog entry.
	ProfessionalID id.ID `db:"professional_id" json:"professionalId,omitempty"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Repository defines persistence for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID id.ID) (*User, error)
}
