// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Role names used by the cash-register and settlement surfaces.
const (
	RoleAdmin        = "admin"
	RoleReception    = "reception"
	RoleProfessional = "professional"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID         string
	Email          string
	Role           string
	ProfessionalID string // set when the user is a clinic professional
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// HasRole checks if the authenticated user has the given role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.Role == role
}

// IsAdmin reports whether the authenticated user is an administrator.
func IsAdmin(ctx context.Context) bool {
	return HasRole(ctx, RoleAdmin)
}
