package memory

import (
	"context"
	"strings"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/auth"
)

var _ auth.Repository = (*UserRepo)(nil)

// UserRepo implements auth.Repository over the store.
type UserRepo struct {
	store *Store
}

func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperror.NewConflict("email already registered").WithDetail("email", u.Email)
		}
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	defer r.store.lock(ctx)()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	defer r.store.lock(ctx)()

	u, ok := r.store.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	cp := *u
	return &cp, nil
}
