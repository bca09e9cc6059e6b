package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clinicash/internal/core/apperror"
	"clinicash/internal/core/id"
	"clinicash/pkg/logger"
)

const passwordMinLength = 8

// Service provides authentication logic.
type Service struct {
	users      Repository
	jwtService *JWTService
}

// NewService creates a new auth service.
func NewService(users Repository, jwtService *JWTService) *Service {
	return &Service{
		users:      users,
		jwtService: jwtService,
	}
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, email, password, name, role string, professionalID id.ID) (*User, error) {
	if email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if len(password) < passwordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", passwordMinLength),
		).WithDetail("field", "password")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", email)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:             id.New(),
		Email:          email,
		PasswordHash:   string(hash),
		Name:           name,
		Role:           role,
		ProfessionalID: professionalID,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user registered", "email", email, "role", role)
	return user, nil
}

// LoginResult carries the issued token and its expiry.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperror.NewUnauthorized("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	pid := ""
	if !id.IsNil(user.ProfessionalID) {
		pid = user.ProfessionalID.String()
	}
	token, expiresAt, err := s.jwtService.GenerateAccessToken(user.ID.String(), user.Email, user.Role, pid)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "user logged in", "email", email)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
