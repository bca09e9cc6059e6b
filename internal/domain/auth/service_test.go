package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicash/internal/core/apperror"
	appctx "clinicash/internal/core/context"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/auth"
	"clinicash/internal/storage/memory"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	store := memory.NewStore()
	jwt := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	return auth.NewService(store.Users(), jwt)
}

func TestRegister_Validations(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "password123", "X", appctx.RoleAdmin, id.Nil())
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	_, err = svc.Register(ctx, "a@b.c", "short", "X", appctx.RoleAdmin, id.Nil())
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "front@clinic.test", "password123", "Front", appctx.RoleReception, id.Nil())
	require.NoError(t, err)

	_, err = svc.Register(ctx, "front@clinic.test", "password456", "Front 2", appctx.RoleReception, id.Nil())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestLogin_IssuesValidatableToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	proID := id.New()

	_, err := svc.Register(ctx, "elena@clinic.test", "password123", "Elena", appctx.RoleProfessional, proID)
	require.NoError(t, err)

	result, err := svc.Login(ctx, "elena@clinic.test", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	jwt := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	claims, err := jwt.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "elena@clinic.test", claims.Email)
	assert.Equal(t, appctx.RoleProfessional, claims.Role)
	assert.Equal(t, proID.String(), claims.ProfessionalID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "elena@clinic.test", "password123", "Elena", appctx.RoleProfessional, id.Nil())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "elena@clinic.test", "wrong-password")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)

	_, err = svc.Login(ctx, "nobody@clinic.test", "password123")
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "elena@clinic.test", "password123", "Elena", appctx.RoleProfessional, id.Nil())
	require.NoError(t, err)
	result, err := svc.Login(ctx, "elena@clinic.test", "password123")
	require.NoError(t, err)

	other := auth.NewJWTService(auth.DefaultJWTConfig("different-secret"))
	_, err = other.ValidateToken(result.Token)
	assert.Error(t, err)
}
