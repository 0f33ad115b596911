package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Kardex-api/internal/application/auth"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/Kardex-api/pkg/jwt"
)

const secret = "auth-test-secret"

func newAuth() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewUserRepository(), auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"}).
		WithHashCost(bcrypt.MinCost)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Bodega@Tienda.co ", Password: "secreto123", Role: "bodeguero"})
	require.NoError(t, err)
	assert.Equal(t, "bodega@tienda.co", u.Email)
	assert.Equal(t, "bodega@tienda.co", u.Name)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "BODEGA@tienda.co", Password: "otraclave1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "bodega@tienda.co", Password: "secreto123"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, jwt.RoleBodeguero, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "bodega@tienda.co", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@tienda.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegister_Validaciones(t *testing.T) {
	uc := newAuth()
	tests := map[string]dto.RegisterRequest{
		"email vacío":    {Password: "secreto123"},
		"password corto": {Email: "a@b.co", Password: "corta"},
		"rol inválido":   {Email: "a@b.co", Password: "secreto123", Role: "gerente"},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := uc.RegisterUser(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	created, err := uc.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = uc.EnsureAdmin(ctx, "admin@tienda.co", "admin12345")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "otro@tienda.co", "admin12345")
	require.NoError(t, err)
	assert.False(t, created, "ya existen usuarios")

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "admin@tienda.co", Password: "admin12345"})
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, out.User.Role)
}
