package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// ValidRole indica si r es uno de los roles definidos.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleBodeguero, RoleVendedor:
		return true
	}
	return false
}

// User representa un usuario del sistema. Su ID queda registrado como actor de cada movimiento.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, bodeguero, vendedor
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
