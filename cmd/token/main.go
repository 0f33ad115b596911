// token emite un JWT para pruebas locales con el secreto de la configuración.
//
// Uso: go run ./cmd/token --role bodeguero [--user <uuid>] [--minutes 60]
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/jwt"
)

func main() {
	var (
		role    = pflag.String("role", jwt.RoleVendedor, "admin | bodeguero | vendedor")
		userID  = pflag.String("user", "", "UUID del usuario (por defecto uno nuevo)")
		minutes = pflag.Int("minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	)
	pflag.Parse()

	switch *role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido: %s\n", *role)
		os.Exit(2)
	}
	if *userID == "" {
		*userID = uuid.New().String()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
