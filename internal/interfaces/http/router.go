package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/auth"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/usecase"
	"github.com/jhoicas/Kardex-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Reports       *inventory.ReportUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authHandler := NewAuthHandler(deps.AuthUC)

	// Auth (público)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)

	// Alta de usuarios (solo admin)
	protected.Post("/auth/register", RequireRole(jwt.RoleAdmin), authHandler.Register)

	// Products (protegido; escritura solo admin y bodeguero)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", writers, productHandler.Create)
	products.Put("/:id", writers, productHandler.Update)
	products.Delete("/:id", writers, productHandler.Deactivate)
	products.Post("/:id/activate", writers, productHandler.Activate)

	// Kardex (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment, deps.Reports)
	invGroup.Post("/movements", inventoryHandler.PostMovement)
	invGroup.Post("/movements/:id/reverse", writers, inventoryHandler.ReverseMovement)
	invGroup.Get("/products/:id/kardex", inventoryHandler.GetKardex)
	invGroup.Get("/products/:id/kardex/pdf", inventoryHandler.DownloadKardexPDF)
	invGroup.Get("/products/:id/kardex/xml", inventoryHandler.ExportKardexXML)
	invGroup.Get("/products/:id/verify", inventoryHandler.VerifyProduct)
	invGroup.Get("/low-stock", inventoryHandler.GetReplenishmentList)
}
