package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Kardex-api/internal/application/auth"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/usecase"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Kardex-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/xmlexport"
	httpRouter "github.com/jhoicas/Kardex-api/internal/interfaces/http"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner    inventory.TxRunner
		productRepo repository.ProductRepository
		movRepo     repository.InventoryMovementRepository
		userRepo    repository.UserRepository
	)
	switch cfg.Store.Driver {
	case "memory":
		// Solo para desarrollo: el Kardex se pierde al reiniciar.
		store := memory.New()
		txRunner, productRepo, movRepo = store, store.Products(), store.Movements()
		userRepo = memory.NewUserRepository()
		log.Warn().Msg("almacenamiento en memoria: los datos no se persisten")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout())
		productRepo = postgres.NewProductRepository(pool)
		movRepo = postgres.NewInventoryMovementRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
	}

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	created, err := authUC.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	if created {
		log.Info().Str("email", cfg.Auth.AdminEmail).Msg("administrador inicial creado")
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, productRepo, movRepo, inventory.LedgerConfig{
		CostScale:     int32(cfg.Ledger.CostScale),
		QuantityScale: int32(cfg.Ledger.QuantityScale),
		MaxRetries:    cfg.Ledger.MaxRetries,
		RetryBackoff:  cfg.Ledger.RetryBackoff(),
		PageSize:      cfg.Ledger.PageSize,
	}, log.Component("ledger"))
	productUC := usecase.NewProductUseCase(productRepo)
	replenishmentUC := inventory.NewReplenishmentUseCase(productRepo)

	// Reportes: PDF del Kardex y XML canónico de auditoría
	reportUC := inventory.NewReportUseCase(
		ledgerUC, productRepo,
		infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		xmlexport.NewExporter(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Kardex API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		Ledger:        ledgerUC,
		Replenishment: replenishmentUC,
		Reports:       reportUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
