// import_catalog carga el catálogo y las existencias de un sistema anterior en el Kardex.
//
// Lee un CSV separado por ';' (por defecto en ISO-8859-1) con encabezado
// codigo;nombre;categoria;existencia;costo;precio;minimo y registra un movimiento
// INITIAL por producto. Los códigos que ya existen se omiten, por lo que puede
// ejecutarse varias veces sobre el mismo archivo.
//
// Uso: go run ./cmd/import_catalog --file inventario.csv [--utf8] [--dry-run]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/usecase"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// importer registra cada fila del catálogo a través del motor de Kardex.
type importer struct {
	ledger   *inventory.LedgerUseCase
	products *usecase.ProductUseCase
	repo     repository.ProductRepository
	actor    string
	log      zerolog.Logger
}

type importStats struct {
	created, skipped, failed int
}

func (im *importer) run(ctx context.Context, rows []catalogRow) importStats {
	var st importStats
	for _, row := range rows {
		existing, err := im.repo.GetByCode(ctx, row.Code)
		if err != nil {
			im.log.Error().Err(err).Int("line", row.Line).Str("code", row.Code).Msg("consultar código")
			st.failed++
			continue
		}
		if existing != nil {
			im.log.Debug().Int("line", row.Line).Str("code", row.Code).Msg("código existente, se omite")
			st.skipped++
			continue
		}
		if err := im.importRow(ctx, row); err != nil {
			im.log.Error().Err(err).Int("line", row.Line).Str("code", row.Code).Msg("importar fila")
			st.failed++
			continue
		}
		st.created++
	}
	return st
}

func (im *importer) importRow(ctx context.Context, row catalogRow) error {
	// sin existencia no hay movimiento: solo catálogo
	if !row.Stock.IsPositive() {
		_, err := im.products.Create(ctx, dto.CreateProductRequest{
			Code:     row.Code,
			Name:     row.Name,
			Category: row.Category,
			Price:    row.Price,
			MinStock: row.MinStock,
		})
		return err
	}
	cost := row.Cost
	_, err := im.ledger.PostMovement(ctx, inventory.PostMovementInput{
		NewProduct: &inventory.NewProductSpec{
			Code:     row.Code,
			Name:     row.Name,
			Category: row.Category,
			Cost:     row.Cost,
			Price:    row.Price,
			MinStock: row.MinStock,
		},
		Kind:      entity.MovementInitial,
		Quantity:  row.Stock,
		UnitCost:  &cost,
		Reference: fmt.Sprintf("IMPORTACION linea %d", row.Line),
		Actor:     im.actor,
	})
	return err
}

func main() {
	var (
		file   = pflag.StringP("file", "f", "", "CSV a importar")
		utf8   = pflag.Bool("utf8", false, "el archivo ya está en UTF-8")
		dryRun = pflag.Bool("dry-run", false, "validar contra un almacenamiento en memoria sin escribir en la base")
		actor  = pflag.String("actor", "", "usuario que registra los movimientos (UUID)")
	)
	pflag.Parse()
	if *file == "" {
		fmt.Fprintln(os.Stderr, "uso: import_catalog --file inventario.csv [--utf8] [--dry-run]")
		os.Exit(2)
	}
	if *actor != "" {
		if _, err := uuid.Parse(*actor); err != nil {
			fmt.Fprintf(os.Stderr, "actor inválido: %v\n", err)
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import_catalog"})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, skipped, err := readCatalog(f, !*utf8)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	for _, e := range skipped {
		log.Warn().Err(e).Msg("fila descartada")
	}

	ctx := context.Background()
	var (
		txRunner    inventory.TxRunner
		productRepo repository.ProductRepository
		movRepo     repository.InventoryMovementRepository
	)
	if *dryRun || cfg.Store.Driver == "memory" {
		store := memory.New()
		txRunner, productRepo, movRepo = store, store.Products(), store.Movements()
	} else {
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
	}

	im := &importer{
		ledger: inventory.NewLedgerUseCase(txRunner, productRepo, movRepo, inventory.LedgerConfig{
			CostScale:     int32(cfg.Ledger.CostScale),
			QuantityScale: int32(cfg.Ledger.QuantityScale),
			MaxRetries:    cfg.Ledger.MaxRetries,
			RetryBackoff:  cfg.Ledger.RetryBackoff(),
			PageSize:      cfg.Ledger.PageSize,
		}, log.Component("ledger")),
		products: usecase.NewProductUseCase(productRepo),
		repo:     productRepo,
		actor:    *actor,
		log:      log.Zerolog(),
	}
	st := im.run(ctx, rows)

	log.Info().
		Str("file", *file).
		Bool("dry_run", *dryRun).
		Int("rows", len(rows)).
		Int("discarded", len(skipped)).
		Int("created", st.created).
		Int("skipped", st.skipped).
		Int("failed", st.failed).
		Msg("importación finalizada")
	if st.failed > 0 {
		os.Exit(1)
	}
}
