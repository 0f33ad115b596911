package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// LedgerConfig parámetros del motor de Kardex.
type LedgerConfig struct {
	CostScale     int32         // decimales del costo promedio
	QuantityScale int32         // decimales admitidos en cantidades (máximo 4)
	MaxRetries    int           // reintentos ante conflicto o almacenamiento no disponible
	RetryBackoff  time.Duration // espera base entre reintentos (lineal)
	PageSize      int           // tamaño de página al leer el Kardex
}

// DefaultLedgerConfig valores por defecto.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		CostScale:     inventory.DefaultCostScale,
		QuantityScale: inventory.DefaultQuantityScale,
		MaxRetries:    3,
		RetryBackoff:  25 * time.Millisecond,
		PageSize:      200,
	}
}

// LedgerUseCase es el único camino autorizado para modificar saldo y costo de un producto.
// Cada movimiento se registra en una transacción con bloqueo de fila (SELECT FOR UPDATE)
// y control de versión; producto y movimiento se confirman juntos o no se confirma nada.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	cfg         LedgerConfig
	log         zerolog.Logger
	now         func() time.Time
	newID       func() string
}

// NewLedgerUseCase construye el motor. productRepo y movRepo se usan solo para lecturas fuera de transacción.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	cfg LedgerConfig,
	log zerolog.Logger,
) *LedgerUseCase {
	def := DefaultLedgerConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.CostScale < 0 || cfg.CostScale > inventory.UnitCostScale {
		cfg.CostScale = def.CostScale
	}
	if cfg.QuantityScale < 0 || cfg.QuantityScale > inventory.DefaultQuantityScale {
		cfg.QuantityScale = def.QuantityScale
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// NewProductSpec datos para crear un producto en su primer movimiento.
type NewProductSpec struct {
	Code     string
	Name     string
	Category string
	Cost     decimal.Decimal // costo inicial; se usa como unit_cost si no se informa otro
	Price    decimal.Decimal
	MinStock decimal.Decimal
}

// PostMovementInput entrada de post_movement.
// ProductID o NewProduct: si ProductID está vacío se resuelve por NewProduct.Code y se crea si no existe.
type PostMovementInput struct {
	ProductID  string
	NewProduct *NewProductSpec
	Kind       entity.MovementKind
	Quantity   decimal.Decimal  // con signo: positivo entrada, negativo salida
	UnitCost   *decimal.Decimal // obligatorio en INITIAL y PURCHASE
	SalePrice  *decimal.Decimal // si es positivo actualiza el precio de referencia
	Reference  string
	Actor      string
}

// PostMovementResult producto actualizado y movimiento creado.
type PostMovementResult struct {
	Product  entity.Product
	Movement entity.InventoryMovement
	Created  bool // el producto se creó en esta llamada
}

// movementDraft movimiento ya validado en su forma, pendiente de aplicar sobre el producto bloqueado.
type movementDraft struct {
	posting    inventory.Posting
	salePrice  *decimal.Decimal
	reference  string
	actor      string
	reversesID *string
}

// PostMovement valida, calcula el nuevo costo/saldo, persiste el producto y agrega el movimiento.
// Conflictos de concurrencia y fallas transitorias se reintentan con el mismo ID de movimiento.
func (uc *LedgerUseCase) PostMovement(ctx context.Context, in PostMovementInput) (*PostMovementResult, error) {
	if in.ProductID == "" && in.NewProduct == nil {
		return nil, domain.ErrUnresolvableProduct
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("tipo de movimiento %q: %w", in.Kind, domain.ErrInvalidInput)
	}
	if in.ProductID == "" {
		alta := *in.NewProduct
		alta.Code = strings.TrimSpace(alta.Code)
		in.NewProduct = &alta
		if alta.Code == "" {
			return nil, domain.ErrUnresolvableProduct
		}
	}

	movID := uc.newID()
	var result *PostMovementResult
	err := uc.withRetry(ctx, "post_movement", func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) error {
			product, created, err := uc.resolveProduct(ctx, productRepo, in)
			if err != nil {
				return err
			}
			unitCost := in.UnitCost
			if created && unitCost == nil {
				c := in.NewProduct.Cost
				unitCost = &c
			}
			res, err := uc.applyInTx(ctx, movRepo, productRepo, product, movementDraft{
				posting:   inventory.Posting{Kind: in.Kind, Quantity: in.Quantity, UnitCost: unitCost},
				salePrice: in.SalePrice,
				reference: in.Reference,
				actor:     in.Actor,
			}, movID)
			if err != nil {
				return err
			}
			res.Created = created
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Debug().
		Str("product_id", result.Product.ID).
		Str("movement_id", result.Movement.ID).
		Str("kind", string(result.Movement.Kind)).
		Str("quantity", result.Movement.Quantity.String()).
		Str("balance", result.Movement.ResultingBalance.String()).
		Str("avg_cost", result.Movement.ResultingCost.String()).
		Msg("movimiento registrado")
	return result, nil
}

// ReverseMovement anula un movimiento agregando un ADJUSTMENT con la cantidad opuesta enlazado al original.
// El historial nunca se modifica. Un movimiento solo puede reversarse una vez.
func (uc *LedgerUseCase) ReverseMovement(ctx context.Context, movementID, reference, actor string) (*PostMovementResult, error) {
	if movementID == "" {
		return nil, domain.ErrInvalidInput
	}
	orig, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, domain.ErrNotFound
	}
	if orig.IsReversal() {
		return nil, fmt.Errorf("el movimiento %s ya es un reverso: %w", orig.ID, domain.ErrInvalidInput)
	}
	if reference == "" {
		reference = "REVERSO " + orig.Reference
	}

	movID := uc.newID()
	var result *PostMovementResult
	err = uc.withRetry(ctx, "reverse_movement", func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) error {
			product, err := productRepo.GetForUpdate(ctx, orig.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			// con el producto bloqueado, la verificación de reverso previo no tiene carrera
			prev, err := movRepo.GetReversalOf(ctx, orig.ID)
			if err != nil {
				return err
			}
			if prev != nil {
				return fmt.Errorf("reversado por %s: %w", prev.ID, domain.ErrAlreadyReversed)
			}
			unitCost := orig.UnitCost
			res, err := uc.applyInTx(ctx, movRepo, productRepo, product, movementDraft{
				posting: inventory.Posting{
					Kind:     entity.MovementAdjustment,
					Quantity: orig.Quantity.Neg(),
					UnitCost: &unitCost,
				},
				reference:  reference,
				actor:      actor,
				reversesID: &orig.ID,
			}, movID)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", result.Product.ID).
		Str("movement_id", result.Movement.ID).
		Str("reverses_id", orig.ID).
		Msg("movimiento reversado")
	return result, nil
}

// resolveProduct bloquea el producto existente o lo crea con saldo y costo cero.
func (uc *LedgerUseCase) resolveProduct(
	ctx context.Context,
	productRepo repository.ProductRepository,
	in PostMovementInput,
) (*entity.Product, bool, error) {
	if in.ProductID != "" {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return nil, false, err
		}
		if product == nil {
			return nil, false, domain.ErrNotFound
		}
		return product, false, nil
	}

	alta := in.NewProduct
	product, err := productRepo.GetByCodeForUpdate(ctx, alta.Code)
	if err != nil {
		return nil, false, err
	}
	if product != nil {
		return product, false, nil
	}
	if !in.Quantity.IsPositive() {
		return nil, false, domain.ErrZeroOrNegativeQuantityOnCreate
	}
	if strings.TrimSpace(alta.Name) == "" {
		return nil, false, fmt.Errorf("name requerido para crear %s: %w", alta.Code, domain.ErrInvalidInput)
	}
	now := uc.now()
	product = &entity.Product{
		ID:        uuid.New().String(),
		Code:      alta.Code,
		Name:      strings.TrimSpace(alta.Name),
		Category:  alta.Category,
		Price:     alta.Price,
		Cost:      decimal.Zero,
		Stock:     decimal.Zero,
		MinStock:  alta.MinStock,
		Active:    true,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// otro terminal creó el mismo código; el reintento lo encontrará
			return nil, false, fmt.Errorf("crear %s: %w", alta.Code, domain.ErrConcurrentModification)
		}
		return nil, false, err
	}
	return product, true, nil
}

// applyInTx aplica el draft sobre el producto bloqueado: costo, saldo, versión y movimiento.
func (uc *LedgerUseCase) applyInTx(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	draft movementDraft,
	movID string,
) (*PostMovementResult, error) {
	if !product.Active {
		return nil, domain.ErrProductInactive
	}
	applied, err := inventory.Apply(
		inventory.Balance{Stock: product.Stock, Cost: product.Cost},
		draft.posting,
		inventory.Scale{Cost: uc.cfg.CostScale, Quantity: uc.cfg.QuantityScale},
	)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	expectedVersion := product.Version
	product.Stock = applied.Stock
	product.Cost = applied.Cost
	product.Version = expectedVersion + 1
	product.UpdatedAt = now
	if draft.salePrice != nil && draft.salePrice.IsPositive() {
		product.Price = *draft.salePrice
	}
	if err := productRepo.SaveLedgerState(ctx, product, expectedVersion); err != nil {
		return nil, err
	}

	qty := draft.posting.Quantity
	mov := entity.InventoryMovement{
		ID:               movID,
		ProductID:        product.ID,
		Sequence:         product.Version,
		Kind:             draft.posting.Kind,
		Quantity:         qty,
		UnitCost:         applied.UnitCost,
		TotalCost:        qty.Mul(applied.UnitCost),
		ResultingCost:    applied.Cost,
		ResultingBalance: applied.Stock,
		Reference:        draft.reference,
		ReversesID:       draft.reversesID,
		CreatedBy:        draft.actor,
		Date:             now,
	}
	if err := movRepo.Append(ctx, &mov); err != nil {
		return nil, err
	}
	return &PostMovementResult{Product: *product, Movement: mov}, nil
}

// withRetry ejecuta fn reintentando errores transitorios. Cada intento corre desacoplado de la
// cancelación del caller: una vez admitido, el intento termina en commit o rollback completo.
func (uc *LedgerUseCase) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(context.WithoutCancel(ctx))
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) || attempt >= uc.cfg.MaxRetries {
			return err
		}
		uc.log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Msg("reintentando movimiento")

		if uc.cfg.RetryBackoff > 0 {
			t := time.NewTimer(uc.cfg.RetryBackoff * time.Duration(attempt+1))
			select {
			case <-ctx.Done():
				t.Stop()
				return err
			case <-t.C:
			}
		}
	}
}
