package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ProductFilter filtros para listar productos.
type ProductFilter struct {
	Search       string // coincide en code o name
	Category     string
	OnlyActive   bool
	BelowMinimum bool
	Limit        int
	Offset       int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Stock, Cost y Version solo se escriben vía SaveLedgerState (motor de inventario).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetByCodeForUpdate igual que GetForUpdate, resolviendo por código.
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error)
	// SaveLedgerState persiste Stock, Cost, Price y Version si la versión almacenada es expectedVersion.
	// Devuelve domain.ErrConcurrentModification si no coincide.
	SaveLedgerState(ctx context.Context, product *entity.Product, expectedVersion int64) error
	// UpdateCatalog actualiza datos descriptivos (nunca Stock, Cost ni Version).
	UpdateCatalog(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	SetActive(ctx context.Context, id string, active bool) error
}
