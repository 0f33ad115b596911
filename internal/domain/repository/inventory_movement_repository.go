package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// MovementFilter filtra el Kardex de un producto. La paginación es por keyset sobre Sequence.
type MovementFilter struct {
	From       *time.Time
	To         *time.Time
	Descending bool
	// AfterSequence continúa después de esta secuencia (antes de ella si Descending). 0 = desde el inicio.
	AfterSequence int64
	// MaxSequence acota la lectura a movimientos con Sequence <= MaxSequence. 0 = sin cota.
	MaxSequence int64
	Limit       int
}

// InventoryMovementRepository define el puerto de persistencia para movimientos (solo inserción).
type InventoryMovementRepository interface {
	Append(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	// GetReversalOf devuelve el movimiento que reversa a id, o nil.
	GetReversalOf(ctx context.Context, id string) (*entity.InventoryMovement, error)
	ListByProduct(ctx context.Context, productID string, filter MovementFilter) ([]*entity.InventoryMovement, error)
}
