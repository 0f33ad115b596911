package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind es el tipo de movimiento del Kardex. Enumeración cerrada: no existe un tipo "otro".
type MovementKind string

// Tipos de movimiento de inventario.
const (
	MovementInitial    MovementKind = "INITIAL"    // primer inventario de un producto
	MovementPurchase   MovementKind = "PURCHASE"   // recepción de compra a proveedor
	MovementSale       MovementKind = "SALE"       // venta en caja
	MovementAdjustment MovementKind = "ADJUSTMENT" // corrección manual o reverso
	MovementShrinkage  MovementKind = "SHRINKAGE"  // merma, pérdida o rotura
)

// MovementKinds lista todos los tipos válidos.
var MovementKinds = []MovementKind{
	MovementInitial, MovementPurchase, MovementSale, MovementAdjustment, MovementShrinkage,
}

// ParseMovementKind convierte un string al tipo; ok=false si no es un tipo conocido.
func ParseMovementKind(s string) (MovementKind, bool) {
	k := MovementKind(s)
	return k, k.Valid()
}

// Valid indica si k es uno de los tipos definidos.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementInitial, MovementPurchase, MovementSale, MovementAdjustment, MovementShrinkage:
		return true
	}
	return false
}

// AffectsCost indica si una entrada de este tipo recalcula el costo promedio.
// Las salidas nunca lo modifican.
func (k MovementKind) AffectsCost() bool {
	switch k {
	case MovementInitial, MovementPurchase, MovementAdjustment:
		return true
	case MovementSale, MovementShrinkage:
		return false
	}
	return false
}

// AllowsNegativeBalance indica si el tipo puede dejar el saldo en negativo.
func (k MovementKind) AllowsNegativeBalance() bool {
	switch k {
	case MovementAdjustment:
		return true
	case MovementInitial, MovementPurchase, MovementSale, MovementShrinkage:
		return false
	}
	return false
}

// SignOK valida el signo de la cantidad según el tipo. Cero nunca es válido.
func (k MovementKind) SignOK(qty decimal.Decimal) bool {
	if qty.IsZero() {
		return false
	}
	switch k {
	case MovementInitial, MovementPurchase:
		return qty.IsPositive()
	case MovementSale, MovementShrinkage:
		return qty.IsNegative()
	case MovementAdjustment:
		return true
	}
	return false
}

// InventoryMovement es un hecho inmutable del Kardex.
// Quantity es con signo: positivo entrada, negativo salida.
type InventoryMovement struct {
	ID               string
	ProductID        string
	Sequence         int64 // orden dentro del producto (1..n)
	Kind             MovementKind
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal // costo del lote en entradas; costo promedio vigente en salidas
	TotalCost        decimal.Decimal // Quantity * UnitCost
	ResultingCost    decimal.Decimal // costo promedio después del movimiento
	ResultingBalance decimal.Decimal // saldo después del movimiento
	Reference        string          // factura, orden, nota de ajuste, etc.
	ReversesID       *string         // movimiento que este reversa, si aplica
	CreatedBy        string
	Date             time.Time
}

// Inbound indica si el movimiento aumenta el saldo.
func (m *InventoryMovement) Inbound() bool {
	return m.Quantity.IsPositive()
}

// IsReversal indica si el movimiento reversa a otro.
func (m *InventoryMovement) IsReversal() bool {
	return m.ReversesID != nil && *m.ReversesID != ""
}
