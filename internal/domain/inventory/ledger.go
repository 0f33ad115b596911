package inventory

import (
	"fmt"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCostScale es la cantidad de decimales del costo promedio (centavos).
	DefaultCostScale int32 = 2
	// DefaultQuantityScale decimales de cantidad que conserva el Kardex (NUMERIC(18,4)).
	DefaultQuantityScale int32 = 4
	// UnitCostScale decimales de costo unitario que conserva el Kardex (NUMERIC(18,8)).
	UnitCostScale int32 = 8
)

// Scale decimales con los que se calcula y se registra un movimiento.
// Una cantidad con más decimales que Quantity se rechaza: el historial guardado
// debe reproducir exactamente el costo calculado al registrar.
type Scale struct {
	Cost     int32
	Quantity int32
}

// DefaultScale escala de costo y cantidad por defecto.
func DefaultScale() Scale {
	return Scale{Cost: DefaultCostScale, Quantity: DefaultQuantityScale}
}

// Balance es la proyección (saldo, costo promedio) de un producto.
type Balance struct {
	Stock decimal.Decimal
	Cost  decimal.Decimal
}

// Posting describe un movimiento a aplicar sobre un Balance.
// UnitCost nil en una entrada significa "sin costo informado".
type Posting struct {
	Kind     entity.MovementKind
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal
}

// Applied es el resultado de aplicar un Posting.
type Applied struct {
	Balance
	UnitCost decimal.Decimal // costo que se registra en el movimiento
}

// Apply valida el posting contra el saldo actual y calcula el nuevo saldo y costo.
// No tiene efectos secundarios.
func Apply(b Balance, p Posting, scale Scale) (Applied, error) {
	if !p.Kind.Valid() {
		return Applied{}, fmt.Errorf("tipo de movimiento %q: %w", p.Kind, domain.ErrInvalidInput)
	}
	if !fitsScale(p.Quantity, scale.Quantity) {
		return Applied{}, fmt.Errorf("cantidad %s admite máximo %d decimales: %w", p.Quantity, scale.Quantity, domain.ErrInvalidInput)
	}
	if !p.Kind.SignOK(p.Quantity) {
		return Applied{}, fmt.Errorf("cantidad %s no válida para %s: %w", p.Quantity, p.Kind, domain.ErrInvalidInput)
	}

	if p.Quantity.IsPositive() {
		unitCost, err := inboundUnitCost(b, p)
		if err != nil {
			return Applied{}, err
		}
		return Applied{
			Balance:  Balance{Stock: b.Stock.Add(p.Quantity), Cost: nextCost(b, p.Kind, p.Quantity, unitCost, scale.Cost)},
			UnitCost: unitCost,
		}, nil
	}

	newStock := b.Stock.Add(p.Quantity)
	if newStock.IsNegative() && !p.Kind.AllowsNegativeBalance() {
		return Applied{}, fmt.Errorf("saldo %s, salida %s: %w", b.Stock, p.Quantity.Neg(), domain.ErrInsufficientStock)
	}
	return Applied{
		Balance:  Balance{Stock: newStock, Cost: b.Cost},
		UnitCost: b.Cost,
	}, nil
}

// Replay aplica un movimiento ya registrado, sin validaciones: el historial es la fuente de verdad.
func Replay(b Balance, m *entity.InventoryMovement, costScale int32) Balance {
	if m.Quantity.IsPositive() {
		return Balance{
			Stock: b.Stock.Add(m.Quantity),
			Cost:  nextCost(b, m.Kind, m.Quantity, m.UnitCost, costScale),
		}
	}
	return Balance{Stock: b.Stock.Add(m.Quantity), Cost: b.Cost}
}

func inboundUnitCost(b Balance, p Posting) (decimal.Decimal, error) {
	if p.UnitCost == nil {
		switch p.Kind {
		case entity.MovementInitial, entity.MovementPurchase:
			return decimal.Zero, fmt.Errorf("unit_cost requerido en %s: %w", p.Kind, domain.ErrInvalidInput)
		case entity.MovementAdjustment, entity.MovementSale, entity.MovementShrinkage:
			// ajuste positivo sin costo: entra al costo promedio vigente
			return b.Cost, nil
		}
	}
	if p.UnitCost.IsNegative() {
		return decimal.Zero, fmt.Errorf("unit_cost %s: %w", p.UnitCost, domain.ErrNegativeUnitCost)
	}
	if !fitsScale(*p.UnitCost, UnitCostScale) {
		return decimal.Zero, fmt.Errorf("unit_cost %s admite máximo %d decimales: %w", p.UnitCost, UnitCostScale, domain.ErrInvalidInput)
	}
	return *p.UnitCost, nil
}

// fitsScale indica si d se representa sin pérdida con places decimales ("1.50000" sí cabe en 2).
func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// nextCost es el único camino de cálculo de costo, compartido por Apply y Replay.
func nextCost(b Balance, kind entity.MovementKind, qty, unitCost decimal.Decimal, scale int32) decimal.Decimal {
	if !kind.AffectsCost() {
		return b.Cost
	}
	return RoundCost(CostCalculator(b.Stock, b.Cost, qty, unitCost), scale)
}
