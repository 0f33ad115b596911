package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// Stock y Cost son una proyección del Kardex: solo el motor de inventario los modifica.
type Product struct {
	ID        string
	Code      string // código de barras / SKU, único
	Name      string
	Category  string
	Price     decimal.Decimal // precio de venta de referencia
	Cost      decimal.Decimal // costo promedio ponderado (inicia en 0)
	Stock     decimal.Decimal // saldo actual
	MinStock  decimal.Decimal // punto de reorden
	Active    bool
	Version   int64 // número de movimientos aplicados; control optimista
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InventoryValue devuelve Stock * Cost.
func (p *Product) InventoryValue() decimal.Decimal {
	return p.Stock.Mul(p.Cost)
}

// BelowMinStock indica si el saldo está por debajo del punto de reorden.
func (p *Product) BelowMinStock() bool {
	return p.MinStock.GreaterThan(decimal.Zero) && p.Stock.LessThan(p.MinStock)
}
