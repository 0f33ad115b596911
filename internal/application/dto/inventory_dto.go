package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewProductRequest datos para crear un producto en su primer movimiento (código desconocido).
type NewProductRequest struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Cost     decimal.Decimal `json:"cost"`
	Price    decimal.Decimal `json:"price"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// PostMovementRequest body para POST /api/inventory/movements.
// product_id o new_product; quantity con signo (positivo entrada, negativo salida).
type PostMovementRequest struct {
	ProductID  string             `json:"product_id,omitempty"`
	NewProduct *NewProductRequest `json:"new_product,omitempty"`
	Kind       string             `json:"kind"`
	Quantity   decimal.Decimal    `json:"quantity"`
	UnitCost   *decimal.Decimal   `json:"unit_cost,omitempty"`
	SalePrice  *decimal.Decimal   `json:"sale_price,omitempty"`
	Reference  string             `json:"reference,omitempty"`
}

// ReverseMovementRequest body para POST /api/inventory/movements/:id/reverse.
type ReverseMovementRequest struct {
	Reference string `json:"reference,omitempty"`
}

// MovementResponse salida de un movimiento del Kardex.
type MovementResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Sequence         int64           `json:"sequence"`
	Kind             string          `json:"kind"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ResultingCost    decimal.Decimal `json:"resulting_cost"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	Reference        string          `json:"reference,omitempty"`
	ReversesID       *string         `json:"reverses_id,omitempty"`
	CreatedBy        string          `json:"created_by,omitempty"`
	Date             time.Time       `json:"date"`
}

// PostMovementResponse producto actualizado + movimiento creado.
type PostMovementResponse struct {
	Product  ProductResponse  `json:"product"`
	Movement MovementResponse `json:"movement"`
	Created  bool             `json:"product_created"`
}

// KardexResponse Kardex de un producto.
type KardexResponse struct {
	ProductID string             `json:"product_id"`
	Order     string             `json:"order"`
	Total     int                `json:"total"`
	Truncated bool               `json:"truncated"`
	Items     []MovementResponse `json:"items"`
}

// VerificationResponse resultado de reconstruir el producto desde su Kardex.
type VerificationResponse struct {
	ProductID         string          `json:"product_id"`
	Movements         int             `json:"movements"`
	StoredStock       decimal.Decimal `json:"stored_stock"`
	StoredCost        decimal.Decimal `json:"stored_cost"`
	ReplayedStock     decimal.Decimal `json:"replayed_stock"`
	ReplayedCost      decimal.Decimal `json:"replayed_cost"`
	Consistent        bool            `json:"consistent"`
	FirstDivergentSeq int64           `json:"first_divergent_sequence,omitempty"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	Code               string          `json:"code"`
	ProductName        string          `json:"product_name"`
	Category           string          `json:"category,omitempty"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinStock           decimal.Decimal `json:"min_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
