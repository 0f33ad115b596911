package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto sin movimiento (saldo y costo en 0).
type CreateProductRequest struct {
	Code     string          `json:"code" validate:"required,min=1,max=100"`
	Name     string          `json:"name" validate:"required,min=1,max=200"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni Stock).
type UpdateProductRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	MinStock *decimal.Decimal `json:"min_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Category       string          `json:"category,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	Stock          decimal.Decimal `json:"stock"`
	MinStock       decimal.Decimal `json:"min_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	Active         bool            `json:"active"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
