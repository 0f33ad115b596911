package dto

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// ToProductResponse convierte la entidad a su salida HTTP.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Category:       p.Category,
		Price:          p.Price,
		Cost:           p.Cost,
		Stock:          p.Stock,
		MinStock:       p.MinStock,
		InventoryValue: p.InventoryValue().Round(2),
		Active:         p.Active,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToMovementResponse convierte un movimiento del Kardex a su salida HTTP.
func ToMovementResponse(m *entity.InventoryMovement) MovementResponse {
	return MovementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Sequence:         m.Sequence,
		Kind:             string(m.Kind),
		Quantity:         m.Quantity,
		UnitCost:         m.UnitCost,
		TotalCost:        m.TotalCost,
		ResultingCost:    m.ResultingCost,
		ResultingBalance: m.ResultingBalance,
		Reference:        m.Reference,
		ReversesID:       m.ReversesID,
		CreatedBy:        m.CreatedBy,
		Date:             m.Date,
	}
}
