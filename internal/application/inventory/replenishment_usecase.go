package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// replenishmentScanLimit máximo de productos bajo mínimo considerados por lista.
const replenishmentScanLimit = 1000

// ReplenishmentUseCase genera la lista de reposición a partir del saldo y el punto de reorden del Kardex.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// GenerateReplenishmentList devuelve los productos activos bajo su stock mínimo con la cantidad
// sugerida de pedido (mínimo * 1.5 - saldo) valorizada al costo promedio vigente.
// category puede ser vacío para considerar todo el catálogo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, category string) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{
		Category:     category,
		OnlyActive:   true,
		BelowMinimum: true,
		Limit:        replenishmentScanLimit,
	})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		if !p.BelowMinStock() {
			continue
		}
		idealStock := p.MinStock.Mul(factor)
		suggestedQty := idealStock.Sub(p.Stock)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			Code:               p.Code,
			ProductName:        p.Name,
			Category:           p.Category,
			CurrentStock:       p.Stock,
			MinStock:           p.MinStock,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           p.Cost,
			EstimatedOrderCost: suggestedQty.Mul(p.Cost).Round(2),
		})
	}

	// Mayor déficit relativo primero; empate: mayor costo estimado.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra := deficitRatio(a.CurrentStock, a.MinStock)
		rb := deficitRatio(b.CurrentStock, b.MinStock)
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// deficitRatio (mínimo - saldo) / mínimo.
func deficitRatio(stock, minStock decimal.Decimal) decimal.Decimal {
	if minStock.IsZero() {
		return decimal.Zero
	}
	return minStock.Sub(stock).Div(minStock)
}
