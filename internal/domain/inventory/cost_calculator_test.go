package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Kardex-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator(t *testing.T) {
	tests := []struct {
		name                          string
		stock, cost, qty, unit, wants string
	}{
		{"promedio de dos lotes", "10", "100", "10", "200", "150"},
		{"inventario vacío toma el costo del lote", "0", "0", "5", "80", "80"},
		{"kardex 20@1000 + 10@1300", "20", "1000", "10", "1300", "1100"},
		{"saldo resultante cero", "5", "100", "-5", "0", "0"},
		{"saldo negativo rellenado a cero", "-3", "50", "3", "70", "0"},
		{"saldo negativo que sigue negativo", "-5", "50", "3", "70", "0"},
		{"saldo negativo rellenado por encima de cero", "-3", "50", "5", "70", "100"},
		{"lote a costo cero diluye", "10", "100", "10", "0", "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.CostCalculator(d(tt.stock), d(tt.cost), d(tt.qty), d(tt.unit))
			assert.True(t, d(tt.wants).Equal(got), "esperado %s, obtenido %s", tt.wants, got)
		})
	}
}

// Después de llegar a cero, la base de costo no se arrastra al siguiente lote.
func TestCostCalculator_ResetEnCero(t *testing.T) {
	zero := inventory.CostCalculator(d("5"), d("100"), d("-5"), d("0"))
	assert.True(t, zero.IsZero())

	next := inventory.CostCalculator(d("0"), zero, d("8"), d("60"))
	assert.True(t, d("60").Equal(next), "obtenido %s", next)
}

func TestRoundCost_HalfEven(t *testing.T) {
	assert.Equal(t, "1.12", inventory.RoundCost(d("1.125"), 2).StringFixed(2))
	assert.Equal(t, "1.14", inventory.RoundCost(d("1.135"), 2).StringFixed(2))
	assert.Equal(t, "33.33", inventory.RoundCost(d("100").Div(d("3")), 2).StringFixed(2))
}
