package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"999.5", "999,50"},
		{"1100", "1.100,00"},
		{"1234567.456", "1.234.567,46"},
		{"-5500", "-5.500,00"},
		{"-0.001", "0,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDecimal(decimal.RequireFromString(tt.in), 2), tt.in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "25", formatMoney("25"))
	assert.Equal(t, "25.000", formatMoney("25000"))
	assert.Equal(t, "1.000.000", formatMoney("1000000"))
}

func TestGenerateKardexPDF(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	orig := "m1"
	report := &inventory.KardexReport{
		Product: entity.Product{
			ID: "p1", Code: "7701234567890", Name: "Arroz 500g", Category: "granos",
			Stock: decimal.NewFromInt(15), Cost: decimal.NewFromInt(1000), MinStock: decimal.NewFromInt(5),
			Active: true, Version: 2,
		},
		Movements: []*entity.InventoryMovement{
			{ID: "m1", Sequence: 1, Kind: entity.MovementInitial, Quantity: decimal.NewFromInt(20), UnitCost: decimal.NewFromInt(1000),
				TotalCost: decimal.NewFromInt(20000), ResultingBalance: decimal.NewFromInt(20), ResultingCost: decimal.NewFromInt(1000), Date: now},
			{ID: "m2", Sequence: 2, Kind: entity.MovementAdjustment, Quantity: decimal.NewFromInt(-5), UnitCost: decimal.NewFromInt(1000),
				TotalCost: decimal.NewFromInt(-5000), ResultingBalance: decimal.NewFromInt(15), ResultingCost: decimal.NewFromInt(1000),
				ReversesID: &orig, Reference: "REVERSO", Date: now},
		},
		GeneratedAt: now,
		Truncated:   true,
	}

	b, err := NewMarotoPDFGenerator("Tienda La 14").GenerateKardexPDF(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "debe ser un PDF")
}
