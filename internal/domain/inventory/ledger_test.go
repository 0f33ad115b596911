package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/inventory"
)

var scale = inventory.DefaultScale()

func cost(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestApply_EntradaRecalculaCosto(t *testing.T) {
	b := inventory.Balance{Stock: d("20"), Cost: d("1000")}
	out, err := inventory.Apply(b, inventory.Posting{
		Kind: entity.MovementPurchase, Quantity: d("10"), UnitCost: cost("1300"),
	}, scale)
	require.NoError(t, err)
	assert.True(t, d("30").Equal(out.Stock))
	assert.True(t, d("1100").Equal(out.Cost))
	assert.True(t, d("1300").Equal(out.UnitCost))
}

func TestApply_SalidasNoCambianCosto(t *testing.T) {
	b := inventory.Balance{Stock: d("25"), Cost: d("1100")}
	for _, kind := range []entity.MovementKind{entity.MovementSale, entity.MovementShrinkage, entity.MovementAdjustment} {
		out, err := inventory.Apply(b, inventory.Posting{Kind: kind, Quantity: d("-5"), UnitCost: cost("9999")}, scale)
		require.NoError(t, err, kind)
		assert.True(t, b.Cost.Equal(out.Cost), "%s no debe cambiar el costo", kind)
		assert.True(t, b.Cost.Equal(out.UnitCost), "%s registra el costo promedio vigente", kind)
		assert.True(t, d("20").Equal(out.Stock))
	}
}

func TestApply_Validaciones(t *testing.T) {
	b := inventory.Balance{Stock: d("3"), Cost: d("10")}
	tests := []struct {
		name    string
		posting inventory.Posting
		want    error
	}{
		{"costo negativo en compra", inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("1"), UnitCost: cost("-1")}, domain.ErrNegativeUnitCost},
		{"costo negativo en ajuste positivo", inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("1"), UnitCost: cost("-0.01")}, domain.ErrNegativeUnitCost},
		{"compra sin costo", inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("1")}, domain.ErrInvalidInput},
		{"venta positiva", inventory.Posting{Kind: entity.MovementSale, Quantity: d("1")}, domain.ErrInvalidInput},
		{"compra negativa", inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("-1"), UnitCost: cost("1")}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("0")}, domain.ErrInvalidInput},
		{"tipo desconocido", inventory.Posting{Kind: "TRANSFER", Quantity: d("1")}, domain.ErrInvalidInput},
		{"sobreventa", inventory.Posting{Kind: entity.MovementSale, Quantity: d("-4")}, domain.ErrInsufficientStock},
		{"merma mayor al saldo", inventory.Posting{Kind: entity.MovementShrinkage, Quantity: d("-3.5")}, domain.ErrInsufficientStock},
		{"cantidad con más de 4 decimales", inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("1.00004"), UnitCost: cost("1000")}, domain.ErrInvalidInput},
		{"cantidad diminuta", inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("0.00001")}, domain.ErrInvalidInput},
		{"costo unitario con más de 8 decimales", inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("1"), UnitCost: cost("0.000000001")}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inventory.Apply(b, tt.posting, scale)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApply_AjusteNegativoPuedeDejarSaldoNegativo(t *testing.T) {
	b := inventory.Balance{Stock: d("3"), Cost: d("10")}
	out, err := inventory.Apply(b, inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("-5")}, scale)
	require.NoError(t, err)
	assert.True(t, d("-2").Equal(out.Stock))
	assert.True(t, d("10").Equal(out.Cost))
}

func TestApply_AjustePositivoSinCostoEsNeutral(t *testing.T) {
	b := inventory.Balance{Stock: d("4"), Cost: d("12.50")}
	out, err := inventory.Apply(b, inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("6")}, scale)
	require.NoError(t, err)
	assert.True(t, d("12.50").Equal(out.Cost))
	assert.True(t, d("12.50").Equal(out.UnitCost))
}

func TestApply_VentaExactaAlSaldo(t *testing.T) {
	b := inventory.Balance{Stock: d("5"), Cost: d("100")}
	out, err := inventory.Apply(b, inventory.Posting{Kind: entity.MovementSale, Quantity: d("-5")}, scale)
	require.NoError(t, err)
	assert.True(t, out.Stock.IsZero())
	// el costo se conserva en salidas; se reinicia con la siguiente entrada
	next, err := inventory.Apply(out.Balance, inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("8"), UnitCost: cost("60")}, scale)
	require.NoError(t, err)
	assert.True(t, d("60").Equal(next.Cost))
}

func TestReplay_ReproduceApply(t *testing.T) {
	postings := []inventory.Posting{
		{Kind: entity.MovementInitial, Quantity: d("7"), UnitCost: cost("10.01")},
		{Kind: entity.MovementPurchase, Quantity: d("3"), UnitCost: cost("11.37")},
		{Kind: entity.MovementSale, Quantity: d("-4")},
		{Kind: entity.MovementAdjustment, Quantity: d("2")},
		{Kind: entity.MovementPurchase, Quantity: d("9"), UnitCost: cost("9.99")},
		{Kind: entity.MovementShrinkage, Quantity: d("-1")},
	}
	var live inventory.Balance
	var movs []*entity.InventoryMovement
	for _, p := range postings {
		out, err := inventory.Apply(live, p, scale)
		require.NoError(t, err)
		live = out.Balance
		movs = append(movs, &entity.InventoryMovement{Kind: p.Kind, Quantity: p.Quantity, UnitCost: out.UnitCost})
	}

	var replayed inventory.Balance
	for _, m := range movs {
		replayed = inventory.Replay(replayed, m, 2)
	}
	assert.True(t, live.Stock.Equal(replayed.Stock))
	assert.True(t, live.Cost.Equal(replayed.Cost), "live %s replay %s", live.Cost, replayed.Cost)
}

func TestApply_EscalaDeCantidad(t *testing.T) {
	b := inventory.Balance{Stock: d("1"), Cost: d("100")}

	// ceros a la derecha no cuentan como decimales
	out, err := inventory.Apply(b, inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("1.50000"), UnitCost: cost("1000")}, scale)
	require.NoError(t, err)
	assert.True(t, d("2.5").Equal(out.Stock))

	_, err = inventory.Apply(b, inventory.Posting{Kind: entity.MovementSale, Quantity: d("-0.5")}, inventory.Scale{Cost: 2, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El historial persistido (cantidad a 4 decimales, costo unitario a 8) reproduce el costo calculado al registrar.
func TestReplay_HistorialPersistidoReproduceCosto(t *testing.T) {
	b := inventory.Balance{Stock: d("1"), Cost: d("100")}
	p := inventory.Posting{Kind: entity.MovementPurchase, Quantity: d("1.0001"), UnitCost: cost("1000.123456789")}
	_, err := inventory.Apply(b, p, scale)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	p.UnitCost = cost("1000.12345678")
	out, err := inventory.Apply(b, p, scale)
	require.NoError(t, err)

	stored := &entity.InventoryMovement{
		Kind:     p.Kind,
		Quantity: p.Quantity.Round(inventory.DefaultQuantityScale),
		UnitCost: out.UnitCost.Round(inventory.UnitCostScale),
	}
	replayed := inventory.Replay(b, stored, scale.Cost)
	assert.True(t, out.Cost.Equal(replayed.Cost), "registrado %s, replay %s", out.Cost, replayed.Cost)
	assert.True(t, out.Stock.Equal(replayed.Stock))
}

func TestApply_AjustePositivoSobreSaldoNegativo(t *testing.T) {
	b := inventory.Balance{Stock: d("-3"), Cost: d("50")}

	// sigue negativo: sin base de costo
	out, err := inventory.Apply(b, inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("2"), UnitCost: cost("70")}, scale)
	require.NoError(t, err)
	assert.True(t, d("-1").Equal(out.Stock))
	assert.True(t, out.Cost.IsZero(), "obtenido %s", out.Cost)

	// llega exactamente a cero
	out, err = inventory.Apply(b, inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("3"), UnitCost: cost("70")}, scale)
	require.NoError(t, err)
	assert.True(t, out.Stock.IsZero())
	assert.True(t, out.Cost.IsZero())

	// (-3*50 + 5*70) / 2 = 100
	out, err = inventory.Apply(b, inventory.Posting{Kind: entity.MovementAdjustment, Quantity: d("5"), UnitCost: cost("70")}, scale)
	require.NoError(t, err)
	assert.True(t, d("2").Equal(out.Stock))
	assert.True(t, d("100").Equal(out.Cost), "obtenido %s", out.Cost)
}
