package xmlexport

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

func sampleReport() *inventory.KardexReport {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	orig := "m1"
	return &inventory.KardexReport{
		Product: entity.Product{
			ID: "p1", Code: "ARZ-1", Name: "Arroz & Cía <500g>", Category: "granos",
			Stock: decimal.NewFromInt(25), Cost: decimal.NewFromInt(1100), Version: 2,
		},
		Movements: []*entity.InventoryMovement{
			{ID: "m1", Sequence: 1, Kind: entity.MovementPurchase, Quantity: decimal.NewFromInt(30), UnitCost: decimal.NewFromInt(1100),
				TotalCost: decimal.NewFromInt(33000), ResultingBalance: decimal.NewFromInt(30), ResultingCost: decimal.NewFromInt(1100),
				Reference: "FC-1", CreatedBy: "u1", Date: now},
			{ID: "m2", Sequence: 2, Kind: entity.MovementAdjustment, Quantity: decimal.NewFromInt(-5), UnitCost: decimal.NewFromInt(1100),
				TotalCost: decimal.NewFromInt(-5500), ResultingBalance: decimal.NewFromInt(25), ResultingCost: decimal.NewFromInt(1100),
				ReversesID: &orig, Date: now},
		},
		GeneratedAt: now,
	}
}

func TestExportKardexXML(t *testing.T) {
	b, digest, err := NewExporter().ExportKardexXML(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Len(t, digest, 64)
	assert.False(t, bytes.HasPrefix(b, []byte("<?xml")), "la forma canónica no lleva declaración")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(b))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Kardex", root.Tag)
	assert.Equal(t, "Arroz & Cía <500g>", root.FindElement("Product/Name").Text())

	movs := root.FindElements("Movements/Movement")
	require.Len(t, movs, 2)
	assert.Equal(t, "1", movs[0].SelectAttrValue("sequence", ""))
	assert.Equal(t, "m1", movs[1].SelectAttrValue("reverses", ""))
	assert.Equal(t, "-5", movs[1].FindElement("Quantity").Text())
	assert.Nil(t, movs[1].FindElement("Reference"))
}

func TestExportKardexXML_Determinista(t *testing.T) {
	b1, d1, err := NewExporter().ExportKardexXML(context.Background(), sampleReport())
	require.NoError(t, err)
	b2, d2, err := NewExporter().ExportKardexXML(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
	assert.Equal(t, d1, d2)
}

func TestVerify(t *testing.T) {
	b, digest, err := NewExporter().ExportKardexXML(context.Background(), sampleReport())
	require.NoError(t, err)

	ok, err := Verify(b, digest)
	require.NoError(t, err)
	assert.True(t, ok)

	tampered := bytes.Replace(b, []byte("<Stock>25</Stock>"), []byte("<Stock>26</Stock>"), 1)
	require.NotEqual(t, b, tampered)
	ok, err = Verify(tampered, digest)
	require.NoError(t, err)
	assert.False(t, ok)
}
