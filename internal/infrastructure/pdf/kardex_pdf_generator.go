// Package pdf genera la representación impresa del Kardex de un producto.
//
// Layout de la página A4 (horizontal):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + Código        │  Rango + Fecha de corte  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Saldo / Costo promedio / Valor / Código de barras │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Fecha | Tipo | Ref | Cant | C.Unit | Total | ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: cantidad de movimientos / aviso de truncado        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ inventory.KardexPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.KardexPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador. company aparece como autor del documento.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateKardexPDF(_ context.Context, report *inventory.KardexReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+report.Product.Code, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(&report.Product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(movementRows(report.Movements)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(report)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto (izq) y rango + fecha de corte (der).
func headerRow(r *inventory.KardexReport) core.Row {
	rango := "Todo el historial"
	if r.From != nil || r.To != nil {
		desde, hasta := "inicio", "hoy"
		if r.From != nil {
			desde = r.From.Format("02/01/2006")
		}
		if r.To != nil {
			hasta = r.To.Format("02/01/2006")
		}
		rango = desde + " a " + hasta
	}

	return row.New(18).Add(
		col.New(8).Add(
			text.New(r.Product.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Código: %s   |   Categoría: %s", r.Product.Code, nonEmpty(r.Product.Category, "—")), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("KARDEX - PROMEDIO PONDERADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(rango, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New("Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// summaryRow: saldo y valorización vigentes + código de barras del producto.
func summaryRow(p *entity.Product) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Top: top, Color: colorGray})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 10, Top: top})
	}
	estado := "Activo"
	if !p.Active {
		estado = "Inactivo"
	}
	return row.New(20).Add(
		col.New(3).Add(
			label("Saldo actual", 1), value(formatDecimal(p.Stock, 2), 6),
			label("Stock mínimo", 12), value(formatDecimal(p.MinStock, 2), 16),
		),
		col.New(3).Add(
			label("Costo promedio", 1), value("$"+formatDecimal(p.Cost, 2), 6),
			label("Valor del inventario", 12), value("$"+formatDecimal(p.InventoryValue(), 2), 16),
		),
		col.New(2).Add(
			label("Estado", 1), value(estado, 6),
			label("Movimientos", 12), value(fmt.Sprintf("%d", p.Version), 16),
		),
		col.New(4).Add(code.NewBar(p.Code, props.Barcode{Percent: 90, Center: true})),
	)
}

var columns = []struct {
	label string
	size  int
	align align.Type
}{
	{"#", 1, align.Center},
	{"Fecha", 1, align.Left},
	{"Tipo", 1, align.Left},
	{"Referencia", 2, align.Left},
	{"Cantidad", 1, align.Right},
	{"Costo unit.", 1, align.Right},
	{"Costo total", 2, align.Right},
	{"Saldo", 1, align.Right},
	{"Costo prom.", 2, align.Right},
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...)
}

// movementRows: una fila por movimiento. Los reversos se marcan en rojo.
func movementRows(movs []*entity.InventoryMovement) []core.Row {
	result := make([]core.Row, 0, len(movs))
	for _, mv := range movs {
		ref := mv.Reference
		var color *props.Color
		if mv.IsReversal() {
			color = colorRed
		}
		values := []string{
			fmt.Sprintf("%d", mv.Sequence),
			mv.Date.Format("02/01/2006"),
			kindLabel(mv.Kind),
			ref,
			formatDecimal(mv.Quantity, 2),
			"$" + formatDecimal(mv.UnitCost, 2),
			"$" + formatDecimal(mv.TotalCost, 2),
			formatDecimal(mv.ResultingBalance, 2),
			"$" + formatDecimal(mv.ResultingCost, 2),
		}
		cols := make([]core.Col, 0, len(columns))
		for i, c := range columns {
			cols = append(cols, col.New(c.size).Add(text.New(values[i], props.Text{
				Size: 7.5, Align: c.align, Top: 1, Left: 1, Right: 1, Color: color,
			})))
		}
		result = append(result, row.New(6).Add(cols...))
	}
	return result
}

// footerRows: total de movimientos y aviso si el reporte se truncó.
func footerRows(r *inventory.KardexReport) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%d movimientos en el reporte", len(r.Movements)), props.Text{
				Size: 7, Color: colorGray, Top: 1,
			}),
		)),
	}
	if r.Truncated {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Reporte truncado: use un rango de fechas más corto o la exportación XML.", props.Text{
				Style: fontstyle.Bold, Size: 7, Color: colorRed, Top: 1,
			}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func kindLabel(k entity.MovementKind) string {
	switch k {
	case entity.MovementInitial:
		return "Inicial"
	case entity.MovementPurchase:
		return "Compra"
	case entity.MovementSale:
		return "Venta"
	case entity.MovementAdjustment:
		return "Ajuste"
	case entity.MovementShrinkage:
		return "Merma"
	default:
		return string(k)
	}
}

// formatDecimal formatea con punto de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50", -5500 → "-5.500,00"
func formatDecimal(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")
	out := formatMoney(intPart)
	if frac != "" {
		out += "," + frac
	}
	if d.Round(places).IsNegative() {
		out = "-" + out
	}
	return out
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
