// Package xmlexport genera el XML de auditoría del Kardex en forma canónica (C14N) con su digest SHA-256.
// El digest permite a un auditor comprobar que el archivo recibido no fue alterado.
package xmlexport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// Namespace del documento de Kardex.
const Namespace = "urn:kardex:ledger:1.0"

var _ inventory.KardexXMLExporter = (*Exporter)(nil)

// Exporter implementa inventory.KardexXMLExporter.
type Exporter struct{}

// NewExporter construye el exportador.
func NewExporter() *Exporter { return &Exporter{} }

// ExportKardexXML construye el documento, lo canonicaliza y devuelve los bytes canónicos y su digest (hex).
func (e *Exporter) ExportKardexXML(_ context.Context, r *inventory.KardexReport) ([]byte, string, error) {
	raw, err := buildDocument(r).WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xml: serializar: %w", err)
	}
	canonical, err := canonicalizeXML(raw)
	if err != nil {
		return nil, "", fmt.Errorf("xml: canonicalizar: %w", err)
	}
	return canonical, digest(canonical), nil
}

// Verify recalcula el digest de data (re-canonicalizando) y lo compara con expected.
func Verify(data []byte, expected string) (bool, error) {
	canonical, err := canonicalizeXML(data)
	if err != nil {
		return false, fmt.Errorf("xml: canonicalizar: %w", err)
	}
	return digest(canonical) == expected, nil
}

func buildDocument(r *inventory.KardexReport) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Kardex")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("generatedAt", r.GeneratedAt.UTC().Format(time.RFC3339))
	if r.From != nil {
		root.CreateAttr("from", r.From.UTC().Format(time.RFC3339))
	}
	if r.To != nil {
		root.CreateAttr("to", r.To.UTC().Format(time.RFC3339))
	}

	p := root.CreateElement("Product")
	p.CreateAttr("id", r.Product.ID)
	p.CreateAttr("code", r.Product.Code)
	p.CreateAttr("version", strconv.FormatInt(r.Product.Version, 10))
	p.CreateElement("Name").SetText(r.Product.Name)
	if r.Product.Category != "" {
		p.CreateElement("Category").SetText(r.Product.Category)
	}
	p.CreateElement("Stock").SetText(r.Product.Stock.String())
	p.CreateElement("AverageCost").SetText(r.Product.Cost.String())
	p.CreateElement("InventoryValue").SetText(r.Product.InventoryValue().String())

	movs := root.CreateElement("Movements")
	movs.CreateAttr("count", strconv.Itoa(len(r.Movements)))
	movs.CreateAttr("truncated", strconv.FormatBool(r.Truncated))
	for _, m := range r.Movements {
		addMovement(movs, m)
	}
	return doc
}

func addMovement(parent *etree.Element, m *entity.InventoryMovement) {
	el := parent.CreateElement("Movement")
	el.CreateAttr("sequence", strconv.FormatInt(m.Sequence, 10))
	el.CreateAttr("id", m.ID)
	el.CreateAttr("kind", string(m.Kind))
	if m.ReversesID != nil {
		el.CreateAttr("reverses", *m.ReversesID)
	}
	el.CreateElement("Date").SetText(m.Date.UTC().Format(time.RFC3339Nano))
	el.CreateElement("Quantity").SetText(m.Quantity.String())
	el.CreateElement("UnitCost").SetText(m.UnitCost.String())
	el.CreateElement("TotalCost").SetText(m.TotalCost.String())
	el.CreateElement("ResultingBalance").SetText(m.ResultingBalance.String())
	el.CreateElement("ResultingCost").SetText(m.ResultingCost.String())
	if m.Reference != "" {
		el.CreateElement("Reference").SetText(m.Reference)
	}
	if m.CreatedBy != "" {
		el.CreateElement("CreatedBy").SetText(m.CreatedBy)
	}
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func digest(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
