package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow una línea del export del sistema anterior.
type catalogRow struct {
	Line     int
	Code     string
	Name     string
	Category string
	Stock    decimal.Decimal
	Cost     decimal.Decimal
	Price    decimal.Decimal
	MinStock decimal.Decimal
}

// columnas esperadas en el encabezado (en cualquier orden)
var requiredColumns = []string{"codigo", "nombre", "existencia", "costo"}

// readCatalog lee el CSV separado por ';'. latin1 decodifica ISO-8859-1 antes de parsear.
// Devuelve las filas válidas y un error por cada fila descartada.
func readCatalog(r io.Reader, latin1 bool) ([]catalogRow, []error, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, nil, fmt.Errorf("columna requerida ausente: %s", c)
		}
	}

	var (
		rows    []catalogRow
		skipped []error
		line    = 1
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			skipped = append(skipped, fmt.Errorf("línea %d: %w", line, err))
			continue
		}
		row, err := parseRow(rec, idx)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("línea %d: %w", line, err))
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseRow(rec []string, idx map[string]int) (catalogRow, error) {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	row := catalogRow{
		Code:     field("codigo"),
		Name:     field("nombre"),
		Category: field("categoria"),
	}
	if row.Code == "" || row.Name == "" {
		return row, errors.New("codigo y nombre son requeridos")
	}

	var err error
	if row.Stock, err = parseAmount(field("existencia")); err != nil {
		return row, fmt.Errorf("existencia: %w", err)
	}
	if row.Cost, err = parseAmount(field("costo")); err != nil {
		return row, fmt.Errorf("costo: %w", err)
	}
	if row.Price, err = parseAmount(field("precio")); err != nil {
		return row, fmt.Errorf("precio: %w", err)
	}
	if row.MinStock, err = parseAmount(field("minimo")); err != nil {
		return row, fmt.Errorf("minimo: %w", err)
	}
	return row, nil
}

// parseAmount lee importes del export: coma decimal con punto de miles ("1.234,50",
// "$ 2.000,0"), varios grupos de miles sin decimales ("1.234.567") o punto decimal
// sin miles ("1234.5", "0.125"). Un único grupo como "1.234" es ambiguo y se rechaza.
// Vacío es cero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, nil
	}
	switch dots := strings.Count(s, "."); {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case dots > 1:
		if !thousandsGrouped(s) {
			return decimal.Zero, fmt.Errorf("importe %q mal formado", s)
		}
		s = strings.ReplaceAll(s, ".", "")
	case dots == 1 && thousandsGrouped(s):
		return decimal.Zero, fmt.Errorf("importe %q ambiguo: use %s,00 o sin separador de miles", s, s)
	}
	return decimal.NewFromString(s)
}

// thousandsGrouped indica si s tiene la forma 1.234 o 12.345.678 (punto como separador de miles).
func thousandsGrouped(s string) bool {
	parts := strings.Split(strings.TrimPrefix(s, "-"), ".")
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 || parts[0][0] == '0' {
		return false
	}
	for i, p := range parts {
		if i > 0 && len(p) != 3 {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n", " ", "_").Replace(h)
}
