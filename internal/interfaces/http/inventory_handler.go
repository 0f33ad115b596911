package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

const (
	defaultKardexLimit = 500
	maxKardexLimit     = 5000
)

// InventoryHandler maneja las peticiones HTTP del Kardex (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
	reports       *inventory.ReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	ledger *inventory.LedgerUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	reports *inventory.ReportUseCase,
) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment, reports: reports}
}

// PostMovement godoc
// @Summary      Registrar movimiento en el Kardex
// @Description  Recalcula el costo promedio ponderado y el saldo del producto y agrega el movimiento.
//
//	Si no se envía product_id, el producto se resuelve por new_product.code y se crea si no existe.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostMovementRequest  true  "product_id o new_product, kind, quantity (con signo), unit_cost (entradas)"
// @Success      201   {object}  dto.PostMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) PostMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.PostMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	kind, ok := entity.ParseMovementKind(strings.ToUpper(strings.TrimSpace(in.Kind)))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "kind inválido: INITIAL, PURCHASE, SALE, ADJUSTMENT o SHRINKAGE"})
	}

	input := inventory.PostMovementInput{
		ProductID: strings.TrimSpace(in.ProductID),
		Kind:      kind,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		SalePrice: in.SalePrice,
		Reference: in.Reference,
		Actor:     userID,
	}
	if in.NewProduct != nil {
		input.NewProduct = &inventory.NewProductSpec{
			Code:     in.NewProduct.Code,
			Name:     in.NewProduct.Name,
			Category: in.NewProduct.Category,
			Cost:     in.NewProduct.Cost,
			Price:    in.NewProduct.Price,
			MinStock: in.NewProduct.MinStock,
		}
	}

	res, err := h.ledger.PostMovement(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PostMovementResponse{
		Product:  *dto.ToProductResponse(&res.Product),
		Movement: dto.ToMovementResponse(&res.Movement),
		Created:  res.Created,
	})
}

// ReverseMovement godoc
// @Summary      Reversar un movimiento
// @Description  Agrega un ajuste con la cantidad opuesta enlazado al original. Un movimiento se reversa una sola vez.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "ID del movimiento"
// @Param        body  body  dto.ReverseMovementRequest  false  "reference"
// @Success      201   {object}  dto.PostMovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/reverse [post]
func (h *InventoryHandler) ReverseMovement(c *fiber.Ctx) error {
	var in dto.ReverseMovementRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	res, err := h.ledger.ReverseMovement(c.UserContext(), c.Params("id"), in.Reference, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PostMovementResponse{
		Product:  *dto.ToProductResponse(&res.Product),
		Movement: dto.ToMovementResponse(&res.Movement),
	})
}

// GetKardex godoc
// @Summary      Kardex de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        from   query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to     query  string  false  "Hasta (YYYY-MM-DD o RFC3339, inclusive)"
// @Param        order  query  string  false  "asc (default) | desc"
// @Param        limit  query  int     false  "Máximo de movimientos (default 500, máx 5000)"
// @Success      200  {object}  dto.KardexResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/kardex [get]
func (h *InventoryHandler) GetKardex(c *fiber.Ctx) error {
	q, err := parseLedgerQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	limit := c.QueryInt("limit", defaultKardexLimit)
	if limit <= 0 || limit > maxKardexLimit {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: fmt.Sprintf("limit debe estar entre 1 y %d", maxKardexLimit)})
	}

	productID := c.Params("id")
	seq, err := h.ledger.GetLedger(c.UserContext(), productID, q)
	if err != nil {
		return writeError(c, err)
	}
	movs, err := inventory.CollectLedger(seq, limit+1)
	if err != nil {
		return writeError(c, err)
	}
	truncated := len(movs) > limit
	if truncated {
		movs = movs[:limit]
	}

	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, dto.ToMovementResponse(m))
	}
	order := "asc"
	if q.Descending {
		order = "desc"
	}
	return c.JSON(dto.KardexResponse{
		ProductID: productID,
		Order:     order,
		Total:     len(items),
		Truncated: truncated,
		Items:     items,
	})
}

// DownloadKardexPDF godoc
// @Summary      Descargar Kardex en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/kardex/pdf [get]
func (h *InventoryHandler) DownloadKardexPDF(c *fiber.Ctx) error {
	q, err := parseLedgerQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	b, filename, err := h.reports.DownloadKardexPDF(c.UserContext(), c.Params("id"), q)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(b)
}

// ExportKardexXML godoc
// @Summary      Exportar Kardex en XML canónico de auditoría
// @Description  El header X-Kardex-Digest lleva el SHA-256 (hex) del documento devuelto.
// @Tags         inventory
// @Security     Bearer
// @Produce      application/xml
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/kardex/xml [get]
func (h *InventoryHandler) ExportKardexXML(c *fiber.Ctx) error {
	q, err := parseLedgerQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	b, digest, filename, err := h.reports.ExportKardexXML(c.UserContext(), c.Params("id"), q)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Set("X-Kardex-Digest", digest)
	return c.Send(b)
}

// VerifyProduct godoc
// @Summary      Verificar saldo y costo contra el Kardex
// @Description  Reconstruye el producto desde su historial y lo compara con el saldo y costo almacenados.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.VerificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/verify [get]
func (h *InventoryHandler) VerifyProduct(c *fiber.Ctx) error {
	v, err := h.ledger.VerifyProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.VerificationResponse{
		ProductID:         v.ProductID,
		Movements:         v.Movements,
		StoredStock:       v.StoredStock,
		StoredCost:        v.StoredCost,
		ReplayedStock:     v.ReplayedStock,
		ReplayedCost:      v.ReplayedCost,
		Consistent:        v.Consistent,
		FirstDivergentSeq: v.FirstDivergentSeq,
	})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos activos bajo su stock mínimo con la cantidad sugerida de pedido
//
//	(mínimo * 1.5 - saldo) valorizada al costo promedio.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Filtrar por categoría"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// parseLedgerQuery lee from, to y order. Una fecha sin hora en "to" cubre el día completo.
func parseLedgerQuery(c *fiber.Ctx) (inventory.LedgerQuery, error) {
	var q inventory.LedgerQuery
	if s := c.Query("from"); s != "" {
		t, _, err := parseDate(s)
		if err != nil {
			return q, fmt.Errorf("from: %w", domain.ErrInvalidInput)
		}
		q.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, dateOnly, err := parseDate(s)
		if err != nil {
			return q, fmt.Errorf("to: %w", domain.ErrInvalidInput)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		q.To = &t
	}
	switch strings.ToLower(c.Query("order", "asc")) {
	case "asc":
	case "desc":
		q.Descending = true
	default:
		return q, fmt.Errorf("order debe ser asc o desc: %w", domain.ErrInvalidInput)
	}
	return q, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("fecha inválida: %q", s)
}
