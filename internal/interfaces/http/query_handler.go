package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
)

// QueryHandler maneja las lecturas: niveles, agregados, historial y
// verificación del ledger. Nunca escribe.
type QueryHandler struct {
	queries *inventory.StockQueries
}

// NewQueryHandler construye el handler.
func NewQueryHandler(queries *inventory.StockQueries) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// GetLevel godoc
// @Summary      Nivel de stock de un par (producto, bodega)
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        product_id    path  string  true  "Producto"
// @Param        warehouse_id  path  string  true  "Bodega"
// @Success      200  {object}  dto.StockLevelDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/{warehouse_id} [get]
func (h *QueryHandler) GetLevel(c *fiber.Ctx) error {
	level, err := h.queries.Get(c.Context(), c.Params("product_id"), c.Params("warehouse_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(level)
}

// GetTotals godoc
// @Summary      Totales de un producto sobre todas las bodegas
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "Producto"
// @Success      200  {object}  map[string]int64
// @Router       /api/stock/{product_id}/totals [get]
func (h *QueryHandler) GetTotals(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	total, err := h.queries.TotalQuantity(c.Context(), productID)
	if err != nil {
		return stockError(c, err)
	}
	available, err := h.queries.TotalAvailable(c.Context(), productID)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"total_quantity": total, "total_available": available})
}

// ListLowStock godoc
// @Summary      Productos en o bajo su umbral de stock bajo
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega; vacío = todas"
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/stock/low [get]
func (h *QueryHandler) ListLowStock(c *fiber.Ctx) error {
	items, err := h.queries.ListLowStock(c.Context(), c.Query("warehouse_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// GetValuation godoc
// @Summary      Valorización del inventario (cantidad x costo unitario)
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega; vacío = global"
// @Success      200  {object}  dto.ValuationDTO
// @Router       /api/stock/valuation [get]
func (h *QueryHandler) GetValuation(c *fiber.Ctx) error {
	valuation, err := h.queries.Valuation(c.Context(), c.Query("warehouse_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(valuation)
}

// GetHistory godoc
// @Summary      Historial cronológico de movimientos de un producto
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true   "Producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Success      200  {array}  dto.StockTransactionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id}/history [get]
func (h *QueryHandler) GetHistory(c *fiber.Ctx) error {
	from, to, ok := parseDateRange(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "from/to deben ser RFC3339"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	txs, err := h.queries.History(c.Context(), c.Params("product_id"), c.Query("warehouse_id"), from, to, page)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(txs), "transactions": txs})
}

// GetRecent godoc
// @Summary      Últimos movimientos globales (feed de actividad)
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        count  query  int  false  "Cantidad de entradas (default 20)"
// @Success      200  {array}  dto.StockTransactionDTO
// @Router       /api/stock/recent [get]
func (h *QueryHandler) GetRecent(c *fiber.Ctx) error {
	count, _ := strconv.Atoi(c.Query("count", "20"))
	txs, err := h.queries.Recent(c.Context(), count)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(txs), "transactions": txs})
}

// GetMovementSummary godoc
// @Summary      Conteo de movimientos por clase en un rango
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "RFC3339"
// @Param        to    query  string  true  "RFC3339"
// @Success      200  {object}  dto.MovementSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/summary [get]
func (h *QueryHandler) GetMovementSummary(c *fiber.Ctx) error {
	from, to, ok := parseDateRange(c)
	if !ok || from == nil || to == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "from y to son obligatorios (RFC3339)"})
	}
	summary, err := h.queries.MovementSummary(c.Context(), *from, *to)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(summary)
}

// ListWarehouseStock godoc
// @Summary      Niveles de stock de una bodega (paginado)
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "Bodega"
// @Param        limit         query  int     false  "Tamaño de página (default 20, máximo 100)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.StockLevelDTO
// @Router       /api/warehouses/{warehouse_id}/stock [get]
func (h *QueryHandler) ListWarehouseStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	levels, err := h.queries.ListByWarehouse(c.Context(), c.Params("warehouse_id"), page)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(levels), "items": levels})
}

// GetCapacityUtilization godoc
// @Summary      Utilización de capacidad de una bodega
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "Bodega"
// @Success      200  {object}  dto.CapacityUtilizationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{warehouse_id}/utilization [get]
func (h *QueryHandler) GetCapacityUtilization(c *fiber.Ctx) error {
	utilization, err := h.queries.CapacityUtilization(c.Context(), c.Params("warehouse_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(utilization)
}

// VerifyLedger godoc
// @Summary      Verificación de consistencia ledger vs historial
// @Tags         queries
// @Security     Bearer
// @Produce      json
// @Param        product_id    path  string  true  "Producto"
// @Param        warehouse_id  path  string  true  "Bodega"
// @Success      200  {object}  dto.LedgerVerificationDTO
// @Router       /api/stock/{product_id}/{warehouse_id}/verify [get]
func (h *QueryHandler) VerifyLedger(c *fiber.Ctx) error {
	verification, err := h.queries.VerifyLedger(c.Context(), c.Params("product_id"), c.Params("warehouse_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(verification)
}

// parseDateRange lee from/to opcionales en RFC3339. ok=false si alguno viene malformado.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, ok bool) {
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, false
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, false
		}
		to = &t
	}
	return from, to, true
}
