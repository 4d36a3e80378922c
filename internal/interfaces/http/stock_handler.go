package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/domain"
)

// StockHandler maneja las peticiones HTTP de movimientos de stock (protegido).
// Es un caller delgado: toda la validación de invariantes vive en el motor.
type StockHandler struct {
	engine *inventory.MovementEngine
}

// NewStockHandler construye el handler.
func NewStockHandler(engine *inventory.MovementEngine) *StockHandler {
	return &StockHandler{engine: engine}
}

// Adjust godoc
// @Summary      Ajustar stock (entrada, salida o corrección)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, warehouse_id, delta firmado; kind=ADJUSTMENT para correcciones"
// @Success      200   {object}  map[string]int64
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.engine.AdjustStock(c.Context(), inventory.AdjustStockInput{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Delta:           in.Delta,
		Kind:            in.Kind,
		UnitCost:        in.UnitCost,
		Reason:          in.Reason,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
		ActorID:         actorID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"new_quantity": result.NewQuantity})
}

// Reserve godoc
// @Summary      Reservar stock contra demanda pendiente
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveStockRequest  true  "product_id, warehouse_id, quantity > 0"
// @Success      200   {object}  map[string]int64
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReserveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.engine.ReserveStock(c.Context(), inventory.ReserveStockInput{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Quantity:        in.Quantity,
		ReferenceNumber: in.ReferenceNumber,
		ActorID:         actorID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"available_quantity": result.AvailableQuantity})
}

// Release godoc
// @Summary      Liberar stock reservado
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReleaseStockRequest  true  "product_id, warehouse_id, quantity > 0"
// @Success      200   {object}  map[string]int64
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReleaseStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.engine.ReleaseReservedStock(c.Context(), inventory.ReleaseStockInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		ActorID:     actorID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"available_quantity": result.AvailableQuantity})
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas (atómico)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "product_id, source/destination warehouse, quantity > 0"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.engine.TransferStock(c.Context(), inventory.TransferStockInput{
		ProductID:              in.ProductID,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Quantity:               in.Quantity,
		Reason:                 in.Reason,
		ReferenceNumber:        in.ReferenceNumber,
		ActorID:                actorID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{
		"source_quantity":      result.SourceQuantity,
		"destination_quantity": result.DestinationQuantity,
		"reference_number":     result.ReferenceNumber,
	})
}

// stockError traduce errores de dominio a respuestas HTTP. Los errores tipados
// conservan su mensaje con contexto (producto, bodega, cantidades).
func stockError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientAvailableStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_AVAILABLE_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrReservationConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RESERVATION_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrOverRelease):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_RELEASE", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		// Seguro de reintentar tal cual; el reintento es decisión del caller
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintentar"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
