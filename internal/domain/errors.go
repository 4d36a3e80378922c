package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los errores tipados de stock envuelven estos centinelas, así el caller puede
// usar errors.Is sin perder el contexto estructurado.
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrInsufficientAvailableStock = errors.New("stock disponible insuficiente")
	ErrReservationConflict        = errors.New("conflicto con stock reservado")
	ErrOverRelease                = errors.New("liberación mayor que lo reservado")
	ErrConcurrencyConflict        = errors.New("conflicto de concurrencia; reintentar")
)

// InsufficientStockError: el ajuste dejaría la cantidad en negativo.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int64 // delta solicitado (negativo)
	OnHand      int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s bodega %s, delta %d sobre %d en mano",
		e.ProductID, e.WarehouseID, e.Requested, e.OnHand)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InsufficientAvailableStockError: reserva o traslado excede el stock disponible
// (no reservado).
type InsufficientAvailableStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int64
	Available   int64
}

func (e *InsufficientAvailableStockError) Error() string {
	return fmt.Sprintf("stock disponible insuficiente: producto %s bodega %s, solicitado %d, disponible %d",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

func (e *InsufficientAvailableStockError) Unwrap() error { return ErrInsufficientAvailableStock }

// ReservationConflictError: el ajuste dejaría la cantidad por debajo de lo reservado.
type ReservationConflictError struct {
	ProductID   string
	WarehouseID string
	Requested   int64 // delta solicitado
	OnHand      int64
	Reserved    int64
}

func (e *ReservationConflictError) Error() string {
	return fmt.Sprintf("conflicto de reserva: producto %s bodega %s, delta %d dejaría %d en mano con %d reservado",
		e.ProductID, e.WarehouseID, e.Requested, e.OnHand+e.Requested, e.Reserved)
}

func (e *ReservationConflictError) Unwrap() error { return ErrReservationConflict }

// OverReleaseError: se intenta liberar más de lo reservado. Se rechaza, nunca
// se recorta a cero: un recorte silencioso ocultaría bugs del caller.
type OverReleaseError struct {
	ProductID   string
	WarehouseID string
	Requested   int64
	Reserved    int64
}

func (e *OverReleaseError) Error() string {
	return fmt.Sprintf("liberación inválida: producto %s bodega %s, solicitado %d, reservado %d",
		e.ProductID, e.WarehouseID, e.Requested, e.Reserved)
}

func (e *OverReleaseError) Unwrap() error { return ErrOverRelease }

// NotFoundError: la operación requería un registro de stock existente.
type NotFoundError struct {
	ProductID   string
	WarehouseID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sin registro de stock: producto %s bodega %s", e.ProductID, e.WarehouseID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConcurrencyConflictError: la transacción subyacente fue abortada por
// contención (deadlock o fallo de serialización). La operación es segura de
// reintentar tal cual: se revalida contra estado fresco.
type ConcurrencyConflictError struct {
	Op  string
	Err error
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("conflicto de concurrencia en %s: %v", e.Op, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() error { return ErrConcurrencyConflict }
