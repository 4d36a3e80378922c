package entity

import (
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain"
)

// StockRecord es el registro del ledger para un par (producto, bodega).
// Invariantes: Quantity >= 0 y 0 <= ReservedQuantity <= Quantity.
// Solo el motor de movimientos muta Quantity y ReservedQuantity; se crea de
// forma perezosa con la primera entrada de stock y nunca se borra (se deja en
// cero) para no romper el replay del historial.
type StockRecord struct {
	ProductID        string
	WarehouseID      string
	Quantity         int64 // unidades en mano
	ReservedQuantity int64 // unidades apartadas contra demanda pendiente
	LastStockCountAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewStockRecord crea un registro vacío para el par (producto, bodega).
func NewStockRecord(productID, warehouseID string, now time.Time) *StockRecord {
	return &StockRecord{
		ProductID:   productID,
		WarehouseID: warehouseID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Available devuelve la cantidad disponible (en mano menos reservado).
// Es la única cantidad que se puede prometer a demanda nueva; nunca se almacena.
func (s *StockRecord) Available() int64 {
	return s.Quantity - s.ReservedQuantity
}

// ApplyDelta valida y aplica un delta firmado sobre la cantidad en mano.
// Rechaza deltas que dejen la cantidad negativa o por debajo de lo reservado.
func (s *StockRecord) ApplyDelta(delta int64, now time.Time) error {
	newQty := s.Quantity + delta
	if newQty < 0 {
		return &domain.InsufficientStockError{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			Requested:   delta,
			OnHand:      s.Quantity,
		}
	}
	if newQty < s.ReservedQuantity {
		return &domain.ReservationConflictError{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			Requested:   delta,
			OnHand:      s.Quantity,
			Reserved:    s.ReservedQuantity,
		}
	}
	s.Quantity = newQty
	s.UpdatedAt = now
	return nil
}

// Reserve aparta unidades contra demanda pendiente sin mover la cantidad en mano.
func (s *StockRecord) Reserve(qty int64, now time.Time) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	if s.Available() < qty {
		return &domain.InsufficientAvailableStockError{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			Requested:   qty,
			Available:   s.Available(),
		}
	}
	s.ReservedQuantity += qty
	s.UpdatedAt = now
	return nil
}

// Release libera unidades reservadas. Liberar más de lo reservado se rechaza.
func (s *StockRecord) Release(qty int64, now time.Time) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	if qty > s.ReservedQuantity {
		return &domain.OverReleaseError{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			Requested:   qty,
			Reserved:    s.ReservedQuantity,
		}
	}
	s.ReservedQuantity -= qty
	s.UpdatedAt = now
	return nil
}
