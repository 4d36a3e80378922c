package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjust.
// kind vacío clasifica por signo del delta; "ADJUSTMENT" marca una corrección.
type AdjustStockRequest struct {
	ProductID       string           `json:"product_id"`
	WarehouseID     string           `json:"warehouse_id"`
	Delta           int64            `json:"delta"`
	Kind            string           `json:"kind,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// ReserveStockRequest body para POST /api/stock/reserve.
type ReserveStockRequest struct {
	ProductID       string `json:"product_id"`
	WarehouseID     string `json:"warehouse_id"`
	Quantity        int64  `json:"quantity"`
	ReferenceNumber string `json:"reference_number,omitempty"`
}

// ReleaseStockRequest body para POST /api/stock/release.
type ReleaseStockRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
}

// TransferStockRequest body para POST /api/stock/transfer.
type TransferStockRequest struct {
	ProductID              string `json:"product_id"`
	SourceWarehouseID      string `json:"source_warehouse_id"`
	DestinationWarehouseID string `json:"destination_warehouse_id"`
	Quantity               int64  `json:"quantity"`
	Reason                 string `json:"reason,omitempty"`
	ReferenceNumber        string `json:"reference_number,omitempty"`
}

// StockLevelDTO nivel de stock de un par (producto, bodega).
type StockLevelDTO struct {
	ProductID         string     `json:"product_id"`
	WarehouseID       string     `json:"warehouse_id"`
	Quantity          int64      `json:"quantity"`
	ReservedQuantity  int64      `json:"reserved_quantity"`
	AvailableQuantity int64      `json:"available_quantity"`
	LastStockCountAt  *time.Time `json:"last_stock_count_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// StockTransactionDTO entrada del log de auditoría.
type StockTransactionDTO struct {
	ID               int64            `json:"id"`
	ProductID        string           `json:"product_id"`
	WarehouseID      string           `json:"warehouse_id"`
	ActorID          string           `json:"actor_id,omitempty"`
	Type             string           `json:"type"`
	QuantityChanged  int64            `json:"quantity_changed"`
	PreviousQuantity int64            `json:"previous_quantity"`
	NewQuantity      int64            `json:"new_quantity"`
	ReservationDelta int64            `json:"reservation_delta,omitempty"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	ReferenceNumber  string           `json:"reference_number,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
}

// LowStockItemDTO producto en o bajo su umbral de stock bajo en una bodega.
type LowStockItemDTO struct {
	ProductID         string `json:"product_id"`
	SKU               string `json:"sku"`
	ProductName       string `json:"product_name"`
	WarehouseID       string `json:"warehouse_id"`
	Quantity          int64  `json:"quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
	Threshold         int64  `json:"threshold"`
	OutOfStock        bool   `json:"out_of_stock"`
}

// MovementSummaryDTO conteo de movimientos por clase dentro de un rango.
type MovementSummaryDTO struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	StockInCount    int64     `json:"stock_in_count"`
	StockOutCount   int64     `json:"stock_out_count"`
	AdjustmentCount int64     `json:"adjustment_count"`
}

// ValuationDTO valorización de inventario (cantidad por costo unitario).
type ValuationDTO struct {
	WarehouseID string          `json:"warehouse_id,omitempty"` // vacío = global
	TotalValue  decimal.Decimal `json:"total_value"`
}

// CapacityUtilizationDTO utilización de una bodega. Utilization es nil cuando
// la bodega no tiene capacidad definida (nunca división por cero).
type CapacityUtilizationDTO struct {
	WarehouseID   string           `json:"warehouse_id"`
	TotalQuantity int64            `json:"total_quantity"`
	Capacity      int64            `json:"capacity,omitempty"`
	Utilization   *decimal.Decimal `json:"utilization,omitempty"`
}

// LedgerVerificationDTO resultado de reproducir el historial contra el ledger.
type LedgerVerificationDTO struct {
	ProductID        string `json:"product_id"`
	WarehouseID      string `json:"warehouse_id"`
	LedgerQuantity   int64  `json:"ledger_quantity"`
	ReplayedQuantity int64  `json:"replayed_quantity"`
	Consistent       bool   `json:"consistent"`
	EntryCount       int    `json:"entry_count"`
}
