package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// LowStockItem resultado crudo del repositorio para un producto en o bajo su
// umbral de stock bajo (el umbral vive en la metadata del producto, no en el ledger).
type LowStockItem struct {
	ProductID   string
	SKU         string
	ProductName string
	WarehouseID string
	Quantity    int64
	Reserved    int64
	Threshold   int64
}

// StockRecordRepository define el puerto del Ledger Store: un registro por par
// (producto, bodega). No expone borrado: los registros se dejan en cero, nunca
// se eliminan, para preservar el replay del historial.
type StockRecordRepository interface {
	// Get devuelve nil, nil si nunca ha existido stock para el par.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE); nil, nil si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error)
	// GetOrCreateForUpdate bloquea la fila, creándola en cero si no existe.
	GetOrCreateForUpdate(ctx context.Context, productID, warehouseID string, now time.Time) (*entity.StockRecord, error)
	// Save persiste el registro completo. El caller debe haberlo obtenido bajo
	// la disciplina de bloqueo del motor (dentro de TxRunner.Run).
	Save(ctx context.Context, record *entity.StockRecord) error

	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockRecord, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error)

	// TotalQuantity y TotalAvailable suman sobre todas las bodegas.
	TotalQuantity(ctx context.Context, productID string) (int64, error)
	TotalAvailable(ctx context.Context, productID string) (int64, error)
	// TotalInWarehouse suma la cantidad en mano de una bodega (para utilización).
	TotalInWarehouse(ctx context.Context, warehouseID string) (int64, error)

	// ListLowStock devuelve los registros con quantity <= umbral del producto.
	// warehouseID vacío = todas las bodegas.
	ListLowStock(ctx context.Context, warehouseID string) ([]LowStockItem, error)
	// Valuation suma quantity * costo unitario del producto. warehouseID vacío = global.
	Valuation(ctx context.Context, warehouseID string) (decimal.Decimal, error)
}
