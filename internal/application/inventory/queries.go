package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// StockQueries es la capa de consulta/agregación: vistas derivadas de solo
// lectura sobre el ledger y el log de auditoría. Nunca origina una escritura.
type StockQueries struct {
	records       repository.StockRecordRepository
	transactions  repository.StockTransactionRepository
	warehouseRepo repository.WarehouseRepository
}

// NewStockQueries construye la capa de consultas.
func NewStockQueries(
	records repository.StockRecordRepository,
	transactions repository.StockTransactionRepository,
	warehouseRepo repository.WarehouseRepository,
) *StockQueries {
	return &StockQueries{
		records:       records,
		transactions:  transactions,
		warehouseRepo: warehouseRepo,
	}
}

// Get devuelve el nivel de stock del par (producto, bodega).
func (q *StockQueries) Get(ctx context.Context, productID, warehouseID string) (*dto.StockLevelDTO, error) {
	record, err := q.records.Get(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &domain.NotFoundError{ProductID: productID, WarehouseID: warehouseID}
	}
	return stockLevelDTO(record), nil
}

// TotalQuantity suma la cantidad en mano del producto sobre todas las bodegas.
func (q *StockQueries) TotalQuantity(ctx context.Context, productID string) (int64, error) {
	return q.records.TotalQuantity(ctx, productID)
}

// TotalAvailable suma la cantidad disponible (en mano menos reservado) del
// producto sobre todas las bodegas.
func (q *StockQueries) TotalAvailable(ctx context.Context, productID string) (int64, error) {
	return q.records.TotalAvailable(ctx, productID)
}

// ListByWarehouse lista los niveles de stock de una bodega.
func (q *StockQueries) ListByWarehouse(ctx context.Context, warehouseID string, page dto.PageRequest) ([]dto.StockLevelDTO, error) {
	page.DefaultPage()
	records, err := q.records.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelDTO, 0, len(records))
	for _, r := range records {
		out = append(out, *stockLevelDTO(r))
	}
	return out, nil
}

// ListLowStock devuelve los productos en o bajo su umbral de stock bajo.
// El umbral es metadata del producto; la alerta es cosa del caller, aquí solo
// se detecta. warehouseID vacío = todas las bodegas.
func (q *StockQueries) ListLowStock(ctx context.Context, warehouseID string) ([]dto.LowStockItemDTO, error) {
	items, err := q.records.ListLowStock(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemDTO{
			ProductID:         it.ProductID,
			SKU:               it.SKU,
			ProductName:       it.ProductName,
			WarehouseID:       it.WarehouseID,
			Quantity:          it.Quantity,
			AvailableQuantity: it.Quantity - it.Reserved,
			Threshold:         it.Threshold,
			OutOfStock:        it.Quantity == 0,
		})
	}
	return out, nil
}

// Valuation devuelve la valorización (cantidad por costo unitario del
// producto). warehouseID vacío = global.
func (q *StockQueries) Valuation(ctx context.Context, warehouseID string) (*dto.ValuationDTO, error) {
	total, err := q.records.Valuation(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return &dto.ValuationDTO{WarehouseID: warehouseID, TotalValue: total.Round(2)}, nil
}

// History lista cronológicamente los movimientos de un producto, con filtro
// opcional por bodega y rango de fechas. Lectura pura, segura de reconsultar.
func (q *StockQueries) History(ctx context.Context, productID, warehouseID string, from, to *time.Time, page dto.PageRequest) ([]dto.StockTransactionDTO, error) {
	page.DefaultPage()
	txs, err := q.transactions.History(ctx, productID, warehouseID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return transactionDTOs(txs), nil
}

// Recent devuelve las últimas n entradas globales del log, para feeds de actividad.
func (q *StockQueries) Recent(ctx context.Context, n int) ([]dto.StockTransactionDTO, error) {
	if n <= 0 {
		n = 20
	}
	txs, err := q.transactions.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	return transactionDTOs(txs), nil
}

// MovementSummary clasifica los movimientos del rango: entradas (STOCK_IN y
// TRANSFER_IN), salidas (STOCK_OUT y TRANSFER_OUT) y ajustes. Las reservas no
// mueven stock y quedan fuera del conteo.
func (q *StockQueries) MovementSummary(ctx context.Context, from, to time.Time) (*dto.MovementSummaryDTO, error) {
	counts, err := q.transactions.CountByType(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.MovementSummaryDTO{
		From:            from,
		To:              to,
		StockInCount:    counts[entity.TxTypeStockIn] + counts[entity.TxTypeTransferIn],
		StockOutCount:   counts[entity.TxTypeStockOut] + counts[entity.TxTypeTransferOut],
		AdjustmentCount: counts[entity.TxTypeAdjustment],
	}, nil
}

// CapacityUtilization calcula totalEnBodega / capacidad. Si la bodega no tiene
// capacidad definida (<= 0) la utilización queda en nil, nunca división por cero.
func (q *StockQueries) CapacityUtilization(ctx context.Context, warehouseID string) (*dto.CapacityUtilizationDTO, error) {
	wh, err := q.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}
	total, err := q.records.TotalInWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := &dto.CapacityUtilizationDTO{
		WarehouseID:   warehouseID,
		TotalQuantity: total,
		Capacity:      wh.Capacity,
	}
	if wh.Capacity > 0 {
		u := decimal.NewFromInt(total).Div(decimal.NewFromInt(wh.Capacity)).Round(4)
		out.Utilization = &u
	}
	return out, nil
}

// VerifyLedger reproduce el historial completo del par (producto, bodega)
// partiendo de cero y lo compara contra la cantidad del ledger. Es el chequeo
// operacional del contrato de consistencia: si no cuadra, alguien escribió
// fuera del motor.
func (q *StockQueries) VerifyLedger(ctx context.Context, productID, warehouseID string) (*dto.LedgerVerificationDTO, error) {
	record, err := q.records.Get(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	var ledgerQty int64
	if record != nil {
		ledgerQty = record.Quantity
	}

	// limit 0 = sin límite: el replay necesita el historial completo
	txs, err := q.transactions.History(ctx, productID, warehouseID, nil, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	var replayed int64
	for _, tx := range txs {
		replayed += tx.QuantityChanged
	}

	return &dto.LedgerVerificationDTO{
		ProductID:        productID,
		WarehouseID:      warehouseID,
		LedgerQuantity:   ledgerQty,
		ReplayedQuantity: replayed,
		Consistent:       replayed == ledgerQty,
		EntryCount:       len(txs),
	}, nil
}

func stockLevelDTO(r *entity.StockRecord) *dto.StockLevelDTO {
	return &dto.StockLevelDTO{
		ProductID:         r.ProductID,
		WarehouseID:       r.WarehouseID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.Available(),
		LastStockCountAt:  r.LastStockCountAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func transactionDTOs(txs []*entity.StockTransaction) []dto.StockTransactionDTO {
	out := make([]dto.StockTransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, dto.StockTransactionDTO{
			ID:               tx.ID,
			ProductID:        tx.ProductID,
			WarehouseID:      tx.WarehouseID,
			ActorID:          tx.ActorID,
			Type:             tx.Type,
			QuantityChanged:  tx.QuantityChanged,
			PreviousQuantity: tx.PreviousQuantity,
			NewQuantity:      tx.NewQuantity,
			ReservationDelta: tx.ReservationDelta,
			UnitCost:         tx.UnitCost,
			Reason:           tx.Reason,
			ReferenceNumber:  tx.ReferenceNumber,
			Notes:            tx.Notes,
			Timestamp:        tx.Timestamp,
		})
	}
	return out
}
