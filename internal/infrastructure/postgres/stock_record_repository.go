package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación del Ledger Store sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockRecordColumns = `product_id, warehouse_id, quantity, reserved_quantity, last_stock_count_at, created_at, updated_at`

// Get obtiene el registro del par (producto, bodega); nil si nunca ha existido.
func (r *StockRecordRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2`
	record, err := r.scanOne(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return record, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE);
// nil si no existe.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	record, err := r.scanOne(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock record for update: %w", err)
	}
	return record, nil
}

// GetOrCreateForUpdate bloquea la fila, creándola en cero si no existe
// (el stock entra de forma perezosa la primera vez).
func (r *StockRecordRepo) GetOrCreateForUpdate(ctx context.Context, productID, warehouseID string, now time.Time) (*entity.StockRecord, error) {
	insert := `
		INSERT INTO stock_records (product_id, warehouse_id, quantity, reserved_quantity, created_at, updated_at)
		VALUES ($1, $2, 0, 0, $3, $3)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID, warehouseID, now); err != nil {
		return nil, fmt.Errorf("create stock record: %w", err)
	}
	record, err := r.GetForUpdate(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("stock record %s/%s desapareció tras upsert", productID, warehouseID)
	}
	return record, nil
}

// Save persiste el registro completo. El caller debe haberlo obtenido bajo la
// disciplina de bloqueo del motor (dentro de TxRunner.Run).
func (r *StockRecordRepo) Save(ctx context.Context, record *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET quantity = $3, reserved_quantity = $4, last_stock_count_at = $5, updated_at = $6
		WHERE product_id = $1 AND warehouse_id = $2`
	tag, err := r.q.Exec(ctx, query,
		record.ProductID, record.WarehouseID,
		record.Quantity, record.ReservedQuantity, record.LastStockCountAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save stock record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save stock record %s/%s: fila inexistente", record.ProductID, record.WarehouseID)
	}
	return nil
}

// ListByWarehouse lista los registros de una bodega.
func (r *StockRecordRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE warehouse_id = $1
		ORDER BY product_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock by warehouse: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListByProduct lista los registros de un producto en todas las bodegas.
func (r *StockRecordRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1
		ORDER BY warehouse_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock by product: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// TotalQuantity suma la cantidad en mano del producto sobre todas las bodegas.
func (r *StockRecordRepo) TotalQuantity(ctx context.Context, productID string) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_records WHERE product_id = $1`
	var total int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("total quantity: %w", err)
	}
	return total, nil
}

// TotalAvailable suma la cantidad disponible del producto sobre todas las bodegas.
func (r *StockRecordRepo) TotalAvailable(ctx context.Context, productID string) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity - reserved_quantity), 0) FROM stock_records WHERE product_id = $1`
	var total int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("total available: %w", err)
	}
	return total, nil
}

// TotalInWarehouse suma la cantidad en mano de una bodega.
func (r *StockRecordRepo) TotalInWarehouse(ctx context.Context, warehouseID string) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_records WHERE warehouse_id = $1`
	var total int64
	if err := r.q.QueryRow(ctx, query, warehouseID).Scan(&total); err != nil {
		return 0, fmt.Errorf("total in warehouse: %w", err)
	}
	return total, nil
}

// ListLowStock devuelve los registros con quantity <= umbral del producto
// (el umbral vive en products, no en el ledger). warehouseID vacío = todas.
func (r *StockRecordRepo) ListLowStock(ctx context.Context, warehouseID string) ([]repository.LowStockItem, error) {
	query := `
		SELECT s.product_id, p.sku, p.name, s.warehouse_id, s.quantity, s.reserved_quantity, p.low_stock_threshold
		FROM stock_records s
		JOIN products p ON p.id = s.product_id
		WHERE s.quantity <= p.low_stock_threshold`
	args := []any{}
	if warehouseID != "" {
		query += ` AND s.warehouse_id = $1`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY s.quantity ASC, p.sku`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var items []repository.LowStockItem
	for rows.Next() {
		var it repository.LowStockItem
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.ProductName, &it.WarehouseID,
			&it.Quantity, &it.Reserved, &it.Threshold); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Valuation suma quantity * costo unitario del producto. warehouseID vacío = global.
func (r *StockRecordRepo) Valuation(ctx context.Context, warehouseID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(s.quantity * p.unit_cost), 0)
		FROM stock_records s
		JOIN products p ON p.id = s.product_id`
	args := []any{}
	if warehouseID != "" {
		query += ` WHERE s.warehouse_id = $1`
		args = append(args, warehouseID)
	}
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("valuation: %w", err)
	}
	return total, nil
}

func (r *StockRecordRepo) scanOne(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.ReservedQuantity,
		&s.LastStockCountAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StockRecordRepo) scanAll(rows pgx.Rows) ([]*entity.StockRecord, error) {
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.ReservedQuantity,
			&s.LastStockCountAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
