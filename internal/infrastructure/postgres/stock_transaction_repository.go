package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo implementación del log de auditoría sobre PostgreSQL
// (usable con pool o tx). Solo INSERT y SELECT: no existe Update ni Delete,
// editar el log rompería el invariante de replay.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

const stockTxColumns = `id, product_id, warehouse_id, actor_id, type, quantity_changed,
	previous_quantity, new_quantity, reservation_delta, unit_cost, reason, reference_number, notes, created_at`

// Append persiste la entrada; el ID monótono lo asigna la secuencia de la tabla.
func (r *StockTransactionRepo) Append(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions
			(product_id, warehouse_id, actor_id, type, quantity_changed,
			 previous_quantity, new_quantity, reservation_delta, unit_cost, reason, reference_number, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	actorID := (*string)(nil)
	if tx.ActorID != "" {
		actorID = &tx.ActorID
	}
	err := r.q.QueryRow(ctx, query,
		tx.ProductID, tx.WarehouseID, actorID, tx.Type, tx.QuantityChanged,
		tx.PreviousQuantity, tx.NewQuantity, tx.ReservationDelta, tx.UnitCost,
		tx.Reason, tx.ReferenceNumber, tx.Notes, tx.Timestamp,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("append stock transaction: %w", err)
	}
	return nil
}

// History lista cronológicamente (ascendente, con ID como desempate) las
// entradas de un producto. warehouseID vacío = todas; from/to opcionales;
// limit <= 0 = sin límite (lo necesita el replay completo).
func (r *StockTransactionRepo) History(ctx context.Context, productID, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + stockTxColumns + `
		FROM stock_transactions WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if warehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, warehouseID)
		pos++
	}
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += " ORDER BY created_at ASC, id ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, limit, offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Recent devuelve las últimas n entradas globales (descendente).
func (r *StockTransactionRepo) Recent(ctx context.Context, n int) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + stockTxColumns + `
		FROM stock_transactions
		ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// CountByType cuenta entradas por tipo dentro del rango, escaneando el log
// (sin contadores materializados: una sola superficie de consistencia).
func (r *StockTransactionRepo) CountByType(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	query := `
		SELECT type, COUNT(*)
		FROM stock_transactions
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY type`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var txType string
		var count int64
		if err := rows.Scan(&txType, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[txType] = count
	}
	return counts, rows.Err()
}

func (r *StockTransactionRepo) scanAll(rows pgx.Rows) ([]*entity.StockTransaction, error) {
	var list []*entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		var actorID *string
		if err := rows.Scan(&t.ID, &t.ProductID, &t.WarehouseID, &actorID, &t.Type,
			&t.QuantityChanged, &t.PreviousQuantity, &t.NewQuantity, &t.ReservationDelta,
			&t.UnitCost, &t.Reason, &t.ReferenceNumber, &t.Notes, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		if actorID != nil {
			t.ActorID = *actorID
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
