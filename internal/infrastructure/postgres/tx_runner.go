package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es la
// frontera de atomicidad del motor de movimientos: ledger y auditoría
// comprometen o revierten juntos. Aborta por contención (40001/40P01) se
// traduce a ConcurrencyConflictError para que el caller decida reintentar.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. La cancelación del contexto revierte la transacción
// completa: nunca queda el ledger escrito sin su entrada de auditoría.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ledger repository.StockRecordRepository,
	audit repository.StockTransactionRepository,
	products repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ledger := NewStockRecordRepository(tx)
	audit := NewStockTransactionRepository(tx)
	products := NewProductRepository(tx)

	if err := fn(ledger, audit, products); err != nil {
		if isConcurrencyAbort(err) {
			return &domain.ConcurrencyConflictError{Op: "stock movement", Err: err}
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isConcurrencyAbort(err) {
			return &domain.ConcurrencyConflictError{Op: "stock movement", Err: err}
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
