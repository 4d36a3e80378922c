package inventory

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la frontera de atomicidad del motor: la
// escritura del ledger y el append de auditoría comprometen o revierten juntos.
// Si la transacción aborta por contención, Run devuelve un error que satisface
// errors.Is(err, domain.ErrConcurrencyConflict).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledger repository.StockRecordRepository,
		audit repository.StockTransactionRepository,
		products repository.ProductRepository,
	) error) error
}
